package term

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownRole is returned by Theme.Set for a role the theme does not
// define.
var ErrUnknownRole = errors.New("term: unknown theme role")

// Theme roles.
const (
	RoleText       = "text"
	RoleBackground = "background"
	RoleHeading    = "heading"
	RoleLink       = "link"
	RoleQuote      = "quote"
	RoleCode       = "code"
	RoleAccent     = "accent"
	RoleToolbar    = "toolbar"
	RoleStatus     = "status"
)

// Theme maps roles to colours.
type Theme struct {
	colors map[string]colorful.Color
}

// DefaultTheme returns the built-in dark theme.
func DefaultTheme() Theme {
	t := Theme{colors: make(map[string]colorful.Color)}
	for role, hex := range map[string]string{
		RoleText:       "#d8dee9",
		RoleBackground: "#1e222a",
		RoleHeading:    "#88c0d0",
		RoleLink:       "#81a1c1",
		RoleQuote:      "#a3be8c",
		RoleCode:       "#ebcb8b",
		RoleAccent:     "#5e81ac",
		RoleToolbar:    "#3b4252",
		RoleStatus:     "#2e3440",
	} {
		c, _ := colorful.Hex(hex)
		t.colors[role] = c
	}
	return t
}

// Roles returns the role names in sorted order.
func (t Theme) Roles() []string {
	roles := make([]string, 0, len(t.colors))
	for r := range t.colors {
		roles = append(roles, r)
	}
	slices.Sort(roles)
	return roles
}

// Set replaces the colour of a role with a "#rrggbb" value.
func (t Theme) Set(role, hex string) error {
	role = strings.ToLower(role)
	if _, ok := t.colors[role]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRole, role)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("theme %s: %w", role, err)
	}
	t.colors[role] = c
	return nil
}

// Apply sets every role in m.
func (t Theme) Apply(m map[string]string) error {
	for role, hex := range m {
		if err := t.Set(role, hex); err != nil {
			return err
		}
	}
	return nil
}

// Color returns the tcell colour of a role.
func (t Theme) Color(role string) tcell.Color {
	return toTcell(t.colors[role])
}

// Base is the style of plain text.
func (t Theme) Base() tcell.Style {
	return tcell.StyleDefault.Foreground(t.Color(RoleText)).Background(t.Color(RoleBackground))
}

// SelectionColor is the background of selected text: the background
// blended toward the accent.
func (t Theme) SelectionColor() tcell.Color {
	return toTcell(t.colors[RoleBackground].BlendLab(t.colors[RoleAccent], 0.6).Clamped())
}

// Toolbar is the style of toolbar buttons.
func (t Theme) Toolbar() tcell.Style {
	return tcell.StyleDefault.Foreground(t.Color(RoleText)).Background(t.Color(RoleToolbar))
}

// Active is the style of an active toolbar button.
func (t Theme) Active() tcell.Style {
	return t.Toolbar().Background(t.Color(RoleAccent)).Bold(true)
}

// Status is the style of the status line.
func (t Theme) Status() tcell.Style {
	return tcell.StyleDefault.Foreground(t.Color(RoleText)).Background(t.Color(RoleStatus))
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
