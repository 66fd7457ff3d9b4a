package command

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/host"
	"github.com/dshills/stylus/internal/ui"
)

// Command is the minimum contract of a toolbar command.
type Command interface {
	Name() string
}

// Env is the editor handle passed to commands at initialisation.
type Env interface {
	// Host returns the platform the editor runs on.
	Host() host.Host

	// ExecAction runs a toolbar action such as "bold", "anchor" or
	// "append-h3".
	ExecAction(action string)
}

// ButtonProvider contributes a toolbar button.
type ButtonProvider interface {
	Button() *ui.Element
}

// FormProvider contributes a form panel shown inside the toolbar.
type FormProvider interface {
	Form() *ui.Element
}

// StateQuerier answers whether the command is active from a native state
// query. supported is false when no native answer exists.
type StateQuerier interface {
	QueryState() (active, supported bool)
}

// StateChecker updates its own state from an ancestor of the selection.
type StateChecker interface {
	CheckState(node *html.Node)
}

// Toggler carries an active flag.
type Toggler interface {
	IsActive() bool
	Activate()
	Deactivate()
}

// ActivationChecker reports whether a node means the command is applied.
type ActivationChecker interface {
	ShouldActivate(node *html.Node) bool
}

// Hider reacts to the toolbar actions being hidden.
type Hider interface {
	OnHide()
}

// Initializer is called once after registration.
type Initializer interface {
	Init(env Env) error
}

// Clicker handles activation of its button.
type Clicker interface {
	HandleClick()
}

// Failer is implemented by commands whose hook methods record a failure
// instead of returning it. TakeErr returns the failure of the latest call
// and clears it.
type Failer interface {
	TakeErr() error
}

// HookReceiver receives named hooks not covered by another capability.
type HookReceiver interface {
	Hook(name string, args ...any) error
}

// CapabilityReporter narrows the capabilities detected by type assertion.
// Commands whose method set is fixed but whose behaviour is not, such as
// scripted extensions, report what they actually implement.
type CapabilityReporter interface {
	Capabilities() Capability
}

// Capability is a bitset of optional command capabilities.
type Capability uint16

// Capability bits.
const (
	CapButton Capability = 1 << iota
	CapForm
	CapQueryState
	CapCheckState
	CapToggle
	CapShouldActivate
	CapHide
	CapInit
	CapClick
	CapHook
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapButton, "button"},
	{CapForm, "form"},
	{CapQueryState, "queryState"},
	{CapCheckState, "checkState"},
	{CapToggle, "toggle"},
	{CapShouldActivate, "shouldActivate"},
	{CapHide, "onHide"},
	{CapInit, "init"},
	{CapClick, "click"},
	{CapHook, "hook"},
}

// Has reports whether every bit of other is set.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

// String lists the set capabilities.
func (c Capability) String() string {
	var names []string
	for _, cn := range capabilityNames {
		if c.Has(cn.c) {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// CapabilitiesOf computes the capability bitset of cmd.
func CapabilitiesOf(cmd Command) Capability {
	var c Capability
	if _, ok := cmd.(ButtonProvider); ok {
		c |= CapButton
	}
	if _, ok := cmd.(FormProvider); ok {
		c |= CapForm
	}
	if _, ok := cmd.(StateQuerier); ok {
		c |= CapQueryState
	}
	if _, ok := cmd.(StateChecker); ok {
		c |= CapCheckState
	}
	if _, ok := cmd.(Toggler); ok {
		c |= CapToggle
	}
	if _, ok := cmd.(ActivationChecker); ok {
		c |= CapShouldActivate
	}
	if _, ok := cmd.(Hider); ok {
		c |= CapHide
	}
	if _, ok := cmd.(Initializer); ok {
		c |= CapInit
	}
	if _, ok := cmd.(Clicker); ok {
		c |= CapClick
	}
	if _, ok := cmd.(HookReceiver); ok {
		c |= CapHook
	}
	if r, ok := cmd.(CapabilityReporter); ok {
		c &= r.Capabilities()
	}
	return c
}
