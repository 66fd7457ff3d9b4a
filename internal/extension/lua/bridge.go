package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/net/html"

	"github.com/dshills/stylus/internal/dom"
)

// ToLua converts a Go value to a Lua value. Nodes become node tables;
// unsupported values become their fmt representation.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case *html.Node:
		return NodeTable(L, x)
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, ToLua(L, e))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// ToGo converts a Lua value to a Go value. Tables with keys 1..n become
// slices, other tables maps; functions and cycles become nil.
func ToGo(lv lua.LValue) any {
	return toGo(lv, make(map[*lua.LTable]bool))
}

func toGo(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.Len()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })
	if n > 0 && n == count {
		out := make([]any, n)
		for i := 1; i <= n; i++ {
			out[i-1] = toGo(t.RawGetInt(i), visited)
		}
		return out
	}
	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGo(v, visited)
	})
	return m
}

// NodeTable describes an element as {tag=, text=, attrs={}}. A nil node
// is nil.
func NodeTable(L *lua.LState, n *html.Node) lua.LValue {
	if n == nil {
		return lua.LNil
	}
	t := L.NewTable()
	t.RawSetString("tag", lua.LString(dom.Tag(n)))
	t.RawSetString("text", lua.LString(dom.TextContent(n)))
	attrs := L.NewTable()
	for _, a := range n.Attr {
		attrs.RawSetString(a.Key, lua.LString(a.Val))
	}
	t.RawSetString("attrs", attrs)
	return t
}

// stringField returns the string field key of t, or "".
func stringField(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}
