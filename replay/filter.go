package replay

import (
	"fmt"
	"strings"

	"github.com/Shopify/go-lua"

	"github.com/pithecene-io/flightreplay/types"
)

// Filter decides which recorded messages take part in playback.
// Observe is called for every decoded message (including rejected ones) so
// that conditions referencing other message types see the latest state.
type Filter interface {
	Observe(m *types.Message)
	Match(m *types.Message) bool
}

// TypeFilter admits only the listed message types.
type TypeFilter struct {
	types map[string]struct{}
}

// NewTypeFilter creates a filter admitting the given types.
// An empty list admits everything.
func NewTypeFilter(names []string) *TypeFilter {
	f := &TypeFilter{types: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			f.types[n] = struct{}{}
		}
	}
	return f
}

// Observe implements Filter.
func (f *TypeFilter) Observe(*types.Message) {}

// Match implements Filter.
func (f *TypeFilter) Match(m *types.Message) bool {
	if len(f.types) == 0 {
		return true
	}
	_, ok := f.types[m.Type]
	return ok
}

// conditionGlobal holds the compiled expression inside the Lua state.
const conditionGlobal = "__flightreplay_condition"

// Condition is a boolean expression over the latest message of each type,
// e.g. `GLOBAL_POSITION_INT.relative_alt > 10000 and ATTITUDE.roll < 0.5`.
//
// Each message type is a global table of its fields plus _timestamp.
// Expressions are Lua; `!=` is accepted as an alias of `~=`. Referencing a
// type that has not been observed yet makes the condition false.
type Condition struct {
	expr  string
	state *lua.State
}

// CompileCondition compiles expr. Syntax errors are returned here, not at
// evaluation time.
func CompileCondition(expr string) (*Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty condition")
	}

	l := lua.NewState()
	lua.Require(l, "_G", lua.BaseOpen, true)
	l.Pop(1)
	lua.Require(l, "math", lua.MathOpen, true)
	l.Pop(1)
	lua.Require(l, "string", lua.StringOpen, true)
	l.Pop(1)

	src := "return (" + strings.ReplaceAll(expr, "!=", "~=") + ")"
	if err := lua.LoadString(l, src); err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", expr, err)
	}
	l.SetGlobal(conditionGlobal)

	return &Condition{expr: expr, state: l}, nil
}

// String returns the source expression.
func (c *Condition) String() string {
	return c.expr
}

// Observe publishes m as the global table named after its type.
func (c *Condition) Observe(m *types.Message) {
	l := c.state
	l.NewTable()
	for name, v := range m.Fields {
		if !pushScalar(l, v) {
			continue
		}
		l.SetField(-2, name)
	}
	l.PushNumber(m.Timestamp)
	l.SetField(-2, "_timestamp")
	l.SetGlobal(m.Type)
}

// Match evaluates the expression. Runtime errors evaluate to false.
func (c *Condition) Match(*types.Message) bool {
	l := c.state
	l.Global(conditionGlobal)
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		l.Pop(1) // error object
		return false
	}
	ok := l.ToBoolean(-1)
	l.Pop(1)
	return ok
}

// pushScalar pushes numbers, strings and booleans. Other values are skipped.
func pushScalar(l *lua.State, v any) bool {
	switch s := v.(type) {
	case string:
		l.PushString(strings.TrimRight(s, "\x00"))
		return true
	case []byte:
		l.PushString(strings.TrimRight(string(s), "\x00"))
		return true
	case bool:
		l.PushBoolean(s)
		return true
	}
	if f, ok := types.ToFloat(v); ok {
		l.PushNumber(f)
		return true
	}
	return false
}

// Verify filters implement Filter.
var (
	_ Filter = (*TypeFilter)(nil)
	_ Filter = (*Condition)(nil)
)

// chainFilter requires every filter to match.
type chainFilter []Filter

func (c chainFilter) Observe(m *types.Message) {
	for _, f := range c {
		f.Observe(m)
	}
}

func (c chainFilter) Match(m *types.Message) bool {
	for _, f := range c {
		if !f.Match(m) {
			return false
		}
	}
	return true
}

// FilterSpec describes the filters to build for each recording.
// Conditions keep per-recording state, so a fresh Filter is built per file.
type FilterSpec struct {
	// Condition is an optional Lua expression (see Condition).
	Condition string
	// Types optionally restricts playback to these message types.
	Types []string
}

// Build returns the combined filter, or nil when nothing is configured.
func (s FilterSpec) Build() (Filter, error) {
	var chain chainFilter
	if len(s.Types) > 0 {
		chain = append(chain, NewTypeFilter(s.Types))
	}
	if strings.TrimSpace(s.Condition) != "" {
		cond, err := CompileCondition(s.Condition)
		if err != nil {
			return nil, err
		}
		chain = append(chain, cond)
	}
	switch len(chain) {
	case 0:
		return nil, nil
	case 1:
		return chain[0], nil
	default:
		return chain, nil
	}
}
