package domain

import (
	"cmp"
	"slices"
	"strings"
)

// ValueKind identifies the type of a configuration parameter value.
type ValueKind int

const (
	// KindAbsent marks a parameter that must not be emitted.
	KindAbsent ValueKind = iota
	// KindBool is an ON/OFF switch.
	KindBool
	// KindString is a verbatim string.
	KindString
	// KindPath is a filesystem path normalized to forward slashes.
	KindPath
)

// String returns the name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "BOOL"
	case KindString:
		return "STRING"
	case KindPath:
		return "PATH"
	default:
		return "ABSENT"
	}
}

// Value is a tagged configuration value: either Present with a kind and text, or Absent.
// The zero Value is Absent.
type Value struct {
	kind ValueKind
	text string
}

// Absent returns a value that is omitted from emitted parameter lists.
func Absent() Value {
	return Value{}
}

// Bool returns a boolean value rendered as ON or OFF.
func Bool(b bool) Value {
	if b {
		return Value{kind: KindBool, text: "ON"}
	}
	return Value{kind: KindBool, text: "OFF"}
}

// String returns a verbatim string value. An empty string is still Present.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// OptionalString returns String(s) when ok, Absent otherwise.
func OptionalString(s string, ok bool) Value {
	if !ok {
		return Absent()
	}
	return String(s)
}

// Path returns a path value with every sep replaced by a forward slash.
// An empty path is Absent.
func Path(p string, sep rune) Value {
	if p == "" {
		return Absent()
	}
	return Value{kind: KindPath, text: NormalizePath(p, sep)}
}

// NormalizePath replaces the host separator sep with '/'.
func NormalizePath(p string, sep rune) string {
	if sep == '/' || sep == 0 {
		return p
	}
	return strings.ReplaceAll(p, string(sep), "/")
}

// Present reports whether the value is emitted.
func (v Value) Present() bool {
	return v.kind != KindAbsent
}

// Kind returns the value's kind.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Text returns the rendered value. It is empty for Absent values.
func (v Value) Text() string {
	return v.text
}

// Param is a single named configuration parameter destined for the configure step.
type Param struct {
	Key   string
	Value Value
}

// Define renders the parameter as a -D<KEY>=<VALUE> argument.
func (p Param) Define() string {
	return "-D" + p.Key + "=" + p.Value.text
}

// ParamSet collects parameters by key. Setting a key twice keeps the last value.
type ParamSet struct {
	values map[string]Value
}

// NewParamSet creates an empty ParamSet.
func NewParamSet() *ParamSet {
	return &ParamSet{values: make(map[string]Value)}
}

// Set records value under key, replacing any earlier value.
func (s *ParamSet) Set(key string, value Value) {
	s.values[key] = value
}

// Get returns the value recorded for key.
func (s *ParamSet) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Params returns the Present parameters sorted by key.
func (s *ParamSet) Params() []Param {
	out := make([]Param, 0, len(s.values))
	for k, v := range s.values {
		if !v.Present() {
			continue
		}
		out = append(out, Param{Key: k, Value: v})
	}
	slices.SortFunc(out, func(a, b Param) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

// Defines renders params as -D arguments, preserving their order.
func Defines(params []Param) []string {
	args := make([]string, 0, len(params))
	for _, p := range params {
		args = append(args, p.Define())
	}
	return args
}
