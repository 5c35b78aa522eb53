package tool

import (
	"fmt"
	"strings"
)

// Type is the declared type of a tool parameter. Raw protocol values are
// always strings; the type only drives coercion and catalogue rendering.
type Type string

const (
	TypeString  Type = "str"
	TypeInteger Type = "int"
	TypeBoolean Type = "bool"
)

// Category groups tools in the system prompt catalogue.
type Category string

const (
	CategoryRepository Category = "Repository Information"
	CategoryFile       Category = "File Operations"
	CategoryTesting    Category = "Testing & Analysis"
	CategoryGit        Category = "Git & Verification"
	CategoryGeneral    Category = "General"
)

// Param declares one parameter of a tool.
type Param struct {
	Name        string
	Type        Type
	Required    bool
	Default     string // rendered only when Required is false
	Description string
}

// Descriptor declares a tool's signature and documentation for the model.
// It is built once at registration time and never mutated.
type Descriptor struct {
	Name     string
	Params   []Param
	Doc      string
	Category Category // empty means uncategorised
}

// Signature renders the descriptor as "name(a: str, b: int = 1)".
func (d Descriptor) Signature() string {
	parts := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		typ := p.Type
		if typ == "" {
			typ = TypeString
		}
		if p.Required {
			parts = append(parts, fmt.Sprintf("%s: %s", p.Name, typ))
			continue
		}
		def := p.Default
		if def == "" {
			def = "None"
		}
		parts = append(parts, fmt.Sprintf("%s: %s = %s", p.Name, typ, def))
	}
	return fmt.Sprintf("%s(%s)", d.Name, strings.Join(parts, ", "))
}

// Param returns the parameter with the given name.
func (d Descriptor) Param(name string) (Param, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ErrorKind classifies tool failures so the loop can phrase feedback
// without inspecting concrete error types.
type ErrorKind string

const (
	KindInvalidArguments ErrorKind = "invalid_arguments"
	KindNotFound         ErrorKind = "not_found"
	KindTimeout          ErrorKind = "timeout"
	KindCommandFailed    ErrorKind = "command_failed"
	KindIO               ErrorKind = "io"
	KindOutsideWorkspace ErrorKind = "outside_workspace"
	KindInternal         ErrorKind = "internal"
)

// Error is the tagged error returned by tools.
type Error struct {
	Kind    ErrorKind
	Message string
	Hint    string // optional remediation shown to the model
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Errorf builds a tagged error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error.
func Wrap(kind ErrorKind, cause error, hint string) *Error {
	return &Error{Kind: kind, Message: cause.Error(), Hint: hint, Cause: cause}
}
