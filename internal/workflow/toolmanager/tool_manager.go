package toolmanager

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
	"github.com/mitchellh/mapstructure"
)

// ErrDuplicateTool is returned when a name is registered twice.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ErrEmptyToolName is returned when a tool declares no name.
var ErrEmptyToolName = errors.New("tool name is empty")

// UnknownToolError is returned by Execute for unregistered names.
type UnknownToolError struct {
	Name  string
	Known []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown function %q. Available functions: %s", e.Name, strings.Join(e.Known, ", "))
}

// categoryOrder is the catalogue section order.
var categoryOrder = []tool.Category{
	tool.CategoryRepository,
	tool.CategoryFile,
	tool.CategoryTesting,
	tool.CategoryGit,
	tool.CategoryGeneral,
}

const otherToolsHeading = "Other Tools"

type ToolManager struct {
	registry map[string]Tool
	order    []string
}

// NewToolManager returns a manager holding tools. It panics on a duplicate
// name since the set is fixed at construction.
func NewToolManager(tools ...Tool) *ToolManager {
	tm := &ToolManager{
		registry: make(map[string]Tool),
	}
	if err := tm.Register(tools...); err != nil {
		panic(err)
	}
	return tm
}

// Register adds tools in order. Nothing is registered if any name collides.
func (m *ToolManager) Register(tools ...Tool) error {
	seen := make(map[string]bool, len(tools))
	for _, t := range tools {
		name := t.Descriptor().Name
		if name == "" {
			return ErrEmptyToolName
		}
		if _, ok := m.registry[name]; ok || seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		seen[name] = true
	}
	for _, t := range tools {
		name := t.Descriptor().Name
		m.registry[name] = t
		m.order = append(m.order, name)
	}
	return nil
}

// Lookup returns the tool registered under name.
func (m *ToolManager) Lookup(name string) (Tool, bool) {
	t, ok := m.registry[name]
	return t, ok
}

// Names returns all registered names sorted.
func (m *ToolManager) Names() []string {
	names := make([]string, 0, len(m.registry))
	for name := range m.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptors returns descriptors in registration order.
func (m *ToolManager) Descriptors() []tool.Descriptor {
	out := make([]tool.Descriptor, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.registry[name].Descriptor())
	}
	return out
}

// Catalogue renders the tool list for the system prompt, grouped by
// category with uncategorised tools under "Other Tools".
func (m *ToolManager) Catalogue() string {
	byCategory := make(map[tool.Category][]string)
	var other []string

	known := make(map[tool.Category]bool, len(categoryOrder))
	for _, c := range categoryOrder {
		known[c] = true
	}

	for _, d := range m.Descriptors() {
		entry := fmt.Sprintf("Function: %s\n%s\n", d.Signature(), strings.TrimSpace(d.Doc))
		if known[d.Category] {
			byCategory[d.Category] = append(byCategory[d.Category], entry)
		} else {
			other = append(other, entry)
		}
	}

	var sections []string
	for _, c := range categoryOrder {
		if entries := byCategory[c]; len(entries) > 0 {
			sections = append(sections, fmt.Sprintf("### %s\n%s", c, strings.Join(entries, "\n")))
		}
	}
	if len(other) > 0 {
		sections = append(sections, fmt.Sprintf("### %s\n%s", otherToolsHeading, strings.Join(other, "\n")))
	}
	return strings.Join(sections, "\n")
}

// Execute decodes args into the tool's request and runs it.
func (m *ToolManager) Execute(ctx context.Context, name string, args protocol.Args) (string, error) {
	t, ok := m.registry[name]
	if !ok {
		return "", &UnknownToolError{Name: name, Known: m.Names()}
	}

	req, err := decode(t, args)
	if err != nil {
		return "", err
	}

	return t.Execute(ctx, req)
}

// decode checks args against the descriptor and fills the request struct.
// Values are coerced weakly ("12" to int, "true" to bool).
func decode(t Tool, args protocol.Args) (any, error) {
	d := t.Descriptor()

	for _, key := range args.Keys() {
		if _, ok := d.Param(key); !ok {
			return nil, &tool.Error{
				Kind:    tool.KindInvalidArguments,
				Message: fmt.Sprintf("unexpected argument %q", key),
				Hint:    "Expected signature: " + d.Signature(),
			}
		}
	}

	var missing []string
	for _, p := range d.Params {
		if _, ok := args.Get(p.Name); p.Required && !ok {
			missing = append(missing, p.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &tool.Error{
			Kind:    tool.KindInvalidArguments,
			Message: fmt.Sprintf("missing required argument(s): %s", strings.Join(missing, ", ")),
			Hint:    "Expected signature: " + d.Signature(),
		}
	}

	req := t.Request()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           req,
	})
	if err != nil {
		return nil, tool.Wrap(tool.KindInternal, err, "")
	}
	if err := decoder.Decode(args.Map()); err != nil {
		return nil, &tool.Error{
			Kind:    tool.KindInvalidArguments,
			Message: err.Error(),
			Hint:    "Expected signature: " + d.Signature(),
			Cause:   err,
		}
	}
	return req, nil
}
