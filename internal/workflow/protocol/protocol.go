// Package protocol parses and formats the flat textual function-call block
// the model ends each turn with.
package protocol

import (
	"errors"
	"strings"
)

// Markers delimiting a call block.
const (
	BeginCall = "----BEGIN_FUNCTION_CALL----"
	EndCall   = "----END_FUNCTION_CALL----"
	ArgSep    = "----ARG----"
	ValueSep  = "----VALUE----"
)

// FinishTool is the terminal pseudo-tool handled by the loop.
const FinishTool = "finish"

// ResponseFormat is the grammar shown to the model in the system prompt.
const ResponseFormat = `
your_thoughts_here
...
` + BeginCall + `
function_name
` + ArgSep + `
arg1_name
` + ValueSep + `
arg1_value (can be multiline)
` + ArgSep + `
arg2_name
` + ValueSep + `
arg2_value (can be multiline)
...
` + EndCall + `

DO NOT CHANGE ANY TEST! AS THEY WILL BE USED FOR EVALUATION.
`

// ErrNoCallFound is returned when the text holds no well-formed call block.
var ErrNoCallFound = errors.New("no valid function call found")

// Args is an ordered string map. Keys keep first-seen order; setting an
// existing key overwrites its value in place.
type Args struct {
	keys   []string
	values map[string]string
}

// NewArgs builds Args from alternating key, value pairs.
func NewArgs(kv ...string) Args {
	var a Args
	for i := 0; i+1 < len(kv); i += 2 {
		a.Set(kv[i], kv[i+1])
	}
	return a
}

// Set stores value under key.
func (a *Args) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key.
func (a Args) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns keys in first-seen order.
func (a Args) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of arguments.
func (a Args) Len() int {
	return len(a.keys)
}

// Map returns a copy of the arguments as a plain map.
func (a Args) Map() map[string]string {
	out := make(map[string]string, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// ParsedCall is the structured result of Parse.
type ParsedCall struct {
	Thought   string
	Name      string
	Arguments Args
}

// Parse extracts the final call block from text. The last begin and end
// markers anchor the block, so marker-like text quoted earlier in the
// reasoning is ignored.
func Parse(text string) (*ParsedCall, error) {
	start := strings.LastIndex(text, BeginCall)
	end := strings.LastIndex(text, EndCall)
	if start == -1 || end == -1 || end < start+len(BeginCall) {
		return nil, ErrNoCallFound
	}

	call := &ParsedCall{Thought: strings.TrimSpace(text[:start])}

	body := strings.TrimSpace(text[start+len(BeginCall) : end])
	lines := strings.Split(body, "\n")

	call.Name = strings.TrimSpace(lines[0])
	if call.Name == "" {
		return nil, ErrNoCallFound
	}

	for i := 1; i < len(lines); {
		if strings.TrimSpace(lines[i]) != ArgSep {
			i++
			continue
		}
		i++
		if i >= len(lines) {
			break
		}
		name := strings.TrimSpace(lines[i])
		i++

		if i >= len(lines) || strings.TrimSpace(lines[i]) != ValueSep {
			call.Arguments.Set(name, "")
			continue
		}
		i++

		var value []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != ArgSep {
			value = append(value, lines[i])
			i++
		}
		call.Arguments.Set(name, strings.TrimSpace(strings.Join(value, "\n")))
	}

	return call, nil
}

// Format serializes a call in the canonical grammar. Parse(Format(c)) yields
// a call equal to c when names and values carry no surrounding whitespace
// and no marker lines.
func Format(call ParsedCall) string {
	var sb strings.Builder
	if call.Thought != "" {
		sb.WriteString(call.Thought)
		sb.WriteString("\n")
	}
	sb.WriteString(BeginCall + "\n")
	sb.WriteString(call.Name + "\n")
	for _, k := range call.Arguments.keys {
		sb.WriteString(ArgSep + "\n")
		sb.WriteString(k + "\n")
		sb.WriteString(ValueSep + "\n")
		sb.WriteString(call.Arguments.values[k] + "\n")
	}
	sb.WriteString(EndCall)
	return sb.String()
}
