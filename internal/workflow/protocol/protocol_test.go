package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleCall(t *testing.T) {
	text := `I should look at the file.
----BEGIN_FUNCTION_CALL----
show_file
----ARG----
file_path
----VALUE----
src/app.py
----END_FUNCTION_CALL----`

	call, err := Parse(text)

	require.NoError(t, err)
	assert.Equal(t, "I should look at the file.", call.Thought)
	assert.Equal(t, "show_file", call.Name)
	assert.Equal(t, []string{"file_path"}, call.Arguments.Keys())
	v, ok := call.Arguments.Get("file_path")
	assert.True(t, ok)
	assert.Equal(t, "src/app.py", v)
}

func TestParse_MultilineValueAndOrder(t *testing.T) {
	text := `----BEGIN_FUNCTION_CALL----
replace_in_file
----ARG----
file_path
----VALUE----
a.py
----ARG----
from_line
----VALUE----
3
----ARG----
to_line
----VALUE----
4
----ARG----
content
----VALUE----
def f():
    return 1

----END_FUNCTION_CALL----`

	call, err := Parse(text)

	require.NoError(t, err)
	assert.Equal(t, "", call.Thought)
	assert.Equal(t, []string{"file_path", "from_line", "to_line", "content"}, call.Arguments.Keys())
	content, _ := call.Arguments.Get("content")
	assert.Equal(t, "def f():\n    return 1", content)
}

func TestParse_LastOccurrenceAnchoring(t *testing.T) {
	text := `The format looks like:
----BEGIN_FUNCTION_CALL----
decoy
----ARG----
x
----VALUE----
1
----END_FUNCTION_CALL----
Now the real one.
----BEGIN_FUNCTION_CALL----
run_bash_cmd
----ARG----
command
----VALUE----
ls -la
----END_FUNCTION_CALL----`

	call, err := Parse(text)

	require.NoError(t, err)
	assert.Equal(t, "run_bash_cmd", call.Name)
	assert.Equal(t, map[string]string{"command": "ls -la"}, call.Arguments.Map())
	assert.Contains(t, call.Thought, "decoy")
	assert.True(t, strings.HasSuffix(call.Thought, "Now the real one."))
}

func TestParse_NoCall(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"plain text", "I am done thinking."},
		{"begin only", BeginCall + "\nfinish\n"},
		{"end only", "finish\n" + EndCall},
		{"end before begin", EndCall + "\nfinish\n" + BeginCall},
		{"empty body", BeginCall + "\n\n" + EndCall},
		{"end overlaps begin", "thinking ----BEGIN_FUNCTION_CALL----END_FUNCTION_CALL----"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.ErrorIs(t, err, ErrNoCallFound)
		})
	}
}

func TestParse_ArgWithoutValueIsEmpty(t *testing.T) {
	text := BeginCall + "\nrun_test\n" + ArgSep + "\nverbose\n" + ArgSep + "\ntest_path\n" + ValueSep + "\ntests/test_a.py\n" + EndCall

	call, err := Parse(text)

	require.NoError(t, err)
	assert.Equal(t, []string{"verbose", "test_path"}, call.Arguments.Keys())
	v, ok := call.Arguments.Get("verbose")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	p, _ := call.Arguments.Get("test_path")
	assert.Equal(t, "tests/test_a.py", p)
}

func TestParse_TrailingArgSep(t *testing.T) {
	text := BeginCall + "\nfinish\n" + ArgSep + "\n" + EndCall

	call, err := Parse(text)

	require.NoError(t, err)
	assert.Equal(t, "finish", call.Name)
	assert.Equal(t, 0, call.Arguments.Len())
}

func TestParse_DuplicateKeysLastWinsFirstOrder(t *testing.T) {
	text := BeginCall + "\nf\n" +
		ArgSep + "\na\n" + ValueSep + "\n1\n" +
		ArgSep + "\nb\n" + ValueSep + "\n2\n" +
		ArgSep + "\na\n" + ValueSep + "\n3\n" + EndCall

	call, err := Parse(text)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, call.Arguments.Keys())
	assert.Equal(t, map[string]string{"a": "3", "b": "2"}, call.Arguments.Map())
}

func TestParse_IgnoresTextAfterEndMarker(t *testing.T) {
	text := BeginCall + "\nfinish\n" + ArgSep + "\nresult\n" + ValueSep + "\ndone\n" + EndCall + "\nextra chatter"

	call, err := Parse(text)

	require.NoError(t, err)
	assert.Equal(t, "finish", call.Name)
	r, _ := call.Arguments.Get("result")
	assert.Equal(t, "done", r)
}

func TestFormat_RoundTrip(t *testing.T) {
	calls := []ParsedCall{
		{Name: "get_repo_info"},
		{Thought: "Edit it.", Name: "replace_in_file", Arguments: NewArgs(
			"file_path", "pkg/mod.py",
			"from_line", "10",
			"to_line", "12",
			"content", "line one\n    line two\n\nline four",
		)},
		{Thought: "multi\nline thought", Name: "finish", Arguments: NewArgs("result", "Fixed the off-by-one.")},
	}

	for _, c := range calls {
		t.Run(c.Name, func(t *testing.T) {
			parsed, err := Parse(Format(c))
			require.NoError(t, err)
			assert.Equal(t, c.Thought, parsed.Thought)
			assert.Equal(t, c.Name, parsed.Name)
			assert.Equal(t, c.Arguments.Keys(), parsed.Arguments.Keys())
			assert.Equal(t, c.Arguments.Map(), parsed.Arguments.Map())
		})
	}
}

func TestResponseFormat_ContainsMarkers(t *testing.T) {
	for _, m := range []string{BeginCall, EndCall, ArgSep, ValueSep} {
		assert.Contains(t, ResponseFormat, m)
	}
}
