package workflow

import "github.com/Cyclone1070/reactagent/internal/tool"

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// ThinkingEvent is emitted before each LLM call.
type ThinkingEvent struct {
	Step int
}

func (ThinkingEvent) isEvent() {}

// TextEvent is emitted with the raw text of each LLM turn.
type TextEvent struct {
	Step    int
	Thought string // reasoning before the call block, empty if unparsed
	Text    string
}

func (TextEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	Step     int
	ToolName string
	Args     map[string]string
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool returns.
type ToolEndEvent struct {
	Step     int
	ToolName string
	Output   string
	ErrKind  tool.ErrorKind // empty on success
}

func (ToolEndEvent) isEvent() {}

// FeedbackEvent is emitted for every corrective turn the loop appends:
// parse errors, unknown tools, LLM failures, loop warnings.
type FeedbackEvent struct {
	Step    int
	Message string
}

func (FeedbackEvent) isEvent() {}

// FinishRejectedEvent is emitted when the guard refuses a finish.
type FinishRejectedEvent struct {
	Step    int
	Reason  string
	Message string
}

func (FinishRejectedEvent) isEvent() {}

// DoneEvent is emitted when the workflow loop completes.
type DoneEvent struct {
	Outcome string
	Output  string
	Steps   int
}

func (DoneEvent) isEvent() {}
