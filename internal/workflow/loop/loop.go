package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/Cyclone1070/reactagent/internal/config"
	"github.com/Cyclone1070/reactagent/internal/provider"
	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/workflow"
	"github.com/Cyclone1070/reactagent/internal/workflow/guard"
	"github.com/Cyclone1070/reactagent/internal/workflow/history"
	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
	"github.com/Cyclone1070/reactagent/internal/workflow/toolmanager"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Outcome distinguishes how a run ended.
type Outcome string

const (
	OutcomeFinished        Outcome = "finished"
	OutcomeBudgetExhausted Outcome = "budget_exhausted"
)

// Labels used when the step budget runs out.
const (
	LabelMaxSteps          = "Max steps reached"
	LabelMaxStepsNoChanges = "Max steps reached - no changes made"
)

// Result is the outcome of Run.
type Result struct {
	Output   string
	Outcome  Outcome
	Steps    int // iterations executed
	LLMCalls int
	Guard    guard.State
}

// Option configures an Agent.
type Option func(*Agent)

// WithEvents sends workflow events to ch. Sends block, so the consumer must
// keep draining until DoneEvent.
func WithEvents(ch chan<- workflow.Event) Option {
	return func(a *Agent) { a.events = ch }
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.basePrompt = prompt }
}

// WithFinishHandler post-processes an accepted finish result.
func WithFinishHandler(h FinishHandler) Option {
	return func(a *Agent) { a.finish.handler = h }
}

// WithChangeVerifier enables the workspace change check on finish.
func WithChangeVerifier(v guard.ChangeVerifier) Option {
	return func(a *Agent) { a.guardCfg.Verifier = v }
}

// WithGuardConfig overrides the guard tool wiring. The policy from the
// agent config still applies unless set here.
func WithGuardConfig(cfg guard.Config) Option {
	return func(a *Agent) {
		if cfg.Policy.Name == "" {
			cfg.Policy = a.guardCfg.Policy
		}
		a.guardCfg = cfg
	}
}

// WithMaxObservationChars truncates tool output shown to the model.
func WithMaxObservationChars(n int) Option {
	return func(a *Agent) { a.maxObservation = n }
}

// WithTracer sets the tracer used for step spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Agent) { a.tracer = t }
}

// Agent runs the ReAct loop. One Agent owns its message store, tool
// registry and guard; it must not run concurrently with itself.
type Agent struct {
	name           string
	provider       llmProvider
	tools          *toolmanager.ToolManager
	store          *history.Store
	guard          *guard.Guard
	guardCfg       guard.Config
	finish         *finishTool
	basePrompt     string
	loopWindow     int
	maxObservation int
	events         chan<- workflow.Event
	tracer         trace.Tracer

	systemID int
	userID   int
}

// New builds an agent with the given tools plus the mandatory finish tool.
func New(cfg config.AgentConfig, p llmProvider, tools []toolmanager.Tool, opts ...Option) (*Agent, error) {
	if p == nil {
		return nil, errors.New("provider is required")
	}

	policy, err := guard.PolicyByName(cfg.FinishPolicy)
	if err != nil {
		return nil, err
	}

	guardCfg := guard.DefaultConfig()
	guardCfg.Policy = policy

	a := &Agent{
		name:       cfg.Name,
		provider:   p,
		store:      history.NewStore(),
		guardCfg:   guardCfg,
		finish:     &finishTool{},
		basePrompt: DefaultSystemPrompt,
		loopWindow: cfg.LoopWindow,
		tracer:     otel.Tracer("github.com/Cyclone1070/reactagent/internal/workflow/loop"),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.tools = toolmanager.NewToolManager()
	if err := a.tools.Register(append([]toolmanager.Tool{a.finish}, tools...)...); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	a.guard = guard.New(a.guardCfg)

	a.systemID = a.store.Append(provider.RoleSystem, a.basePrompt)
	a.userID = a.store.Append(provider.RoleUser, "")

	return a, nil
}

// Name returns the agent's configured name.
func (a *Agent) Name() string { return a.name }

// Tools returns the agent's registry.
func (a *Agent) Tools() *toolmanager.ToolManager { return a.tools }

// History returns the agent's message store.
func (a *Agent) History() *history.Store { return a.store }

// SystemPrompt returns the fully rendered system prompt.
func (a *Agent) SystemPrompt() string {
	return renderSystem(a.basePrompt, a.tools.Catalogue())
}

// Run drives the loop for task until an accepted finish or until maxSteps
// iterations have run. maxSteps <= 0 runs no iterations; values above
// config.MaxStepsCeiling are clamped. Only context cancellation and
// store corruption are returned as errors; every other failure becomes a
// turn in the conversation.
func (a *Agent) Run(ctx context.Context, task string, maxSteps int) (Result, error) {
	maxSteps = min(maxSteps, config.MaxStepsCeiling)

	a.guard.Reset()
	if err := a.store.Update(a.userID, task); err != nil {
		return Result{}, fmt.Errorf("set task: %w", err)
	}

	detector := newLoopDetector(a.loopWindow)
	res := Result{}

	ctx, runSpan := a.tracer.Start(ctx, "agent.run", trace.WithAttributes(
		attribute.String("agent.name", a.name),
		attribute.Int("agent.max_steps", maxSteps),
	))
	defer runSpan.End()

	slog.Info("agent run started", "agent", a.name, "max_steps", maxSteps, "policy", a.guard.Policy().Name)

	for step := 0; step < maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			runSpan.SetStatus(codes.Error, "cancelled")
			return a.result(res), err
		}
		res.Steps = step + 1

		done, output, err := a.step(ctx, step, detector, &res)
		if err != nil {
			runSpan.RecordError(err)
			runSpan.SetStatus(codes.Error, err.Error())
			return a.result(res), err
		}
		if done {
			res.Output = output
			res.Outcome = OutcomeFinished
			runSpan.SetAttributes(attribute.String("agent.outcome", string(res.Outcome)))
			slog.Info("agent finished", "agent", a.name, "steps", res.Steps, "llm_calls", res.LLMCalls)
			a.emit(workflow.DoneEvent{Outcome: string(res.Outcome), Output: output, Steps: res.Steps})
			return a.result(res), nil
		}
	}

	res.Outcome = OutcomeBudgetExhausted
	res.Output = LabelMaxSteps
	if a.guard.NoChangesMade(ctx) {
		res.Output = LabelMaxStepsNoChanges
	}
	runSpan.SetAttributes(attribute.String("agent.outcome", string(res.Outcome)))
	slog.Warn("agent step budget exhausted", "agent", a.name, "steps", res.Steps, "output", res.Output)
	a.emit(workflow.DoneEvent{Outcome: string(res.Outcome), Output: res.Output, Steps: res.Steps})
	return a.result(res), nil
}

func (a *Agent) result(res Result) Result {
	res.Guard = a.guard.State()
	return res
}

// step runs one iteration. It returns done with the run output once a
// finish is accepted.
func (a *Agent) step(ctx context.Context, step int, detector *loopDetector, res *Result) (bool, string, error) {
	ctx, span := a.tracer.Start(ctx, "agent.step", trace.WithAttributes(attribute.Int("agent.step", step)))
	defer span.End()

	a.emit(workflow.ThinkingEvent{Step: step})

	messages := a.store.Render(func(stored string) string {
		return renderSystem(stored, a.tools.Catalogue())
	})

	res.LLMCalls++
	text, err := a.provider.Generate(ctx, messages)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, "", ctxErr
		}
		span.RecordError(err)
		slog.Warn("llm call failed", "step", step, "error", err)
		a.feedback(step, fmt.Sprintf("Error calling LLM: %v", err))
		return false, "", nil
	}

	a.store.Append(provider.RoleAssistant, text)

	call, err := protocol.Parse(text)
	if err != nil {
		a.emit(workflow.TextEvent{Step: step, Text: text})
		slog.Debug("unparseable response", "step", step, "error", err)
		a.feedback(step, parseErrorMessage(err))
		return false, "", nil
	}
	a.emit(workflow.TextEvent{Step: step, Thought: call.Thought, Text: text})
	span.SetAttributes(attribute.String("agent.tool", call.Name))

	if call.Name == protocol.FinishTool {
		return a.handleFinish(ctx, step, call, span)
	}

	a.dispatch(ctx, step, call)
	if err := ctx.Err(); err != nil {
		return false, "", err
	}

	if detector.record(callSignature(call.Name, call.Arguments)) {
		slog.Warn("repeating tool calls detected", "step", step, "window", a.loopWindow)
		a.feedback(step, loopWarning(a.loopWindow))
	}
	return false, "", nil
}

func (a *Agent) handleFinish(ctx context.Context, step int, call *protocol.ParsedCall, span trace.Span) (bool, string, error) {
	verdict := a.guard.EvaluateFinish(ctx)
	if !verdict.Accepted {
		span.SetAttributes(attribute.String("agent.finish_rejected", string(verdict.Reason)))
		slog.Info("finish rejected", "step", step, "reason", verdict.Reason)
		a.store.Append(provider.RoleUser, verdict.Message)
		a.emit(workflow.FinishRejectedEvent{Step: step, Reason: string(verdict.Reason), Message: verdict.Message})
		return false, "", nil
	}

	output, err := a.tools.Execute(ctx, protocol.FinishTool, call.Arguments)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, "", ctxErr
		}
		a.feedback(step, toolErrorMessage(protocol.FinishTool, err))
		return false, "", nil
	}
	return true, output, nil
}

// dispatch executes a non-finish call and appends its observation.
func (a *Agent) dispatch(ctx context.Context, step int, call *protocol.ParsedCall) {
	if _, ok := a.tools.Lookup(call.Name); !ok {
		a.feedback(step, fmt.Sprintf("Error: Unknown function %q. Available functions: %v", call.Name, a.tools.Names()))
		return
	}

	a.emit(workflow.ToolStartEvent{Step: step, ToolName: call.Name, Args: call.Arguments.Map()})
	slog.Debug("executing tool", "step", step, "tool", call.Name)

	output, err := a.tools.Execute(ctx, call.Name, call.Arguments)
	a.guard.Observe(call.Name, call.Arguments, output, err)

	if err != nil {
		msg := toolErrorMessage(call.Name, err)
		a.store.Append(provider.RoleUser, a.truncate(msg))
		a.emit(workflow.ToolEndEvent{Step: step, ToolName: call.Name, Output: msg, ErrKind: errorKind(err)})
		slog.Debug("tool failed", "step", step, "tool", call.Name, "kind", errorKind(err))
		return
	}

	a.store.Append(provider.RoleUser, a.truncate("Observation: "+output))
	a.emit(workflow.ToolEndEvent{Step: step, ToolName: call.Name, Output: output})
}

func (a *Agent) feedback(step int, msg string) {
	a.store.Append(provider.RoleUser, msg)
	a.emit(workflow.FeedbackEvent{Step: step, Message: msg})
}

func (a *Agent) emit(e workflow.Event) {
	if a.events != nil {
		a.events <- e
	}
}

func (a *Agent) truncate(s string) string {
	if a.maxObservation <= 0 || len(s) <= a.maxObservation {
		return s
	}
	cut := a.maxObservation
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + fmt.Sprintf("\n... [truncated %d characters]", len(s)-cut)
}

func errorKind(err error) tool.ErrorKind {
	var te *tool.Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return tool.KindInternal
}

// toolErrorMessage phrases a tool failure for the model, with a hint per
// error kind when the tool gave none.
func toolErrorMessage(name string, err error) string {
	var te *tool.Error
	if !errors.As(err, &te) {
		return fmt.Sprintf("Error executing %s (%s): %v", name, tool.KindInternal, err)
	}

	hint := te.Hint
	if hint == "" {
		switch te.Kind {
		case tool.KindInvalidArguments:
			hint = "Check the function signature in the tool list and retry with valid arguments."
		case tool.KindNotFound:
			hint = "Use find_files or run_bash_cmd with ls to locate the right path."
		case tool.KindTimeout:
			hint = "Run a narrower command, for example a single test instead of the whole suite."
		case tool.KindOutsideWorkspace:
			hint = "Only paths inside the repository are accessible."
		case tool.KindCommandFailed, tool.KindIO, tool.KindInternal:
		}
	}

	msg := fmt.Sprintf("Error executing %s (%s): %s", name, te.Kind, te.Error())
	if hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}
