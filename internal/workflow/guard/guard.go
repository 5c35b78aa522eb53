// Package guard tracks edit and test progress during a run and decides
// whether a finish request may be accepted.
package guard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
)

// State holds the progress flags of one run.
type State struct {
	MadeEdit           bool
	RanTestsAfterEdit  bool
	SawFailingTest     bool
	LastTestHadFailure bool
}

// FailureTokens mark a test run as failing when found in its upper-cased
// output.
var FailureTokens = []string{"FAILED", "ERROR", "TRACEBACK", "EXCEPTION", "FAILURES"}

// EditSuccessMarkers identify a successful edit in an edit tool's output.
var EditSuccessMarkers = []string{"Successfully replaced", "Successfully wrote"}

// RejectReason names the check that blocked a finish.
type RejectReason string

const (
	ReasonNone            RejectReason = ""
	ReasonNoFailingTest   RejectReason = "no_failing_test"
	ReasonNoEdit          RejectReason = "no_edit"
	ReasonTestsNotRerun   RejectReason = "tests_not_rerun"
	ReasonTestsFailing    RejectReason = "tests_failing"
	ReasonNoChanges       RejectReason = "no_changes"
	ReasonVerifierFailure RejectReason = "verifier_failure"
)

// Verdict is the outcome of a finish evaluation.
type Verdict struct {
	Accepted bool
	Reason   RejectReason
	Message  string
}

// ChangeVerifier reports whether the workspace holds uncommitted changes.
type ChangeVerifier interface {
	HasChanges(ctx context.Context) (bool, error)
}

// Config selects which tools drive the state machine.
type Config struct {
	Policy    Policy
	EditTools []string // tools whose success marks an edit
	TestTools []string // tools always treated as test runs
	ShellTool string   // tool whose "command" argument is checked with IsTestCommand
	Verifier  ChangeVerifier
}

// DefaultConfig wires the standard tool names.
func DefaultConfig() Config {
	return Config{
		Policy:    PolicyStandard,
		EditTools: []string{"replace_in_file"},
		TestTools: []string{"run_test"},
		ShellTool: "run_bash_cmd",
	}
}

// Guard is the per-run state machine. Not safe for concurrent use.
type Guard struct {
	cfg   Config
	state State
}

// New returns a guard with all flags false.
func New(cfg Config) *Guard {
	return &Guard{cfg: cfg}
}

// Reset clears all flags.
func (g *Guard) Reset() {
	g.state = State{}
}

// State returns a copy of the current flags.
func (g *Guard) State() State {
	return g.state
}

// Policy returns the active policy.
func (g *Guard) Policy() Policy {
	return g.cfg.Policy
}

// Observe updates the flags after a tool call. err is the tool's error;
// a failing test tool counts as a test run with a failure.
func (g *Guard) Observe(name string, args protocol.Args, result string, err error) {
	switch {
	case contains(g.cfg.EditTools, name):
		if err == nil && containsAny(result, EditSuccessMarkers) {
			g.state.MadeEdit = true
			g.state.RanTestsAfterEdit = false
			slog.Debug("guard: edit recorded", "tool", name)
		}
	case g.isTestCall(name, args):
		if g.state.MadeEdit {
			g.state.RanTestsAfterEdit = true
		}
		output := result
		if err != nil {
			output = result + "\n" + err.Error()
		}
		g.state.LastTestHadFailure = err != nil || HasFailure(output)
		if g.state.LastTestHadFailure {
			g.state.SawFailingTest = true
		}
		slog.Debug("guard: test run recorded", "tool", name, "failed", g.state.LastTestHadFailure)
	}
}

func (g *Guard) isTestCall(name string, args protocol.Args) bool {
	if contains(g.cfg.TestTools, name) {
		return true
	}
	if g.cfg.ShellTool != "" && name == g.cfg.ShellTool {
		cmd, _ := args.Get("command")
		return IsTestCommand(cmd)
	}
	return false
}

// EvaluateFinish applies the policy checks in order and returns the first
// failing one, or an accepting verdict.
func (g *Guard) EvaluateFinish(ctx context.Context) Verdict {
	p := g.cfg.Policy
	s := g.state

	if p.RequireFailingTest && !s.SawFailingTest {
		return reject(ReasonNoFailingTest,
			"Cannot finish: you have not reproduced the issue with a failing test. "+
				"Write or run a test that fails before your fix, then fix the code and re-run the tests.")
	}
	if p.RequireEdit && !s.MadeEdit {
		return reject(ReasonNoEdit,
			"Cannot finish: no code changes have been made. "+
				"Use replace_in_file to modify the code before calling finish. "+
				"Text descriptions in finish do not create patches, only file edits do.")
	}
	if p.RequireTestsAfterEdit && !s.RanTestsAfterEdit {
		return reject(ReasonTestsNotRerun,
			"Cannot finish: you edited code but have not run the tests since. "+
				"Run the relevant tests (for example with run_test) and make sure they pass.")
	}
	if p.RequirePassingTests && s.LastTestHadFailure {
		return reject(ReasonTestsFailing,
			"Cannot finish: the most recent test run reported failures. "+
				"Fix the remaining failures and re-run the tests.")
	}

	if g.cfg.Verifier != nil && p.RequireEdit {
		changed, err := g.cfg.Verifier.HasChanges(ctx)
		if err != nil {
			return reject(ReasonVerifierFailure, fmt.Sprintf("Cannot finish: could not verify workspace changes: %v", err))
		}
		if !changed {
			return reject(ReasonNoChanges,
				"Cannot finish: no changes detected in the workspace. "+
					"Your edits may have been reverted. Make the change again and confirm it with verify_changes.")
		}
	}

	return Verdict{Accepted: true}
}

// NoChangesMade reports whether the run ended without a detectable change.
// The verifier is consulted when configured; otherwise MadeEdit decides.
func (g *Guard) NoChangesMade(ctx context.Context) bool {
	if g.cfg.Verifier != nil {
		changed, err := g.cfg.Verifier.HasChanges(ctx)
		if err == nil {
			return !changed
		}
	}
	return !g.state.MadeEdit
}

func reject(reason RejectReason, msg string) Verdict {
	return Verdict{Reason: reason, Message: "ERROR: " + msg}
}

// HasFailure reports whether output contains a failure token.
func HasFailure(output string) bool {
	upper := strings.ToUpper(output)
	for _, tok := range FailureTokens {
		if strings.Contains(upper, tok) {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
