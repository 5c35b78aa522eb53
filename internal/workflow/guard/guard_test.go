package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/Cyclone1070/reactagent/internal/tool"
	"github.com/Cyclone1070/reactagent/internal/workflow/protocol"
	"github.com/stretchr/testify/assert"
)

const editOK = "Successfully replaced lines 1 to 1 (1 lines) in a.py"

type mockVerifier struct {
	changed bool
	err     error
}

func (m *mockVerifier) HasChanges(ctx context.Context) (bool, error) { return m.changed, m.err }

func newGuard(p Policy) *Guard {
	cfg := DefaultConfig()
	cfg.Policy = p
	return New(cfg)
}

func TestObserve_Edit(t *testing.T) {
	g := newGuard(PolicyStandard)

	g.Observe("replace_in_file", protocol.Args{}, editOK, nil)

	assert.Equal(t, State{MadeEdit: true}, g.State())
}

func TestObserve_EditWithoutMarkerIgnored(t *testing.T) {
	g := newGuard(PolicyStandard)

	g.Observe("replace_in_file", protocol.Args{}, "nothing happened", nil)
	g.Observe("replace_in_file", protocol.Args{}, "", tool.Errorf(tool.KindNotFound, "missing"))

	assert.False(t, g.State().MadeEdit)
}

func TestObserve_EditResetsRanTests(t *testing.T) {
	g := newGuard(PolicyStandard)
	g.Observe("replace_in_file", protocol.Args{}, editOK, nil)
	g.Observe("run_test", protocol.Args{}, "2 passed", nil)
	assert.True(t, g.State().RanTestsAfterEdit)

	g.Observe("replace_in_file", protocol.Args{}, editOK, nil)

	assert.True(t, g.State().MadeEdit)
	assert.False(t, g.State().RanTestsAfterEdit)
}

func TestObserve_TestBeforeEditDoesNotCountAsRerun(t *testing.T) {
	g := newGuard(PolicyStandard)

	g.Observe("run_test", protocol.Args{}, "1 failed\nFAILED test_a.py::test_x", nil)

	assert.Equal(t, State{SawFailingTest: true, LastTestHadFailure: true}, g.State())
}

func TestObserve_ShellTestCommand(t *testing.T) {
	g := newGuard(PolicyStandard)
	g.Observe("replace_in_file", protocol.Args{}, editOK, nil)

	g.Observe("run_bash_cmd", protocol.NewArgs("command", "ls -la"), "Traceback (most recent call last)", nil)
	assert.False(t, g.State().RanTestsAfterEdit, "non-test shell command has no effect")
	assert.False(t, g.State().LastTestHadFailure)

	g.Observe("run_bash_cmd", protocol.NewArgs("command", "python -m pytest tests/"), "3 passed", nil)
	assert.True(t, g.State().RanTestsAfterEdit)
	assert.False(t, g.State().LastTestHadFailure)
}

func TestObserve_TestToolErrorCountsAsFailure(t *testing.T) {
	g := newGuard(PolicyStandard)

	g.Observe("run_test", protocol.Args{}, "", tool.Errorf(tool.KindTimeout, "timed out"))

	assert.True(t, g.State().LastTestHadFailure)
	assert.True(t, g.State().SawFailingTest)
}

func TestObserve_Monotonicity(t *testing.T) {
	g := newGuard(PolicyStandard)
	g.Observe("replace_in_file", protocol.Args{}, editOK, nil)

	events := []struct {
		name   string
		args   protocol.Args
		result string
		err    error
	}{
		{"run_test", protocol.Args{}, "FAILED", nil},
		{"show_file", protocol.NewArgs("file_path", "a.py"), "1: x", nil},
		{"run_bash_cmd", protocol.NewArgs("command", "pytest"), "ok", nil},
		{"replace_in_file", protocol.Args{}, "bad", errors.New("nope")},
		{"run_test", protocol.Args{}, "", errors.New("crash")},
	}
	for _, e := range events {
		g.Observe(e.name, e.args, e.result, e.err)
		assert.True(t, g.State().MadeEdit, "MadeEdit cleared by %s", e.name)
	}

	g.Reset()
	assert.Equal(t, State{}, g.State())
}

func TestEvaluateFinish_NoEditAlwaysRejected(t *testing.T) {
	for _, p := range []Policy{PolicyStrict, PolicyStandard, PolicyLenient} {
		for mask := 0; mask < 8; mask++ {
			g := newGuard(p)
			g.state = State{
				RanTestsAfterEdit:  mask&1 != 0,
				SawFailingTest:     mask&2 != 0,
				LastTestHadFailure: mask&4 != 0,
			}

			v := g.EvaluateFinish(context.Background())

			assert.False(t, v.Accepted, "policy %s state %+v", p.Name, g.state)
			assert.NotEmpty(t, v.Message)
		}
	}
}

func TestEvaluateFinish_CheckOrder(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		state  State
		want   RejectReason
	}{
		{"strict needs failing test", PolicyStrict, State{MadeEdit: true, RanTestsAfterEdit: true}, ReasonNoFailingTest},
		{"no edit", PolicyStandard, State{}, ReasonNoEdit},
		{"not rerun", PolicyStandard, State{MadeEdit: true}, ReasonTestsNotRerun},
		{"still failing", PolicyStandard, State{MadeEdit: true, RanTestsAfterEdit: true, LastTestHadFailure: true}, ReasonTestsFailing},
		{"standard accepts", PolicyStandard, State{MadeEdit: true, RanTestsAfterEdit: true}, ReasonNone},
		{"strict accepts", PolicyStrict, State{MadeEdit: true, RanTestsAfterEdit: true, SawFailingTest: true}, ReasonNone},
		{"lenient accepts untested edit", PolicyLenient, State{MadeEdit: true, LastTestHadFailure: true}, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGuard(tt.policy)
			g.state = tt.state

			v := g.EvaluateFinish(context.Background())

			assert.Equal(t, tt.want, v.Reason)
			assert.Equal(t, tt.want == ReasonNone, v.Accepted)
		})
	}
}

func TestEvaluateFinish_Verifier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Policy = PolicyLenient
	verifier := &mockVerifier{}
	cfg.Verifier = verifier
	g := New(cfg)
	g.Observe("replace_in_file", protocol.Args{}, editOK, nil)

	assert.Equal(t, ReasonNoChanges, g.EvaluateFinish(context.Background()).Reason)
	assert.True(t, g.NoChangesMade(context.Background()))

	verifier.err = errors.New("git broke")
	assert.Equal(t, ReasonVerifierFailure, g.EvaluateFinish(context.Background()).Reason)
	assert.False(t, g.NoChangesMade(context.Background()), "falls back to MadeEdit")

	verifier.err = nil
	verifier.changed = true
	assert.True(t, g.EvaluateFinish(context.Background()).Accepted)
}

func TestScenario_EditFinishTestFinish(t *testing.T) {
	g := newGuard(PolicyStandard)
	ctx := context.Background()

	g.Observe("replace_in_file", protocol.Args{}, editOK, nil)
	assert.Equal(t, State{MadeEdit: true}, g.State())

	v := g.EvaluateFinish(ctx)
	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonTestsNotRerun, v.Reason)

	g.Observe("run_test", protocol.Args{}, "2 passed", nil)
	assert.True(t, g.State().RanTestsAfterEdit)
	assert.False(t, g.State().LastTestHadFailure)

	assert.True(t, g.EvaluateFinish(ctx).Accepted)
}

func TestPolicy_SupersetRelation(t *testing.T) {
	assert.True(t, PolicyStrict.Includes(PolicyStandard))
	assert.True(t, PolicyStandard.Includes(PolicyLenient))
	assert.True(t, PolicyStrict.Includes(PolicyLenient))
	assert.False(t, PolicyLenient.Includes(PolicyStandard))
	assert.False(t, PolicyStandard.Includes(PolicyStrict))
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	assert.NoError(t, err)
	assert.Equal(t, PolicyStandard, p)

	p, err = PolicyByName("strict")
	assert.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)

	_, err = PolicyByName("yolo")
	assert.Error(t, err)
}

func TestHasFailure(t *testing.T) {
	assert.False(t, HasFailure("2 passed in 0.03s"))
	assert.True(t, HasFailure("1 failed, 1 passed"))
	assert.True(t, HasFailure("Traceback (most recent call last):"))
	assert.True(t, HasFailure("=== FAILURES ==="))
	assert.True(t, HasFailure("ValueError: Exception raised"))
}
