package guard

import "fmt"

// Policy selects which finish checks apply. Stricter presets enable a
// superset of the checks of looser ones.
type Policy struct {
	Name                  string
	RequireFailingTest    bool
	RequireEdit           bool
	RequireTestsAfterEdit bool
	RequirePassingTests   bool
}

var (
	PolicyStrict = Policy{
		Name:                  "strict",
		RequireFailingTest:    true,
		RequireEdit:           true,
		RequireTestsAfterEdit: true,
		RequirePassingTests:   true,
	}
	PolicyStandard = Policy{
		Name:                  "standard",
		RequireEdit:           true,
		RequireTestsAfterEdit: true,
		RequirePassingTests:   true,
	}
	PolicyLenient = Policy{
		Name:        "lenient",
		RequireEdit: true,
	}
)

// PolicyByName resolves a preset by its name.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "strict":
		return PolicyStrict, nil
	case "", "standard":
		return PolicyStandard, nil
	case "lenient":
		return PolicyLenient, nil
	default:
		return Policy{}, fmt.Errorf("unknown finish policy %q", name)
	}
}

// Includes reports whether every check enabled in other is enabled in p.
func (p Policy) Includes(other Policy) bool {
	return (!other.RequireFailingTest || p.RequireFailingTest) &&
		(!other.RequireEdit || p.RequireEdit) &&
		(!other.RequireTestsAfterEdit || p.RequireTestsAfterEdit) &&
		(!other.RequirePassingTests || p.RequirePassingTests)
}
