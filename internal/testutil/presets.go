package testutil

// Paths used by the two-file scenario.
const (
	PathA = "/root1/a"
	PathB = "/root1/b"
)

// ScenarioProject returns a project with PathA (entry 1) and PathB
// (entry 2).
func ScenarioProject() *FakeProject {
	return NewFakeProject().
		WithFile(PathA, "alpha\n").
		WithFile(PathB, "beta\n")
}
