package buildsys

// EnvVar is one environment variable. Overlays are ordered: when two
// entries share a name, the later one wins.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Invocation is a fully constructed command: what to run, where, and which
// variables to lay over the ambient process environment. It is the whole
// contract handed to the process-execution collaborator.
type Invocation struct {
	Argv []string
	Dir  string
	Env  []EnvVar
}

// Program returns the executable of the invocation, or "" when empty.
func (inv Invocation) Program() string {
	if len(inv.Argv) == 0 {
		return ""
	}
	return inv.Argv[0]
}

// ToolMissingError reports that a planner has no path for a tool it needs
// (the toolchain simply lacks it). It is a hard failure for the operation
// that needed the tool, never for discovery.
type ToolMissingError struct {
	Tool string
}

func (e *ToolMissingError) Error() string {
	return "required tool not available in this kit: " + e.Tool
}

// Planner captures the shared lifecycle of build helpers (CMake today,
// other generators tomorrow). Implementations construct invocations only;
// running them is the caller's business.
type Planner interface {
	// Lifecycle.
	Configure() (Invocation, error)
	Build() (Invocation, error)
	Install() (Invocation, error)

	// Test plans the test-runner invocation rooted at testDir.
	Test(testDir string) (Invocation, error)
}
