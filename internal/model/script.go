package model

// ScriptResult is the outcome of running the customer script. The script
// either returns control to the boot sequence or requests termination with an
// exit code, there is no other contract.
type ScriptResult struct {
	// Terminated is true when the script requested termination instead of
	// returning control.
	Terminated bool
	// ExitCode is the exit code the script terminated with. Only meaningful
	// when Terminated is true.
	ExitCode int
	// Env is the script shell's resulting environment, captured at the moment
	// the shell exited. The script is free to mutate it.
	Env map[string]string
}

// Continued returns a result for a script that returned control.
func Continued(env map[string]string) ScriptResult {
	return ScriptResult{Env: env}
}

// Terminated returns a result for a script that requested termination.
func Terminated(exitCode int, env map[string]string) ScriptResult {
	return ScriptResult{Terminated: true, ExitCode: exitCode, Env: env}
}
