// Package runtime executes scaffold tasks as subprocesses. The exec runtime
// runs a task's command line directly, falling back to the system shell when
// the line uses shell operators. The node runtime hands the task name to the
// scaffold's Node.js entry script. DispatchRuntime selects the implementation
// from the scaffold manifest's runtime field.
package runtime
