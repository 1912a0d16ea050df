package orchestrator

import "fmt"

// User-content templates sent alongside each phase's system instruction.
const (
	generationPrompt = "Generate a Google Test unit test file for the following C++ code:\n\n%s"
	refinementPrompt = "Refine the following Google Test unit test file:\n\n%s"
	debuggingPrompt  = "Fix the following C++ code based on the build logs:\n\nCode:\n%s\n\nBuild Logs:\n%s"
)

func generationContent(source string) string {
	return fmt.Sprintf(generationPrompt, source)
}

func refinementContent(artifact string) string {
	return fmt.Sprintf(refinementPrompt, artifact)
}

func debuggingContent(artifact, diagnostics string) string {
	return fmt.Sprintf(debuggingPrompt, artifact, diagnostics)
}
