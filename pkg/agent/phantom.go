package agent

import "fmt"

// phantomTools are tool names models hallucinate when no such tool was
// offered. Calls to these are answered with a correction rather than
// failing the invocation.
var phantomTools = map[string]struct{}{
	"_tools":   {},
	"required": {},
}

// IsPhantomTool reports whether name is a known hallucinated tool name.
func IsPhantomTool(name string) bool {
	_, ok := phantomTools[name]
	return ok
}

func phantomCorrection(name string) string {
	return fmt.Sprintf("Error: %q is not a valid tool. Do not call tools that were not provided. Answer directly with the requested content instead.", name)
}
