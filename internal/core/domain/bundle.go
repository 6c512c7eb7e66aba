// Package domain contains core domain types for the compile cache.
package domain

// CompileResult is what a compiler capability produces for a component
// source file: the bundled output and the full transitive list of paths
// that influenced it (always including the source itself).
type CompileResult struct {
	// Bundle is the compiled bundle content.
	Bundle []byte
	// Dependencies is the list of paths that determined the output.
	Dependencies []string
}
