// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// Compiler defines the interface for compiling a component source file
// into a bundle.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile bundles the given source file.
	//
	// The returned result reports every path that determined the output,
	// including sourcePath itself, so the next freshness computation is
	// accurate. Any failure reported by the underlying tool is an error;
	// there is no partial success.
	Compile(ctx context.Context, sourcePath string) (*domain.CompileResult, error)
}
