// Package toolset assembles the registry of implemented tools.
package toolset

import (
	"github.com/edify-labs/edify/internal/tools"
	"github.com/edify-labs/edify/internal/tools/clarify"
	"github.com/edify-labs/edify/internal/tools/lessonplan"
	"github.com/edify-labs/edify/internal/tools/peel"
	"github.com/edify-labs/edify/internal/tools/prompts"
	"github.com/edify-labs/edify/internal/tools/rubric"
)

// Default returns every implemented tool in catalog order.
func Default() *tools.Registry {
	return tools.NewRegistry(
		lessonplan.New(),
		rubric.New(),
		peel.New(),
		prompts.New(),
		clarify.New(),
	)
}
