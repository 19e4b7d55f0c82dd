// Package browse is an interactive terminal browser for a blueprint library.
package browse

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ndisidore/smithy/pkg/blueprint"
)

// Browser renders a library with bubbletea.
type Browser struct {
	Boring bool // use ASCII icons instead of emoji
	// Options are passed to the bubbletea program, mostly to redirect its
	// input and output.
	Options []tea.ProgramOption
}

// Run blocks until the user quits or ctx is done.
func (b *Browser) Run(ctx context.Context, lib *blueprint.Library) error {
	m := newModel(lib, b.Boring)
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, b.Options...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
