// Package report summarizes how the blueprints of a library resolve.
package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/opencontainers/go-digest"

	"github.com/ndisidore/smithy/pkg/blueprint"
)

// Entry summarizes one resolved blueprint.
type Entry struct {
	Name   string
	Parent string
	// Own counts components declared by the blueprint itself, Inherited the
	// ones that came from its ancestors.
	Own       int
	Inherited int
	// Overridden counts own components that replaced an ancestor's.
	Overridden int
	Digest     digest.Digest
	Err        error
}

// Components returns the number of resolved components.
func (e Entry) Components() int { return e.Own + e.Inherited }

// Report holds one entry per blueprint, sorted by name.
type Report struct {
	Entries []Entry
}

// Failed returns the number of blueprints that did not resolve.
func (r Report) Failed() int {
	var n int
	for i := range r.Entries {
		if r.Entries[i].Err != nil {
			n++
		}
	}
	return n
}

// Err joins the resolution errors of every failed blueprint.
func (r Report) Err() error {
	var errs []error
	for i := range r.Entries {
		if r.Entries[i].Err != nil {
			errs = append(errs, r.Entries[i].Err)
		}
	}
	return errors.Join(errs...)
}

// Summarize resolves every blueprint in lib.
func Summarize(lib *blueprint.Library) Report {
	names := lib.Names()
	r := Report{Entries: make([]Entry, 0, len(names))}
	for _, name := range names {
		r.Entries = append(r.Entries, summarize(lib, name))
	}
	return r
}

func summarize(lib *blueprint.Library, name string) Entry {
	e := Entry{Name: name}
	if raw, ok := lib.Get(name); ok {
		e.Parent = raw.Inherit
	}

	bp, err := lib.Lookup(name)
	if err != nil {
		e.Err = err
		return e
	}
	if e.Digest, err = bp.Digest(); err != nil {
		e.Err = err
		return e
	}

	inherited := make(map[string]struct{})
	if e.Parent != "" {
		// The parent resolved as part of bp, so this lookup cannot fail.
		if parent, err := lib.Lookup(e.Parent); err == nil {
			for _, n := range parent.Components {
				inherited[n.Name] = struct{}{}
			}
		}
	}
	for i, n := range bp.Components {
		if bp.Origins[i] != name {
			e.Inherited++
			continue
		}
		e.Own++
		if _, ok := inherited[n.Name]; ok {
			e.Overridden++
		}
	}
	return e
}

var (
	_titleStyle = lipgloss.NewStyle().Bold(true)
	_failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	_dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dim
)

// PrintReport writes a human-readable summary of r to w.
func PrintReport(w io.Writer, r Report) {
	title := fmt.Sprintf("Blueprints: %d", len(r.Entries))
	if failed := r.Failed(); failed > 0 {
		title += fmt.Sprintf(" (%d failed)", failed)
	}
	_, _ = fmt.Fprintln(w, _titleStyle.Render(title))

	for i := range r.Entries {
		e := &r.Entries[i]
		if e.Err != nil {
			_, _ = fmt.Fprintf(w, "  %-16s %s\n", e.Name, _failStyle.Render("error: "+e.Err.Error()))
			continue
		}
		detail := fmt.Sprintf("%d own", e.Own)
		if e.Parent != "" {
			detail += fmt.Sprintf(", %d inherited from %s", e.Inherited, e.Parent)
		}
		if e.Overridden > 0 {
			detail += fmt.Sprintf(", %d overridden", e.Overridden)
		}
		_, _ = fmt.Fprintf(w, "  %-16s %d components (%s)  %s\n",
			e.Name, e.Components(), detail, _dimStyle.Render(ShortDigest(e.Digest)))
	}
}

// ShortDigest abbreviates d to its algorithm and first twelve hex digits.
func ShortDigest(d digest.Digest) string {
	if d.Validate() != nil {
		return string(d)
	}
	enc := d.Encoded()
	if len(enc) > 12 {
		enc = enc[:12]
	}
	return d.Algorithm().String() + ":" + enc
}
