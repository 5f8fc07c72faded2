// Package dict implements the process-wide definition table: named
// terms, interned once, looked up by the reduction machine whenever it
// encounters a free variable.
package dict

import (
	"fmt"
	"strings"

	"github.com/sasha-s/go-deadlock"

	"nrm/internal/compiler"
	"nrm/internal/errors"
	"nrm/internal/grammar"
	"nrm/internal/symbol"
	"nrm/internal/term"
)

// Value is one dictionary entry: the definition's source text plus its
// parsed and compiled forms. Related and Linked are carried but unused,
// exactly as the original declares them — reserved for a future
// link-time substitution pass.
type Value struct {
	Text     string
	Parsed   term.Ref
	Compiled term.Ref
	Linked   term.Ref // nil when absent
	Related  []symbol.Symb
}

func newValue(text string) (*Value, *errors.Diagnostic) {
	parsed, err := grammar.ParseTerm(":define", text)
	if err != nil {
		return nil, err
	}
	compiled := compiler.Optimize(compiler.CompileSKI(parsed))
	return &Value{Text: text, Parsed: parsed, Compiled: compiled}, nil
}

// Dict is the global definition table. The zero value is not usable;
// construct with New.
type Dict struct {
	mu      deadlock.Mutex
	entries map[symbol.Symb]*Value
}

func New() *Dict {
	return &Dict{entries: make(map[symbol.Symb]*Value)}
}

// Lookup satisfies internal/machine's Dictionary interface: the linked
// term if present, else the compiled term.
func (d *Dict) Lookup(s symbol.Symb) (term.Ref, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.entries[s]
	if !ok {
		return nil, false
	}
	if v.Linked != nil {
		return v.Linked, true
	}
	return v.Compiled, true
}

// Define adds a new entry; it refuses to overwrite an existing one (use
// Update for that).
func (d *Dict) Define(s symbol.Symb, text string) *errors.Diagnostic {
	d.mu.Lock()
	if _, exists := d.entries[s]; exists {
		d.mu.Unlock()
		diag := errors.ParseError(errors.Position{}, fmt.Sprintf("%s is already defined", symbol.Name(s)))
		return &diag
	}
	d.mu.Unlock()

	v, err := newValue(text)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.entries[s] = v
	d.mu.Unlock()
	return nil
}

// Update replaces an existing entry's definition; it refuses to create a
// new one.
func (d *Dict) Update(s symbol.Symb, text string) *errors.Diagnostic {
	d.mu.Lock()
	_, exists := d.entries[s]
	d.mu.Unlock()
	if !exists {
		diag := errors.ParseError(errors.Position{}, fmt.Sprintf("%s is not defined", symbol.Name(s)))
		return &diag
	}

	v, err := newValue(text)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.entries[s] = v
	d.mu.Unlock()
	return nil
}

// Delete removes an entry, reporting whether one existed.
func (d *Dict) Delete(s symbol.Symb) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.entries[s]; !exists {
		return false
	}
	delete(d.entries, s)
	return true
}

// Show renders every entry as "name := text", one per line, in the
// style of the original's show_dict debug dump.
func (d *Dict) Show() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sb strings.Builder
	for s, v := range d.entries {
		fmt.Fprintf(&sb, "%s := %s\n", symbol.Name(s), v.Text)
	}
	return sb.String()
}

// Copy relocates every entry's Parsed/Compiled/Linked terms onto fresh
// pages. Called by the collector with every worker stopped, so no
// additional synchronization on the term graph itself is required —
// only the map access needs the lock.
func (d *Dict) Copy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range d.entries {
		v.Parsed = term.Copy(v.Parsed)
		v.Compiled = term.Copy(v.Compiled)
		if v.Linked != nil {
			v.Linked = term.Copy(v.Linked)
		}
	}
}
