package schema

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Collision records a tag declared under more than one column.
type Collision struct {
	Tag     string
	Columns []string
}

func (c Collision) String() string {
	return fmt.Sprintf("tag %q bound to columns %s", c.Tag, strings.Join(c.Columns, ", "))
}

// CollisionError is returned by Build in strict mode when the column
// table binds a tag to conflicting columns.
type CollisionError struct {
	Collisions []Collision
}

func (e *CollisionError) Error() string {
	parts := make([]string, len(e.Collisions))
	for i, c := range e.Collisions {
		parts[i] = c.String()
	}
	return "column schema has conflicting tag bindings: " + strings.Join(parts, "; ")
}

// Options configure a registry build.
type Options struct {
	// Strict aborts the build on a tag collision instead of keeping
	// both bindings.
	Strict bool
	// BaseGroup and VATGroup name the numeric columns summed into
	// total_base and total_vat. Defaults apply when empty.
	BaseGroup []string
	VATGroup  []string
	Log       zerolog.Logger
}

// Registry is the immutable tag index over a column table. One
// registry is built per report run; Resolve is a pure lookup.
type Registry struct {
	columns    []Column
	byKey      map[string]Column
	byTag      map[string][]string
	collisions []Collision
	baseGroup  []string
	vatGroup   []string
	baseSet    map[string]bool
	vatSet     map[string]bool
}

// Build constructs a Registry from a column table, indexing every tag
// to the columns that declare it. A tag appearing under two columns
// keeps both bindings; strict mode turns that into a *CollisionError.
func Build(cols []Column, opts Options) (*Registry, error) {
	if len(opts.BaseGroup) == 0 {
		opts.BaseGroup = DefaultBaseGroup()
	}
	if len(opts.VATGroup) == 0 {
		opts.VATGroup = DefaultVATGroup()
	}

	r := &Registry{
		columns: cols,
		byKey:   make(map[string]Column, len(cols)),
		byTag:   make(map[string][]string),
	}

	for _, col := range cols {
		if _, dup := r.byKey[col.Key]; dup {
			return nil, fmt.Errorf("duplicate column key %q", col.Key)
		}
		r.byKey[col.Key] = col
		for _, tag := range col.Tags {
			r.byTag[tag] = append(r.byTag[tag], col.Key)
		}
	}

	for tag, keys := range r.byTag {
		if len(keys) > 1 {
			r.collisions = append(r.collisions, Collision{Tag: tag, Columns: keys})
		}
	}
	if len(r.collisions) > 0 {
		if opts.Strict {
			return nil, &CollisionError{Collisions: r.collisions}
		}
		for _, c := range r.collisions {
			opts.Log.Warn().
				Str("tag", c.Tag).
				Strs("columns", c.Columns).
				Msg("column schema binds tag to multiple columns; amounts will fan out to each")
		}
	}

	r.baseGroup, r.vatGroup = opts.BaseGroup, opts.VATGroup
	r.baseSet = keySet(r.baseGroup)
	r.vatSet = keySet(r.vatGroup)
	for _, key := range append(append([]string{}, r.baseGroup...), r.vatGroup...) {
		col, ok := r.byKey[key]
		if !ok {
			return nil, fmt.Errorf("group references undeclared column %q", key)
		}
		if col.Kind != KindNumeric {
			return nil, fmt.Errorf("group column %q is not numeric", key)
		}
	}

	return r, nil
}

func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// NewDefault builds the default journal column table.
func NewDefault(strict bool, log zerolog.Logger) (*Registry, error) {
	return Build(DefaultColumns(), Options{Strict: strict, Log: log})
}

// Resolve returns the column keys a tag routes to, nil for unknown
// tags. The returned slice must not be mutated.
func (r *Registry) Resolve(tag string) []string {
	return r.byTag[tag]
}

// Columns returns the column table in declaration order.
func (r *Registry) Columns() []Column {
	return r.columns
}

// NumericKeys returns the numeric column keys in declaration order.
func (r *Registry) NumericKeys() []string {
	keys := make([]string, 0, len(r.columns))
	for _, col := range r.columns {
		if col.Kind == KindNumeric {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

// BlankAmounts returns a fresh zero-valued bucket map covering every
// numeric column. Each call allocates a new map so rows never share
// state.
func (r *Registry) BlankAmounts() map[string]decimal.Decimal {
	amounts := make(map[string]decimal.Decimal, len(r.columns))
	for _, col := range r.columns {
		if col.Kind == KindNumeric {
			amounts[col.Key] = decimal.Zero
		}
	}
	return amounts
}

// BaseGroup returns the columns summed into total_base.
func (r *Registry) BaseGroup() []string { return r.baseGroup }

// VATGroup returns the columns summed into total_vat.
func (r *Registry) VATGroup() []string { return r.vatGroup }

// IsBase reports whether a column is a total_base member.
func (r *Registry) IsBase(key string) bool { return r.baseSet[key] }

// IsVAT reports whether a column is a total_vat member.
func (r *Registry) IsVAT(key string) bool { return r.vatSet[key] }

// Collisions returns the tag collisions found at build time.
func (r *Registry) Collisions() []Collision { return r.collisions }
