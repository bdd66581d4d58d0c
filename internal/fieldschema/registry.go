package fieldschema

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ValueType describes how a field's numbers should be read.
type ValueType string

const (
	ValueTypeMonetary   ValueType = "monetary"
	ValueTypePercentage ValueType = "percentage"
	ValueTypeDays       ValueType = "days"
)

// Group places a field in the driver/override taxonomy.
type Group string

const (
	GroupDriverRequired     Group = "driver_required"
	GroupDriverOptional     Group = "driver_optional"
	GroupOverrideProfitLoss Group = "override_pl"
	GroupOverrideBalance    Group = "override_bs"
	GroupOverrideCashFlow   Group = "override_cf"
)

// DriverGroups lists the groups read from a drivers sheet.
var DriverGroups = []Group{GroupDriverRequired, GroupDriverOptional}

// OverrideGroups lists override groups in merge order.
var OverrideGroups = []Group{GroupOverrideProfitLoss, GroupOverrideBalance, GroupOverrideCashFlow}

// FieldDefinition describes one recognized financial input.
type FieldDefinition struct {
	Key             string    `json:"key"`
	Label           string    `json:"label"`
	ValueType       ValueType `json:"valueType"`
	Group           Group     `json:"group"`
	FirstPeriodOnly bool      `json:"firstPeriodOnly"`
	Required        bool      `json:"required"`
	IsOverride      bool      `json:"isOverride"`
}

// IsDriver reports whether the field belongs to a driver group.
func (f FieldDefinition) IsDriver() bool {
	return f.Group == GroupDriverRequired || f.Group == GroupDriverOptional
}

// Registry is an immutable catalog of field definitions. It is safe for
// concurrent use because nothing mutates it after construction.
type Registry struct {
	fields  []FieldDefinition
	byKey   map[string]int
	byAlias map[string]int
}

// NewRegistry validates the definitions and indexes them by key and label.
func NewRegistry(defs []FieldDefinition) (*Registry, error) {
	if err := ValidateDefinitions(defs); err != nil {
		return nil, err
	}

	r := &Registry{
		fields:  make([]FieldDefinition, len(defs)),
		byKey:   make(map[string]int, len(defs)),
		byAlias: make(map[string]int, len(defs)*2),
	}
	copy(r.fields, defs)

	for idx, def := range r.fields {
		r.byKey[def.Key] = idx
	}
	for idx, def := range r.fields {
		for _, alias := range []string{def.Key, def.Label} {
			folded := Fold(alias)
			if folded == "" {
				continue
			}
			if _, taken := r.byAlias[folded]; !taken {
				r.byAlias[folded] = idx
			}
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry for static catalogs.
func MustRegistry(defs []FieldDefinition) *Registry {
	r, err := NewRegistry(defs)
	if err != nil {
		panic(fmt.Sprintf("fieldschema: %v", err))
	}
	return r
}

// Lookup returns the definition stored under key.
func (r *Registry) Lookup(key string) (FieldDefinition, bool) {
	idx, ok := r.byKey[key]
	if !ok {
		return FieldDefinition{}, false
	}
	return r.fields[idx], true
}

// Resolve maps free cell text to a definition. Exact keys win, then the
// case and accent insensitive form of either the key or the label.
func (r *Registry) Resolve(text string) (FieldDefinition, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return FieldDefinition{}, false
	}
	if def, ok := r.Lookup(text); ok {
		return def, true
	}
	idx, ok := r.byAlias[Fold(text)]
	if !ok {
		return FieldDefinition{}, false
	}
	return r.fields[idx], true
}

// Fields returns every definition in catalog order.
func (r *Registry) Fields() []FieldDefinition {
	out := make([]FieldDefinition, len(r.fields))
	copy(out, r.fields)
	return out
}

// Keys returns every key in catalog order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, def := range r.fields {
		keys[i] = def.Key
	}
	return keys
}

// KeysInGroups returns the keys belonging to any of the given groups, in
// catalog order.
func (r *Registry) KeysInGroups(groups ...Group) []string {
	wanted := make(map[Group]struct{}, len(groups))
	for _, g := range groups {
		wanted[g] = struct{}{}
	}
	var keys []string
	for _, def := range r.fields {
		if _, ok := wanted[def.Group]; ok {
			keys = append(keys, def.Key)
		}
	}
	return keys
}

// FieldsInGroups is KeysInGroups returning full definitions.
func (r *Registry) FieldsInGroups(groups ...Group) []FieldDefinition {
	keys := r.KeysInGroups(groups...)
	out := make([]FieldDefinition, 0, len(keys))
	for _, key := range keys {
		def, _ := r.Lookup(key)
		out = append(out, def)
	}
	return out
}

// Len returns the number of definitions.
func (r *Registry) Len() int {
	return len(r.fields)
}

// Groups returns the distinct groups present, sorted.
func (r *Registry) Groups() []Group {
	seen := make(map[Group]struct{})
	for _, def := range r.fields {
		seen[def.Group] = struct{}{}
	}
	out := make([]Group, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fold lowercases text, strips accents and collapses separators so that
// "Receita Líquida", "receita liquida" and "RECEITA_LIQUIDA" compare equal.
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	stripped = strings.ToLower(strings.TrimSpace(stripped))

	var b strings.Builder
	lastSpace := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
