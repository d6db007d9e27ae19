// Package entity holds the merged per-type entity graph and the merger that
// builds it from the phase record sets. The merged model is built once per run
// and afterwards only read by the projection renderers.
package entity

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/apiforge/internal/identifier"
	"git.home.luguber.info/inful/apiforge/internal/records"
)

// MemberKind distinguishes the member identifier namespaces.
type MemberKind string

const (
	KindProperty MemberKind = "property"
	KindMethod   MemberKind = "method"
)

// TypeKey uniquely identifies a type across all merge inputs.
type TypeKey struct {
	Namespace string
	Name      string
}

// FullName returns the fully qualified type name.
func (k TypeKey) FullName() string { return k.Namespace + "." + k.Name }

// Member is a property or method owned by a Type.
type Member struct {
	Name      string
	Kind      MemberKind
	URL       string
	Signature string

	Description string
	Returns     string
	Remarks     string
	Parameters  []records.ParameterDoc

	// ParameterTypes holds encoded parameter types parsed from the signature.
	// Empty when the source exposes no parameter metadata; the identifier then
	// degrades to the bare-name form.
	ParameterTypes []string
}

// EnumMember is one value of an enumeration type.
type EnumMember struct {
	Name        string
	Description string
}

// Example is the full content of one example page, keyed by normalized URL.
type Example struct {
	URL      string
	Title    string
	Language string
	Content  string
}

// Type is the merged entity for one type: its prose, members, enum values,
// and example references.
type Type struct {
	Name      string
	Assembly  string
	Namespace string

	Description string
	Remarks     string
	Category    string
	IsEnum      bool

	Members     []*Member
	EnumMembers []EnumMember
	Examples    []records.ExampleRef
}

// Key returns the TypeKey for this type.
func (t *Type) Key() TypeKey { return TypeKey{Namespace: t.Namespace, Name: t.Name} }

// FullName returns the fully qualified type name.
func (t *Type) FullName() string { return t.Namespace + "." + t.Name }

// MemberID synthesizes the canonical identifier for a member of this type.
func (t *Type) MemberID(m *Member) string {
	switch m.Kind {
	case KindProperty:
		return identifier.PropertyID(t.Namespace, t.Name, m.Name, m.ParameterTypes)
	default:
		return identifier.MethodID(t.Namespace, t.Name, m.Name, m.ParameterTypes)
	}
}

// Model is the merged, immutable entity graph shared by both projections.
type Model struct {
	Types    map[TypeKey]*Type
	Examples map[string]*Example // keyed by normalized relative URL
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Types:    make(map[TypeKey]*Type),
		Examples: make(map[string]*Example),
	}
}

// Lookup resolves a fully qualified type name to its merged entity.
func (m *Model) Lookup(fullName string) (*Type, bool) {
	idx := strings.LastIndex(fullName, ".")
	if idx <= 0 {
		return nil, false
	}
	t, ok := m.Types[TypeKey{Namespace: fullName[:idx], Name: fullName[idx+1:]}]
	return t, ok
}

// HasMember reports whether the named type owns a member or enum value with
// the given name. Used by the cross-reference rewriter to validate targets.
func (m *Model) HasMember(typeFullName, memberName string) bool {
	t, ok := m.Lookup(typeFullName)
	if !ok {
		return false
	}
	for _, mem := range t.Members {
		if mem.Name == memberName {
			return true
		}
	}
	for _, em := range t.EnumMembers {
		if em.Name == memberName {
			return true
		}
	}
	return false
}

// ByAssembly groups all types by assembly, each group sorted by type name.
func (m *Model) ByAssembly() map[string][]*Type {
	groups := make(map[string][]*Type)
	for _, t := range m.Types {
		groups[t.Assembly] = append(groups[t.Assembly], t)
	}
	for _, types := range groups {
		sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	}
	return groups
}

// ByCategory groups all types by functional category, each group sorted by
// type name. Types without a category land under the empty key; callers
// decide the fallback label.
func (m *Model) ByCategory() map[string][]*Type {
	groups := make(map[string][]*Type)
	for _, t := range m.Types {
		groups[t.Category] = append(groups[t.Category], t)
	}
	for _, types := range groups {
		sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	}
	return groups
}

// ExampleContent resolves an example reference URL to loaded content.
// Exact match on the normalized relative path first, then a suffix match in
// either direction (the crawl and extract phases disagree about leading path
// segments for a small share of pages).
func (m *Model) ExampleContent(url string) *Example {
	normalized := NormalizeExampleURL(url)
	if ex, ok := m.Examples[normalized]; ok {
		return ex
	}
	// Suffix matching must pick the same candidate on every run; take the
	// lexicographically smallest matching key.
	best := ""
	for key := range m.Examples {
		if !strings.HasSuffix(key, normalized) && !strings.HasSuffix(normalized, key) {
			continue
		}
		if best == "" || key < best {
			best = key
		}
	}
	if best != "" {
		return m.Examples[best]
	}
	return nil
}

// NormalizeExampleURL strips the leading slash so phase outputs that disagree
// about absolute vs relative form still join.
func NormalizeExampleURL(url string) string {
	return strings.TrimPrefix(strings.TrimSpace(url), "/")
}
