package entity

import (
	"log/slog"
	"sort"
	"strings"

	"git.home.luguber.info/inful/apiforge/internal/identifier"
	"git.home.luguber.info/inful/apiforge/internal/records"
)

// Inputs carries the five loaded record sets into a merge.
type Inputs struct {
	TypeListings  []records.TypeListing
	TypeDetails   []records.TypeDetail
	MemberDetails []records.MemberDetail
	EnumListings  []records.EnumListing
	Examples      []records.ExampleRecord
}

// MergeReport accumulates the anomalies encountered while merging. The merge
// never aborts on a single bad record; callers decide whether nonzero counts
// are a soft failure.
type MergeReport struct {
	OrphanTypeDetails int // type-details records with no matching seed
	OrphanMembers     int // member-details records whose owning type is unknown
	EnumKindConflicts int // enum members attached to a type not marked enum
	Collisions        map[string]int // collided identifier -> number of distinct members
}

// CollisionCount returns the number of collided identifiers.
func (r *MergeReport) CollisionCount() int { return len(r.Collisions) }

// Merge joins the loaded record sets into a unified per-type entity map.
//
// Seeding order follows the upstream precedence rules: the type listing is
// authoritative for which types exist and their member inventory; type details
// enrich seeds and orphans are skipped; member details enrich every listed
// member sharing the name (overloads share one details page upstream); enum
// phases are authoritative on enum-ness and win kind conflicts.
func Merge(in Inputs) (*Model, *MergeReport) {
	model := NewModel()
	report := &MergeReport{Collisions: make(map[string]int)}

	seedTypes(model, in.TypeListings)
	enrichTypeDetails(model, in.TypeDetails, report)
	attachMemberDetails(model, in.MemberDetails, report)
	attachEnumMembers(model, in.EnumListings, report)
	loadExamples(model, in.Examples)
	detectCollisions(model, report)

	return model, report
}

func seedTypes(model *Model, listings []records.TypeListing) {
	for _, listing := range listings {
		key := TypeKey{Namespace: listing.Namespace, Name: listing.Name}
		t, ok := model.Types[key]
		if !ok {
			t = &Type{
				Name:      listing.Name,
				Assembly:  listing.Assembly,
				Namespace: listing.Namespace,
			}
			model.Types[key] = t
		}
		for _, ref := range listing.Properties {
			t.Members = append(t.Members, &Member{Name: ref.Name, Kind: KindProperty, URL: ref.URL})
		}
		for _, ref := range listing.Methods {
			t.Members = append(t.Members, &Member{Name: ref.Name, Kind: KindMethod, URL: ref.URL})
		}
	}
}

func enrichTypeDetails(model *Model, details []records.TypeDetail, report *MergeReport) {
	for _, detail := range details {
		key := TypeKey{Namespace: detail.Namespace, Name: detail.Name}
		t, ok := model.Types[key]
		if !ok {
			report.OrphanTypeDetails++
			slog.Debug("type details without matching listing, skipped",
				slog.String("type", key.FullName()))
			continue
		}
		if detail.Description != "" {
			t.Description = detail.Description
		}
		if detail.Remarks != "" {
			t.Remarks = detail.Remarks
		}
		t.Examples = append(t.Examples, detail.Examples...)
	}
}

func attachMemberDetails(model *Model, details []records.MemberDetail, report *MergeReport) {
	for _, detail := range details {
		t, ok := model.Lookup(detail.Type)
		if !ok {
			report.OrphanMembers++
			slog.Debug("member details without matching type, skipped",
				slog.String("type", detail.Type), slog.String("member", detail.Name))
			continue
		}

		paramTypes := identifier.ParseSignatureParameters(detail.Signature)

		// A details page covers every listed member with this name; enrich all
		// of them so overloads at least share the common prose.
		enriched := false
		for _, m := range t.Members {
			if m.Name != detail.Name {
				continue
			}
			applyDetail(m, detail, paramTypes)
			enriched = true
		}
		if !enriched {
			// Listing phase missed this member. Kind is inferred from the
			// signature: a parameter list means method, otherwise property.
			kind := KindProperty
			if strings.Contains(detail.Signature, "(") {
				kind = KindMethod
			}
			m := &Member{Name: detail.Name, Kind: kind}
			applyDetail(m, detail, paramTypes)
			t.Members = append(t.Members, m)
		}
	}
}

func applyDetail(m *Member, detail records.MemberDetail, paramTypes []string) {
	if detail.Signature != "" {
		m.Signature = detail.Signature
	}
	if detail.Description != "" {
		m.Description = detail.Description
	}
	if detail.Returns != "" {
		m.Returns = detail.Returns
	}
	if detail.Remarks != "" {
		m.Remarks = detail.Remarks
	}
	if len(detail.Parameters) > 0 {
		m.Parameters = detail.Parameters
	}
	if len(paramTypes) > 0 {
		m.ParameterTypes = paramTypes
	}
}

func attachEnumMembers(model *Model, enums []records.EnumListing, report *MergeReport) {
	for _, listing := range enums {
		key := TypeKey{Namespace: listing.Namespace, Name: listing.Name}
		t, ok := model.Types[key]
		if !ok {
			// The enum phase carries full identity, so a missing seed is
			// recoverable: seed from the enum record itself.
			t = &Type{
				Name:      listing.Name,
				Assembly:  listing.Assembly,
				Namespace: listing.Namespace,
				IsEnum:    true,
			}
			model.Types[key] = t
		}
		if !t.IsEnum {
			// Upstream disagreement on enum-ness. The enum phase is presumed
			// authoritative: promote and flag.
			report.EnumKindConflicts++
			slog.Warn("enum members attached to a non-enum type, promoting to enum",
				slog.String("type", key.FullName()))
			t.IsEnum = true
			t.Members = nil
		}
		for _, m := range listing.Members {
			t.EnumMembers = append(t.EnumMembers, EnumMember{Name: m.Name, Description: m.Description})
		}
	}
}

func loadExamples(model *Model, examples []records.ExampleRecord) {
	for _, ex := range examples {
		normalized := NormalizeExampleURL(ex.URL)
		title := ""
		if lines := strings.SplitN(strings.TrimSpace(ex.Content), "\n", 2); len(lines) > 0 {
			title = strings.TrimSpace(lines[0])
		}
		model.Examples[normalized] = &Example{
			URL:     normalized,
			Title:   title,
			Content: ex.Content,
		}
	}
}

// detectCollisions counts how many distinct members of each type synthesize
// to the same identifier. Overloads without parameter metadata collapse onto
// the bare-name identifier; that collapse is a known identity loss and must
// be reported rather than silently resolved.
func detectCollisions(model *Model, report *MergeReport) {
	for _, t := range model.Types {
		counts := make(map[string]int)
		for _, m := range t.Members {
			counts[t.MemberID(m)]++
		}
		for id, n := range counts {
			if n > 1 {
				report.Collisions[id] = n
			}
		}
	}
}

// RenderMember pairs a member with its synthesized identifier for rendering.
type RenderMember struct {
	ID     string
	Member *Member
}

// DedupedMembers returns the members of a type keyed by identifier, sorted by
// identifier string, with colliding identifiers resolved last-wins. The
// deduplication policy mirrors the upstream generator: when overloads collapse
// onto one identifier, exactly one entry is emitted and the collision has
// already been counted by the merge.
func DedupedMembers(t *Type) []RenderMember {
	byID := make(map[string]*Member)
	for _, m := range t.Members {
		byID[t.MemberID(m)] = m
	}
	out := make([]RenderMember, 0, len(byID))
	for id, m := range byID {
		out = append(out, RenderMember{ID: id, Member: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
