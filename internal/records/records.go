// Package records parses each extraction phase's XML output into typed
// in-memory record sets. Loading is pure deserialization: no cross-referencing
// happens here. Records missing a mandatory identity field are dropped and
// counted; only structurally malformed XML is an error.
package records

import (
	"encoding/xml"
	"os"
	"strings"

	"git.home.luguber.info/inful/apiforge/internal/errors"
)

// MemberRef is a property or method listed in the type inventory, identified
// by name and source page URL.
type MemberRef struct {
	Name string `xml:"Name"`
	URL  string `xml:"Url"`
}

// TypeListing is one record of the type-listing phase: which types exist and
// their member name/URL inventory.
type TypeListing struct {
	Name       string      `xml:"Name"`
	Assembly   string      `xml:"Assembly"`
	Namespace  string      `xml:"Namespace"`
	Properties []MemberRef `xml:"PublicProperties>Property"`
	Methods    []MemberRef `xml:"PublicMethods>Method"`
}

// ExampleRef is a reference from a type-details record to an example page.
type ExampleRef struct {
	Name     string `xml:"Name"`
	Language string `xml:"Language"`
	URL      string `xml:"Url"`
}

// TypeDetail enriches a listed type with prose and example references.
type TypeDetail struct {
	Name        string       `xml:"Name"`
	Assembly    string       `xml:"Assembly"`
	Namespace   string       `xml:"Namespace"`
	Description string       `xml:"Description"`
	Remarks     string       `xml:"Remarks"`
	Examples    []ExampleRef `xml:"Examples>Example"`
}

// ParameterDoc documents one parameter by name.
type ParameterDoc struct {
	Name        string `xml:"Name"`
	Description string `xml:"Description"`
}

// MemberDetail is one record of the member-details phase.
type MemberDetail struct {
	Assembly    string         `xml:"Assembly"`
	Type        string         `xml:"Type"` // fully qualified owning type name
	Name        string         `xml:"Name"`
	Signature   string         `xml:"Signature"`
	Description string         `xml:"Description"`
	Returns     string         `xml:"Returns"`
	Remarks     string         `xml:"Remarks"`
	Parameters  []ParameterDoc `xml:"Parameters>Parameter"`
}

// EnumMemberRecord is one value of an enumeration.
type EnumMemberRecord struct {
	Name        string `xml:"Name"`
	Description string `xml:"Description"`
}

// EnumListing is one enumeration with its members.
type EnumListing struct {
	Name      string             `xml:"Name"`
	Assembly  string             `xml:"Assembly"`
	Namespace string             `xml:"Namespace"`
	Members   []EnumMemberRecord `xml:"Members>Member"`
}

// ExampleRecord is the full content of one example page.
type ExampleRecord struct {
	URL     string `xml:"Url"`
	Content string `xml:"Content"`
}

// LoadStats reports how many records a loader kept and dropped.
type LoadStats struct {
	Loaded  int
	Dropped int
}

type typeListingFile struct {
	Types []TypeListing `xml:"Type"`
}

type typeDetailFile struct {
	Types []TypeDetail `xml:"Type"`
}

type memberDetailFile struct {
	Members []MemberDetail `xml:"Member"`
}

type enumListingFile struct {
	Enums []EnumListing `xml:"Enum"`
}

type exampleFile struct {
	Examples []ExampleRecord `xml:"Example"`
}

// LoadTypeListings loads and filters the type-listing phase output.
// Mandatory fields: Name, Assembly, Namespace.
func LoadTypeListings(path string) ([]TypeListing, LoadStats, error) {
	var file typeListingFile
	if err := decodeFile(path, &file); err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	out := make([]TypeListing, 0, len(file.Types))
	for _, t := range file.Types {
		t.Name = strings.TrimSpace(t.Name)
		t.Assembly = strings.TrimSpace(t.Assembly)
		t.Namespace = strings.TrimSpace(t.Namespace)
		if t.Name == "" || t.Assembly == "" || t.Namespace == "" {
			stats.Dropped++
			continue
		}
		t.Properties = cleanMemberRefs(t.Properties)
		t.Methods = cleanMemberRefs(t.Methods)
		out = append(out, t)
		stats.Loaded++
	}
	return out, stats, nil
}

// LoadTypeDetails loads the type-details phase output.
// Mandatory fields: Name, Namespace.
func LoadTypeDetails(path string) ([]TypeDetail, LoadStats, error) {
	var file typeDetailFile
	if err := decodeFile(path, &file); err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	out := make([]TypeDetail, 0, len(file.Types))
	for _, t := range file.Types {
		t.Name = strings.TrimSpace(t.Name)
		t.Assembly = strings.TrimSpace(t.Assembly)
		t.Namespace = strings.TrimSpace(t.Namespace)
		if t.Name == "" || t.Namespace == "" {
			stats.Dropped++
			continue
		}
		t.Description = CleanText(t.Description)
		t.Remarks = CleanText(t.Remarks)
		examples := t.Examples[:0]
		for _, ex := range t.Examples {
			ex.Name = strings.TrimSpace(ex.Name)
			ex.Language = strings.TrimSpace(ex.Language)
			ex.URL = strings.TrimSpace(ex.URL)
			if ex.Name == "" || ex.URL == "" {
				continue
			}
			if ex.Language == "" {
				ex.Language = "Unknown"
			}
			examples = append(examples, ex)
		}
		t.Examples = examples
		out = append(out, t)
		stats.Loaded++
	}
	return out, stats, nil
}

// LoadMemberDetails loads the member-details phase output.
// Mandatory fields: Type (fully qualified), Name.
func LoadMemberDetails(path string) ([]MemberDetail, LoadStats, error) {
	var file memberDetailFile
	if err := decodeFile(path, &file); err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	out := make([]MemberDetail, 0, len(file.Members))
	for _, m := range file.Members {
		m.Type = strings.TrimSpace(m.Type)
		m.Name = strings.TrimSpace(m.Name)
		if m.Type == "" || m.Name == "" || !strings.Contains(m.Type, ".") {
			stats.Dropped++
			continue
		}
		m.Signature = strings.TrimSpace(m.Signature)
		m.Description = CleanText(m.Description)
		m.Returns = CleanText(m.Returns)
		m.Remarks = CleanText(m.Remarks)
		params := m.Parameters[:0]
		for _, p := range m.Parameters {
			p.Name = strings.TrimSpace(p.Name)
			if p.Name == "" {
				continue
			}
			p.Description = CleanText(p.Description)
			params = append(params, p)
		}
		m.Parameters = params
		out = append(out, m)
		stats.Loaded++
	}
	return out, stats, nil
}

// LoadEnumListings loads the enum-members phase output.
// Mandatory fields: Name, Assembly, Namespace.
func LoadEnumListings(path string) ([]EnumListing, LoadStats, error) {
	var file enumListingFile
	if err := decodeFile(path, &file); err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	out := make([]EnumListing, 0, len(file.Enums))
	for _, e := range file.Enums {
		e.Name = strings.TrimSpace(e.Name)
		e.Assembly = strings.TrimSpace(e.Assembly)
		e.Namespace = strings.TrimSpace(e.Namespace)
		if e.Name == "" || e.Assembly == "" || e.Namespace == "" {
			stats.Dropped++
			continue
		}
		members := e.Members[:0]
		for _, m := range e.Members {
			m.Name = strings.TrimSpace(m.Name)
			if m.Name == "" {
				continue
			}
			m.Description = CleanText(m.Description)
			members = append(members, m)
		}
		e.Members = members
		out = append(out, e)
		stats.Loaded++
	}
	return out, stats, nil
}

// LoadExamples loads the example-content phase output.
// Mandatory field: Url.
func LoadExamples(path string) ([]ExampleRecord, LoadStats, error) {
	var file exampleFile
	if err := decodeFile(path, &file); err != nil {
		return nil, LoadStats{}, err
	}

	var stats LoadStats
	out := make([]ExampleRecord, 0, len(file.Examples))
	for _, ex := range file.Examples {
		ex.URL = strings.TrimSpace(ex.URL)
		if ex.URL == "" {
			stats.Dropped++
			continue
		}
		ex.Content = stripCDATAMarkers(ex.Content)
		out = append(out, ex)
		stats.Loaded++
	}
	return out, stats, nil
}

func cleanMemberRefs(refs []MemberRef) []MemberRef {
	out := refs[:0]
	for _, r := range refs {
		r.Name = strings.TrimSpace(r.Name)
		r.URL = strings.TrimSpace(r.URL)
		if r.Name == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CleanText trims a prose field and removes literal CDATA markers that the
// extraction phases occasionally leave embedded in element text.
func CleanText(s string) string {
	return strings.TrimSpace(stripCDATAMarkers(s))
}

func stripCDATAMarkers(s string) string {
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	s = strings.ReplaceAll(s, "]]>", "")
	return s
}

func decodeFile(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.InputNotFound(path, err)
	}
	defer func() {
		_ = f.Close() // read-only
	}()

	dec := xml.NewDecoder(f)
	if err := dec.Decode(v); err != nil {
		return errors.MalformedXML(path, err)
	}
	return nil
}
