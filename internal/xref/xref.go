// Package xref rewrites embedded documentation hyperlinks into the addressing
// scheme of the active output projection. Free-text fields carry anchor markup
// pointing at other vendor documentation pages; internal type/member targets
// become <see cref> (XMLDoc) or [[Type]] wiki links (markdown), guide pages
// become external links, and anything unresolvable degrades to plain text.
package xref

import (
	"net/url"
	"strings"
)

// Target is a classified internal reference extracted from an href.
type Target struct {
	TypeFullName string // Namespace.Type
	Member       string // optional member name
}

// Display returns the wiki-link body for the target: Type or Type.Member,
// using the bare type name.
func (t Target) Display() string {
	bare := t.TypeFullName
	if idx := strings.LastIndex(bare, "."); idx >= 0 {
		bare = bare[idx+1:]
	}
	if t.Member != "" {
		return bare + "." + t.Member
	}
	return bare
}

// CrefValue returns the cref attribute value: the fully qualified name with
// no kind marker, matching the synthesized identifier minus its prefix.
func (t Target) CrefValue() string {
	if t.Member != "" {
		return t.TypeFullName + "." + t.Member
	}
	return t.TypeFullName
}

// Resolver answers whether a classified target exists in the merged model.
type Resolver interface {
	HasType(typeFullName string) bool
	HasMember(typeFullName, memberName string) bool
}

// Counters accumulates rewrite outcomes for the validation report.
type Counters struct {
	Rewritten int // links substituted with a projection-specific form
	External  int // links rendered as external references
	Broken    int // links stripped to plain display text
}

// Rewriter rewrites anchor markup inside free-text documentation fields.
// One rewriter serves both projections; it is applied during rendering, not
// during merge, so each projection requests its own form of the same text.
type Rewriter struct {
	// BaseURL is the documentation site base used to absolutize relative
	// guide-page hrefs, e.g. "https://help.vendor.com/2026/english/api/ref/".
	BaseURL string

	Resolver Resolver
	Counters Counters
}

// ClassifyHref parses an href and extracts an internal type/member target.
// Internal references follow the filename convention
// Assembly~Namespace.Type[~Member].html; everything else is external.
func ClassifyHref(href string) (Target, bool) {
	filename := href
	if idx := strings.LastIndexAny(filename, "/\\"); idx >= 0 {
		filename = filename[idx+1:]
	}
	filename = strings.TrimSuffix(filename, ".html")
	filename = strings.TrimSuffix(filename, ".htm")

	if filename == "" {
		return Target{}, false
	}

	parts := strings.Split(filename, "~")
	switch {
	case len(parts) >= 2:
		// Assembly~Namespace.Type or Assembly~Namespace.Type~Member
		typeName := parts[1]
		if !strings.Contains(typeName, ".") {
			return Target{}, false
		}
		t := Target{TypeFullName: typeName}
		if len(parts) >= 3 {
			t.Member = parts[2]
		}
		return t, true
	case strings.Contains(parts[0], "."):
		// Bare Namespace.Type, but only when the href carries no path
		// segments that would make the dots part of a file path.
		if strings.ContainsAny(href, "/\\") || strings.Contains(href, "..") {
			return Target{}, false
		}
		return Target{TypeFullName: parts[0]}, true
	default:
		return Target{}, false
	}
}

// ExternalURL absolutizes a guide-page href against the configured base.
func (rw *Rewriter) ExternalURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	base, err := url.Parse(rw.BaseURL)
	if err != nil || rw.BaseURL == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func (rw *Rewriter) resolve(t Target) bool {
	if rw.Resolver == nil {
		return false
	}
	if t.Member != "" {
		return rw.Resolver.HasMember(t.TypeFullName, t.Member)
	}
	return rw.Resolver.HasType(t.TypeFullName)
}
