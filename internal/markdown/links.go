// Package markdown provides link extraction over rendered markdown bodies.
// The validator uses it to confirm that index files only point at artifacts
// that exist on disk.
package markdown

import (
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Link is one link-like construct found in a markdown body.
type Link struct {
	Destination string
	Title       string
}

// ExtractLinks parses a markdown body (frontmatter already removed) and
// returns every inline link, auto link, and image destination in document
// order.
func ExtractLinks(body []byte) []Link {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var links []Link
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Destination: string(node.Destination), Title: string(node.Title)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}
