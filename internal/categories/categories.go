// Package categories loads the functional-category side-table that assigns a
// coarse grouping label to types of the primary assembly. The source is a
// vendor HTML page where each h4 heading names a category and the following
// list links to the type pages belonging to it. A YAML override file can
// add or replace assignments after parsing.
package categories

import (
	"os"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/apiforge/internal/errors"
)

const Uncategorized = "Uncategorized"

// Category is one named grouping with the fully qualified type names it holds.
type Category struct {
	Name  string
	Types []string
}

// Mapping resolves type names to functional categories. Lookup is
// case-insensitive because the vendor pages are inconsistent about casing.
type Mapping struct {
	categories []Category
	byType     map[string]string // lowercased FQN -> category name
}

// ParseHTML extracts categories from a functional-categories HTML page.
func ParseHTML(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.InputNotFound(path, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, errors.MalformedInput(path, err)
	}

	m := &Mapping{byType: make(map[string]string)}
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "h4" {
			return
		}
		if !hasNamedAnchor(n) {
			return
		}
		name := strings.TrimSpace(textContent(n))
		if name == "" {
			return
		}
		ul := nextSiblingElement(n, "ul")
		if ul == nil {
			return
		}
		types := typeNamesFromList(ul)
		if len(types) == 0 {
			return
		}
		m.add(Category{Name: name, Types: types})
	})
	return m, nil
}

// overridesFile is the YAML shape of a category override file: a map of
// category name to type name list.
type overridesFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// ApplyOverridesFile merges a YAML override file into the mapping. Overridden
// types move to the new category; new categories are appended.
func (m *Mapping) ApplyOverridesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.InputNotFound(path, err)
	}
	var of overridesFile
	if err := yaml.Unmarshal(data, &of); err != nil {
		return errors.MalformedInput(path, err)
	}
	names := make([]string, 0, len(of.Categories))
	for name := range of.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		m.add(Category{Name: name, Types: of.Categories[name]})
	}
	return nil
}

// Lookup returns the category for a fully qualified type name, falling back
// to Uncategorized.
func (m *Mapping) Lookup(typeFullName string) string {
	if m == nil {
		return Uncategorized
	}
	if cat, ok := m.byType[strings.ToLower(typeFullName)]; ok {
		return cat
	}
	return Uncategorized
}

// Has reports whether the type has an explicit category assignment.
func (m *Mapping) Has(typeFullName string) bool {
	if m == nil {
		return false
	}
	_, ok := m.byType[strings.ToLower(typeFullName)]
	return ok
}

// Categories returns the parsed categories in document order.
func (m *Mapping) Categories() []Category {
	if m == nil {
		return nil
	}
	return m.categories
}

// Len reports the number of type assignments.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.byType)
}

func (m *Mapping) add(c Category) {
	found := false
	for i := range m.categories {
		if m.categories[i].Name == c.Name {
			m.categories[i].Types = append(m.categories[i].Types, c.Types...)
			found = true
			break
		}
	}
	if !found {
		m.categories = append(m.categories, c)
	}
	for _, t := range c.Types {
		m.byType[strings.ToLower(t)] = c.Name
	}
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func hasNamedAnchor(h4 *html.Node) bool {
	ok := false
	walk(h4, func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && attr(n, "name") != "" {
			ok = true
		}
	})
	return ok
}

func nextSiblingElement(n *html.Node, tag string) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			if s.Data == tag {
				return s
			}
			return nil
		}
	}
	return nil
}

// typeNamesFromList extracts fully qualified type names from every link in
// the list, including nested sub-lists. Link filenames follow the
// Assembly~Namespace.Type.html convention.
func typeNamesFromList(ul *html.Node) []string {
	var types []string
	walk(ul, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		href := attr(n, "href")
		if href == "" {
			return
		}
		if fqn := typeNameFromHref(href); fqn != "" {
			types = append(types, fqn)
		}
	})
	return types
}

func typeNameFromHref(href string) string {
	filename := href
	if idx := strings.LastIndex(filename, "/"); idx >= 0 {
		filename = filename[idx+1:]
	}
	filename = strings.TrimSuffix(filename, ".html")
	parts := strings.Split(filename, "~")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
