// Package greptree renders the merged entity model into a grep-friendly
// markdown tree: one directory per type holding an overview file and one file
// per member, plus index files. Every file opens with a YAML frontmatter
// header so both humans and line-oriented tooling can filter on metadata
// without parsing markdown.
package greptree

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/apiforge/internal/entity"
	"git.home.luguber.info/inful/apiforge/internal/errors"
	"git.home.luguber.info/inful/apiforge/internal/frontmatter"
	"git.home.luguber.info/inful/apiforge/internal/logfields"
	"git.home.luguber.info/inful/apiforge/internal/xref"
)

// Renderer writes the markdown tree under OutDir.
type Renderer struct {
	OutDir   string
	Rewriter *xref.Rewriter
	Logger   *slog.Logger
}

// Result reports what the projection produced.
type Result struct {
	Files       []string
	TypeDirs    int
	MemberFiles int
	IndexFiles  int
}

type typeHeader struct {
	Name            string `yaml:"name"`
	Assembly        string `yaml:"assembly"`
	Namespace       string `yaml:"namespace"`
	Category        string `yaml:"category,omitempty"`
	IsEnum          bool   `yaml:"is_enum"`
	PropertyCount   int    `yaml:"property_count"`
	MethodCount     int    `yaml:"method_count"`
	EnumMemberCount int    `yaml:"enum_member_count"`
}

type memberHeader struct {
	Type      string `yaml:"type"`
	Member    string `yaml:"member"`
	Kind      string `yaml:"kind"`
	Assembly  string `yaml:"assembly"`
	Namespace string `yaml:"namespace"`
	Category  string `yaml:"category,omitempty"`
}

// Render writes every type directory and the three index files. A failure
// aborts only the type in question.
func (r *Renderer) Render(m *entity.Model) (*Result, error) {
	res := &Result{}

	types := sortedTypes(m)
	var firstErr error
	for _, t := range types {
		if err := r.renderType(t, m, res); err != nil {
			r.Logger.Error("type render failed",
				logfields.TypeName(t.FullName()), logfields.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	for name, content := range map[string]string{
		"by_category.md": r.byCategoryIndex(types),
		"by_assembly.md": byAssemblyIndex(types),
		"statistics.md":  statisticsIndex(types),
	} {
		path := filepath.Join(r.OutDir, "api", "index", name)
		if err := writeFile(path, []byte(content)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		res.Files = append(res.Files, path)
		res.IndexFiles++
	}
	sort.Strings(res.Files)
	return res, firstErr
}

func (r *Renderer) renderType(t *entity.Type, m *entity.Model, res *Result) error {
	dir := filepath.Join(r.OutDir, "api", typeBucket(t), SanitizeFilename(t.Name))

	overview, err := r.typeOverview(t, m)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "_overview.md")
	if err := writeFile(path, overview); err != nil {
		return err
	}
	res.Files = append(res.Files, path)
	res.TypeDirs++

	// Distinct member names can sanitize to the same filename. The first
	// writer wins; later collisions are logged and skipped so a file is never
	// silently overwritten.
	seen := map[string]bool{"_overview.md": true}
	writeMemberFile := func(name string, doc []byte) error {
		filename := SanitizeFilename(name) + ".md"
		if seen[filename] {
			r.Logger.Warn("member filename collision, keeping first",
				logfields.TypeName(t.FullName()),
				logfields.Path(filename))
			return nil
		}
		seen[filename] = true
		path := filepath.Join(dir, filename)
		if err := writeFile(path, doc); err != nil {
			return err
		}
		res.Files = append(res.Files, path)
		res.MemberFiles++
		return nil
	}

	for _, rm := range entity.DedupedMembers(t) {
		doc, err := r.memberDoc(t, rm.Member)
		if err != nil {
			return err
		}
		if err := writeMemberFile(rm.Member.Name, doc); err != nil {
			return err
		}
	}

	for _, em := range sortedEnumMembers(t) {
		doc, err := r.enumMemberDoc(t, em)
		if err != nil {
			return err
		}
		if err := writeMemberFile(em.Name, doc); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) typeOverview(t *entity.Type, m *entity.Model) ([]byte, error) {
	props, methods := memberCounts(t)

	var md strings.Builder
	fmt.Fprintf(&md, "# %s\n\n", t.Name)
	fmt.Fprintf(&md, "**Assembly**: %s  \n", t.Assembly)
	fmt.Fprintf(&md, "**Namespace**: %s\n\n", t.Namespace)
	if t.Category != "" {
		fmt.Fprintf(&md, "**Category**: %s\n\n", t.Category)
	}

	if t.Description != "" {
		md.WriteString("## Description\n\n")
		md.WriteString(r.rewrite(t.Description))
		md.WriteString("\n\n")
	}
	if t.Remarks != "" {
		md.WriteString("## Remarks\n\n")
		md.WriteString(r.rewrite(t.Remarks))
		md.WriteString("\n\n")
	}

	md.WriteString("## Members\n\n")
	if t.IsEnum {
		fmt.Fprintf(&md, "- **Enumeration Members**: %d\n", len(t.EnumMembers))
	} else {
		fmt.Fprintf(&md, "- **Properties**: %d\n", props)
		fmt.Fprintf(&md, "- **Methods**: %d\n", methods)
	}
	md.WriteString("\n")

	r.writeExamples(&md, t, m)

	return frontmatter.Compose(typeHeader{
		Name:            t.Name,
		Assembly:        t.Assembly,
		Namespace:       t.Namespace,
		Category:        t.Category,
		IsEnum:          t.IsEnum,
		PropertyCount:   props,
		MethodCount:     methods,
		EnumMemberCount: len(t.EnumMembers),
	}, md.String())
}

func (r *Renderer) memberDoc(t *entity.Type, m *entity.Member) ([]byte, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s.%s\n\n", t.Name, m.Name)

	if m.Description != "" {
		md.WriteString(r.rewrite(m.Description))
		md.WriteString("\n\n")
	}
	if m.Signature != "" {
		fmt.Fprintf(&md, "**Signature**: `%s`\n\n", m.Signature)
	}
	if len(m.Parameters) > 0 {
		md.WriteString("## Parameters\n\n")
		for _, p := range m.Parameters {
			desc := "No description"
			if p.Description != "" {
				desc = r.rewrite(p.Description)
			}
			fmt.Fprintf(&md, "- **%s**: %s\n", p.Name, desc)
		}
		md.WriteString("\n")
	}
	if m.Returns != "" {
		md.WriteString("## Returns\n\n")
		md.WriteString(r.rewrite(m.Returns))
		md.WriteString("\n\n")
	}
	if m.Remarks != "" {
		md.WriteString("## Remarks\n\n")
		md.WriteString(r.rewrite(m.Remarks))
		md.WriteString("\n")
	}

	return frontmatter.Compose(memberHeader{
		Type:      t.Name,
		Member:    m.Name,
		Kind:      string(m.Kind),
		Assembly:  t.Assembly,
		Namespace: t.Namespace,
		Category:  t.Category,
	}, md.String())
}

func (r *Renderer) enumMemberDoc(t *entity.Type, em entity.EnumMember) ([]byte, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "# %s.%s\n\n", t.Name, em.Name)
	if em.Description != "" {
		md.WriteString(r.rewrite(em.Description))
		md.WriteString("\n")
	}

	return frontmatter.Compose(memberHeader{
		Type:      t.Name,
		Member:    em.Name,
		Kind:      "enum_member",
		Assembly:  t.Assembly,
		Namespace: t.Namespace,
		Category:  t.Category,
	}, md.String())
}

var exampleCodeRe = regexp.MustCompile(`(?s)<code>(.*?)</code>`)

func (r *Renderer) writeExamples(md *strings.Builder, t *entity.Type, m *entity.Model) {
	if len(t.Examples) == 0 {
		return
	}
	refs := make([]struct {
		name, lang, url string
	}, 0, len(t.Examples))
	for _, ref := range t.Examples {
		refs = append(refs, struct{ name, lang, url string }{ref.Name, ref.Language, ref.URL})
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].lang != refs[j].lang {
			return refs[i].lang < refs[j].lang
		}
		return refs[i].name < refs[j].name
	})

	wrote := false
	for _, ref := range refs {
		ex := m.ExampleContent(ref.url)
		if ex == nil {
			continue
		}
		code := exampleCodeRe.FindStringSubmatch(ex.Content)
		if code == nil {
			continue
		}
		if !wrote {
			md.WriteString("## Examples\n\n")
			wrote = true
		}
		fmt.Fprintf(md, "### %s (%s)\n\n", ref.name, ref.lang)
		fmt.Fprintf(md, "```%s\n%s\n```\n\n", languageTag(ref.lang), strings.TrimSpace(code[1]))
	}
}

func (r *Renderer) rewrite(text string) string {
	return r.Rewriter.RewriteMarkdown(strings.TrimSpace(text))
}

func typeBucket(t *entity.Type) string {
	if t.IsEnum {
		return "enums"
	}
	return "types"
}

func memberCounts(t *entity.Type) (props, methods int) {
	for _, rm := range entity.DedupedMembers(t) {
		if rm.Member.Kind == entity.KindProperty {
			props++
		} else {
			methods++
		}
	}
	return props, methods
}

func sortedTypes(m *entity.Model) []*entity.Type {
	types := make([]*entity.Type, 0, len(m.Types))
	for _, t := range m.Types {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].FullName() < types[j].FullName() })
	return types
}

func sortedEnumMembers(t *entity.Type) []entity.EnumMember {
	members := make([]entity.EnumMember, len(t.EnumMembers))
	copy(members, t.EnumMembers)
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members
}

func languageTag(lang string) string {
	switch lang {
	case "C#":
		return "csharp"
	case "VBA":
		return "vba"
	case "VB.NET":
		return "vbnet"
	case "C++":
		return "cpp"
	case "Python":
		return "python"
	default:
		return "text"
	}
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WriteFailed(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WriteFailed(path, err)
	}
	return nil
}
