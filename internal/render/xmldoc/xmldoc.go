// Package xmldoc renders the merged entity model into IntelliSense-style
// XMLDoc files, one per assembly. Free-text fields pass through the
// cross-reference rewriter, so the emitted documents contain <see cref> and
// <see href> elements alongside escaped prose; example code is wrapped in
// CDATA so snippet punctuation survives untouched.
package xmldoc

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/apiforge/internal/entity"
	"git.home.luguber.info/inful/apiforge/internal/errors"
	"git.home.luguber.info/inful/apiforge/internal/identifier"
	"git.home.luguber.info/inful/apiforge/internal/logfields"
	"git.home.luguber.info/inful/apiforge/internal/xref"
)

// Renderer writes one XMLDoc file per assembly into OutDir.
type Renderer struct {
	OutDir   string
	Rewriter *xref.Rewriter
	Logger   *slog.Logger
}

// Result reports what the projection produced.
type Result struct {
	Files       []string
	Types       int
	Members     int
	EnumMembers int
	Examples    int
}

// Render writes every assembly group. A write failure aborts only the
// assembly in question; remaining assemblies still render.
func (r *Renderer) Render(m *entity.Model) (*Result, error) {
	if err := os.MkdirAll(r.OutDir, 0o755); err != nil {
		return nil, errors.WriteFailed(r.OutDir, err)
	}

	groups := m.ByAssembly()
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	res := &Result{}
	var firstErr error
	for _, assembly := range names {
		path, err := r.renderAssembly(m, assembly, groups[assembly], res)
		if err != nil {
			r.Logger.Error("assembly render failed",
				logfields.Assembly(assembly), logfields.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		res.Files = append(res.Files, path)
		r.Logger.Debug("assembly rendered",
			logfields.Assembly(assembly),
			logfields.Path(path),
			logfields.Count(len(groups[assembly])))
	}
	return res, firstErr
}

func (r *Renderer) renderAssembly(m *entity.Model, assembly string, types []*entity.Type, res *Result) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	buf.WriteString("<doc>\n")
	buf.WriteString("  <assembly>\n")
	fmt.Fprintf(&buf, "    <name>%s</name>\n", escapeText(assembly))
	buf.WriteString("  </assembly>\n")
	buf.WriteString("  <members>\n")

	for _, t := range types {
		r.writeType(&buf, m, t, res)
	}

	buf.WriteString("  </members>\n")
	buf.WriteString("</doc>\n")

	path := filepath.Join(r.OutDir, assembly+".xml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", errors.WriteFailed(path, err)
	}
	return path, nil
}

func (r *Renderer) writeType(buf *bytes.Buffer, m *entity.Model, t *entity.Type, res *Result) {
	res.Types++
	typeID := identifier.TypeID(t.Namespace, t.Name)

	fmt.Fprintf(buf, "    <member name=\"%s\">\n", escapeAttr(typeID))
	if t.Description != "" {
		writeTag(buf, "summary", r.rewrite(t.Description))
	}
	if t.Remarks != "" {
		writeTag(buf, "remarks", r.rewrite(t.Remarks))
	}
	for _, ref := range t.Examples {
		if ref.Language != "C#" {
			continue
		}
		ex := m.ExampleContent(ref.URL)
		if ex == nil {
			continue
		}
		r.writeExample(buf, ex.Content)
		res.Examples++
	}
	buf.WriteString("    </member>\n")

	for _, rm := range entity.DedupedMembers(t) {
		r.writeMember(buf, rm, res)
	}
	r.writeEnumMembers(buf, t, res)
}

func (r *Renderer) writeMember(buf *bytes.Buffer, rm entity.RenderMember, res *Result) {
	res.Members++
	m := rm.Member

	fmt.Fprintf(buf, "    <member name=\"%s\">\n", escapeAttr(rm.ID))
	switch {
	case m.Description != "":
		writeTag(buf, "summary", r.rewrite(m.Description))
	case m.Kind == entity.KindProperty:
		writeTag(buf, "summary", escapeText(fmt.Sprintf("Gets or sets %s.", m.Name)))
	default:
		writeTag(buf, "summary", escapeText(fmt.Sprintf("%s method.", m.Name)))
	}
	for _, p := range m.Parameters {
		if p.Description != "" {
			fmt.Fprintf(buf, "      <param name=\"%s\">%s</param>\n", escapeAttr(p.Name), r.rewrite(p.Description))
		} else {
			fmt.Fprintf(buf, "      <param name=\"%s\"/>\n", escapeAttr(p.Name))
		}
	}
	if m.Returns != "" {
		writeTag(buf, "returns", r.rewrite(m.Returns))
	}
	if m.Remarks != "" {
		writeTag(buf, "remarks", r.rewrite(m.Remarks))
	}
	buf.WriteString("    </member>\n")
}

// writeEnumMembers emits one F: member per enum value, sorted by name.
func (r *Renderer) writeEnumMembers(buf *bytes.Buffer, t *entity.Type, res *Result) {
	members := make([]entity.EnumMember, len(t.EnumMembers))
	copy(members, t.EnumMembers)
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	for _, em := range members {
		res.EnumMembers++
		fieldID := identifier.FieldID(t.Namespace, t.Name, em.Name)
		fmt.Fprintf(buf, "    <member name=\"%s\">\n", escapeAttr(fieldID))
		if em.Description != "" {
			writeTag(buf, "summary", r.rewrite(em.Description))
		} else {
			writeTag(buf, "summary", escapeText(em.Name))
		}
		buf.WriteString("    </member>\n")
	}
}

var codeBlockRe = regexp.MustCompile(`(?s)<code>(.*?)</code>`)

// writeExample splits prose from <code> blocks: prose is rewritten and
// escaped like any other field, code goes into CDATA untouched.
func (r *Renderer) writeExample(buf *bytes.Buffer, content string) {
	buf.WriteString("      <example>")
	last := 0
	for _, loc := range codeBlockRe.FindAllStringSubmatchIndex(content, -1) {
		if prose := content[last:loc[0]]; strings.TrimSpace(prose) != "" {
			buf.WriteString(r.rewrite(prose))
		}
		buf.WriteString("<code>")
		buf.WriteString(wrapCDATA(content[loc[2]:loc[3]]))
		buf.WriteString("</code>")
		last = loc[1]
	}
	if tail := content[last:]; strings.TrimSpace(tail) != "" {
		buf.WriteString(r.rewrite(tail))
	}
	buf.WriteString("</example>\n")
}

func (r *Renderer) rewrite(text string) string {
	return r.Rewriter.RewriteXMLDoc(strings.TrimSpace(text))
}

func writeTag(buf *bytes.Buffer, tag, content string) {
	fmt.Fprintf(buf, "      <%s>%s</%s>\n", tag, content, tag)
}

// wrapCDATA wraps snippet text, splitting any literal "]]>" so the section
// stays well formed.
func wrapCDATA(code string) string {
	code = strings.ReplaceAll(code, "]]>", "]]]]><![CDATA[>")
	return "<![CDATA[" + code + "]]>"
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
)

func escapeText(s string) string { return textEscaper.Replace(s) }
func escapeAttr(s string) string { return attrEscaper.Replace(s) }
