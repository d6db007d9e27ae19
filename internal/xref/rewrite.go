package xref

import (
	"strings"

	"golang.org/x/net/html"
)

// linkEmitter renders one classified link segment into the output form of a
// projection. plainText receives everything outside of anchors.
type linkEmitter interface {
	plainText(sb *strings.Builder, text string)
	internalLink(sb *strings.Builder, t Target, display string)
	externalLink(sb *strings.Builder, href, display string)
	brokenLink(sb *strings.Builder, display string)
}

// RewriteXMLDoc rewrites anchor markup into XMLDoc form. All non-link text is
// XML-escaped, resolved internal targets become <see cref="..."> elements and
// guide pages become <see href="..."> elements, so the result can be embedded
// raw inside a generated documentation file.
func (rw *Rewriter) RewriteXMLDoc(text string) string {
	return rw.rewrite(text, xmldocEmitter{})
}

// RewriteMarkdown rewrites anchor markup into grep-tree form. Resolved
// internal targets become [[Type]] / [[Type.Member]] wiki links and guide
// pages become standard markdown links; remaining markup is stripped.
func (rw *Rewriter) RewriteMarkdown(text string) string {
	return rw.rewrite(text, markdownEmitter{})
}

func (rw *Rewriter) rewrite(text string, em linkEmitter) string {
	if !strings.Contains(text, "<") {
		var sb strings.Builder
		em.plainText(&sb, text)
		return sb.String()
	}

	var sb strings.Builder
	tok := html.NewTokenizer(strings.NewReader(text))

	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF on well-formed input; truncated markup ends here too.
			return sb.String()
		case html.TextToken:
			em.plainText(&sb, string(tok.Text()))
		case html.StartTagToken:
			name, hasAttr := tok.TagName()
			if string(name) == "a" {
				href := anchorHref(tok, hasAttr)
				display := rw.collectAnchorText(tok)
				rw.emitLink(&sb, em, href, display)
				continue
			}
			// Non-anchor tags carry no meaning for either projection.
		case html.EndTagToken, html.SelfClosingTagToken, html.CommentToken, html.DoctypeToken:
			// Dropped.
		}
	}
}

// collectAnchorText consumes tokens until the matching </a>, concatenating
// text content and ignoring nested markup.
func (rw *Rewriter) collectAnchorText(tok *html.Tokenizer) string {
	var sb strings.Builder
	for {
		switch tok.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.TextToken:
			sb.Write(tok.Text())
		case html.EndTagToken:
			name, _ := tok.TagName()
			if string(name) == "a" {
				return sb.String()
			}
		}
	}
}

func (rw *Rewriter) emitLink(sb *strings.Builder, em linkEmitter, href, display string) {
	display = strings.TrimSpace(display)
	if href == "" {
		rw.Counters.Broken++
		em.brokenLink(sb, display)
		return
	}
	if t, ok := ClassifyHref(href); ok {
		if rw.resolve(t) {
			rw.Counters.Rewritten++
			if display == "" {
				display = t.Display()
			}
			em.internalLink(sb, t, display)
			return
		}
		rw.Counters.Broken++
		em.brokenLink(sb, display)
		return
	}
	rw.Counters.External++
	if display == "" {
		display = href
	}
	em.externalLink(sb, rw.ExternalURL(href), display)
}

func anchorHref(tok *html.Tokenizer, hasAttr bool) string {
	for hasAttr {
		key, val, more := tok.TagAttr()
		if string(key) == "href" {
			return strings.TrimSpace(string(val))
		}
		hasAttr = more
	}
	return ""
}

type xmldocEmitter struct{}

func (xmldocEmitter) plainText(sb *strings.Builder, text string) {
	sb.WriteString(escapeXML(text))
}

func (xmldocEmitter) internalLink(sb *strings.Builder, t Target, display string) {
	sb.WriteString(`<see cref="`)
	sb.WriteString(escapeXMLAttr(t.CrefValue()))
	sb.WriteString(`">`)
	sb.WriteString(escapeXML(display))
	sb.WriteString(`</see>`)
}

func (xmldocEmitter) externalLink(sb *strings.Builder, href, display string) {
	sb.WriteString(`<see href="`)
	sb.WriteString(escapeXMLAttr(href))
	sb.WriteString(`">`)
	sb.WriteString(escapeXML(display))
	sb.WriteString(`</see>`)
}

func (xmldocEmitter) brokenLink(sb *strings.Builder, display string) {
	sb.WriteString(escapeXML(display))
}

type markdownEmitter struct{}

func (markdownEmitter) plainText(sb *strings.Builder, text string) {
	sb.WriteString(text)
}

func (markdownEmitter) internalLink(sb *strings.Builder, t Target, display string) {
	sb.WriteString("[[")
	sb.WriteString(t.Display())
	sb.WriteString("]]")
}

func (markdownEmitter) externalLink(sb *strings.Builder, href, display string) {
	sb.WriteString("[")
	sb.WriteString(display)
	sb.WriteString("](")
	sb.WriteString(href)
	sb.WriteString(")")
}

func (markdownEmitter) brokenLink(sb *strings.Builder, display string) {
	sb.WriteString(display)
}

var xmlTextReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var xmlAttrReplacer = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
)

func escapeXML(s string) string     { return xmlTextReplacer.Replace(s) }
func escapeXMLAttr(s string) string { return xmlAttrReplacer.Replace(s) }
