// Package jats converts author-submitted JATS (Journal Article Tag Suite)
// manuscripts into the HTML sections stored for the reading surface.
//
// Parsing is deterministic: identical input bytes always produce
// byte-identical output, which the ingestion pipeline relies on for
// idempotent reparses.
package jats

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// Author is an author extracted from the manuscript front matter.
type Author struct {
	FirstName     string
	LastName      string
	Email         string
	Affiliation   string
	ORCID         string
	Corresponding bool
}

// FigureRef is figure metadata extracted from the manuscript body.
// GraphicHref names the image asset referenced by the markup; the body
// HTML carries a {{FIGURE:href}} placeholder resolved at read time.
type FigureRef struct {
	ID          string
	Label       string
	Caption     string
	GraphicHref string
}

// Document is the structured result of parsing a manuscript.
type Document struct {
	Title    string
	DOI      string
	Abstract string
	Keywords []string
	Authors  []Author

	AbstractHTML   string
	BodyHTML       string
	ReferencesHTML string

	Figures []FigureRef
}

// ParseError marks a structural problem in the manuscript: malformed
// markup or a missing required section.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

const xlinkNS = "http://www.w3.org/1999/xlink"

var xmlDeclRe = regexp.MustCompile(`<\?xml[^>]+\?>`)

// Parse decodes a manuscript and extracts metadata plus the three HTML
// sections. Non-JATS XML falls back to a best-effort generic extraction.
func Parse(data []byte) (*Document, error) {
	clean := bytes.TrimSpace(xmlDeclRe.ReplaceAll(data, nil))
	if len(clean) == 0 {
		return nil, &ParseError{Reason: "empty manuscript source"}
	}

	root, err := decode(clean)
	if err != nil {
		return nil, &ParseError{Reason: "malformed manuscript markup", Err: err}
	}

	if root.tag != "article" {
		return parseGeneric(root)
	}
	return parseJATS(root)
}

func parseJATS(root *node) (*Document, error) {
	doc := &Document{}

	if title := root.findFirst("article-title"); title != nil {
		doc.Title = strings.TrimSpace(title.textContent())
	}
	if doc.Title == "" {
		return nil, &ParseError{Reason: "missing article-title element"}
	}

	if doi := root.findFirstAttr("article-id", "pub-id-type", "doi"); doi != nil {
		doc.DOI = strings.TrimSpace(doi.textContent())
	}

	abstract := root.findFirst("abstract")
	if abstract != nil {
		doc.Abstract = strings.TrimSpace(abstract.textContent())
		doc.AbstractHTML = abstractHTML(abstract)
	}

	body := root.findFirst("body")
	if body == nil {
		return nil, &ParseError{Reason: "missing body section"}
	}
	doc.BodyHTML = bodyHTML(body)

	doc.Keywords = keywords(root)
	doc.Authors = authors(root)
	doc.ReferencesHTML = referencesHTML(root)
	doc.Figures = figures(root)

	return doc, nil
}

// parseGeneric handles non-JATS XML by probing common element names,
// mirroring the loose formats some production houses still submit.
func parseGeneric(root *node) (*Document, error) {
	doc := &Document{}
	for _, tag := range []string{"title", "article-title", "Title", "ArticleTitle"} {
		if el := root.findFirst(tag); el != nil {
			doc.Title = strings.TrimSpace(el.textContent())
			break
		}
	}
	for _, tag := range []string{"abstract", "Abstract", "summary", "Summary"} {
		if el := root.findFirst(tag); el != nil {
			doc.Abstract = strings.TrimSpace(el.textContent())
			doc.AbstractHTML = "<div class=\"article-abstract\"><p>" + html.EscapeString(doc.Abstract) + "</p></div>"
			break
		}
	}
	for _, tag := range []string{"body", "Body", "content", "Content", "text", "Text"} {
		if el := root.findFirst(tag); el != nil {
			doc.BodyHTML = "<div class=\"article-body\">" + renderChildren(el) + "</div>"
			break
		}
	}
	if doc.BodyHTML == "" {
		return nil, &ParseError{Reason: "missing body section"}
	}
	return doc, nil
}

func abstractHTML(abstract *node) string {
	var b strings.Builder
	b.WriteString("<div class=\"article-abstract\">")

	secs := abstract.findAll("sec")
	if len(secs) > 0 {
		for _, sec := range secs {
			b.WriteString("<section class=\"abstract-section\">")
			if title := sec.childByTag("title"); title != nil {
				b.WriteString("<h3 class=\"abstract-section-title\">")
				b.WriteString(html.EscapeString(strings.TrimSpace(title.textContent())))
				b.WriteString("</h3>")
			}
			for _, p := range sec.childrenByTag("p") {
				b.WriteString("<p>")
				b.WriteString(inlineHTML(p))
				b.WriteString("</p>")
			}
			b.WriteString("</section>")
		}
	} else {
		for _, p := range abstract.findAll("p") {
			b.WriteString("<p>")
			b.WriteString(inlineHTML(p))
			b.WriteString("</p>")
		}
	}

	b.WriteString("</div>")
	return b.String()
}

func bodyHTML(body *node) string {
	var b strings.Builder
	b.WriteString("<div class=\"article-body\">")
	for _, sec := range body.childrenByTag("sec") {
		b.WriteString(sectionHTML(sec, 2))
	}
	b.WriteString("</div>")
	return b.String()
}

func sectionHTML(sec *node, level int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<section id=%q class=\"article-section\" data-section-type=%q>",
		sec.attr("id"), sec.attr("sec-type")))

	if title := sec.childByTag("title"); title != nil {
		h := level
		if h > 6 {
			h = 6
		}
		b.WriteString(fmt.Sprintf("<h%d class=\"section-title\">%s</h%d>",
			h, html.EscapeString(strings.TrimSpace(title.textContent())), h))
	}

	for _, child := range sec.children {
		switch child.tag {
		case "title":
			// handled above
		case "sec":
			b.WriteString(sectionHTML(child, level+1))
		case "p":
			b.WriteString("<p>")
			b.WriteString(inlineHTML(child))
			b.WriteString("</p>")
		case "fig":
			b.WriteString(figureHTML(child))
		case "table-wrap":
			b.WriteString(tableHTML(child))
		case "list":
			b.WriteString(listHTML(child))
		}
	}

	b.WriteString("</section>")
	return b.String()
}

// inlineHTML converts JATS inline markup (bold, italic, xref, ext-link…)
// inside a paragraph-like element.
func inlineHTML(el *node) string {
	var b strings.Builder
	b.WriteString(html.EscapeString(el.text))
	for _, child := range el.children {
		switch child.tag {
		case "bold", "b":
			b.WriteString("<strong>" + html.EscapeString(child.textContent()) + "</strong>")
		case "italic", "i":
			b.WriteString("<em>" + html.EscapeString(child.textContent()) + "</em>")
		case "sup":
			b.WriteString("<sup>" + html.EscapeString(child.textContent()) + "</sup>")
		case "sub":
			b.WriteString("<sub>" + html.EscapeString(child.textContent()) + "</sub>")
		case "xref":
			text := html.EscapeString(child.textContent())
			rid := child.attr("rid")
			switch child.attr("ref-type") {
			case "bibr":
				b.WriteString(fmt.Sprintf("<a href=\"#ref-%s\" class=\"citation-ref\">%s</a>", rid, text))
			case "fig":
				b.WriteString(fmt.Sprintf("<a href=\"#fig-%s\" class=\"figure-ref\">%s</a>", rid, text))
			case "table":
				b.WriteString(fmt.Sprintf("<a href=\"#table-%s\" class=\"table-ref\">%s</a>", rid, text))
			default:
				b.WriteString(text)
			}
		case "ext-link":
			href := child.attrNS(xlinkNS, "href")
			if href == "" {
				href = "#"
			}
			text := strings.TrimSpace(child.textContent())
			if text == "" {
				text = href
			}
			b.WriteString(fmt.Sprintf("<a href=%q target=\"_blank\" rel=\"noopener\">%s</a>",
				href, html.EscapeString(text)))
		default:
			b.WriteString(html.EscapeString(child.textContent()))
		}
		b.WriteString(html.EscapeString(child.tail))
	}
	return b.String()
}

func listHTML(list *node) string {
	tag := "ul"
	switch list.attr("list-type") {
	case "order", "ordered", "number":
		tag = "ol"
	}
	var b strings.Builder
	b.WriteString("<" + tag + " class=\"article-list\">")
	for _, item := range list.childrenByTag("list-item") {
		b.WriteString("<li>")
		for _, p := range item.childrenByTag("p") {
			b.WriteString(inlineHTML(p))
		}
		if len(item.childrenByTag("p")) == 0 {
			b.WriteString(inlineHTML(item))
		}
		b.WriteString("</li>")
	}
	b.WriteString("</" + tag + ">")
	return b.String()
}

// figureHTML emits a {{FIGURE:href}} placeholder instead of a concrete
// image URL; the reading surface substitutes the figure locator when the
// page is composed.
func figureHTML(fig *node) string {
	id := fig.attr("id")
	label := ""
	if l := fig.childByTag("label"); l != nil {
		label = strings.TrimSpace(l.textContent())
	}
	caption := captionText(fig.childByTag("caption"))
	href := ""
	if graphic := fig.findFirst("graphic"); graphic != nil {
		href = graphic.attrNS(xlinkNS, "href")
	}
	return fmt.Sprintf("<figure id=\"fig-%s\" class=\"article-figure\">"+
		"<img src=\"{{FIGURE:%s}}\" alt=%q loading=\"lazy\">"+
		"<figcaption><strong>%s</strong> %s</figcaption></figure>",
		id, href, label, html.EscapeString(label), html.EscapeString(caption))
}

func tableHTML(wrap *node) string {
	id := wrap.attr("id")
	label := ""
	if l := wrap.childByTag("label"); l != nil {
		label = strings.TrimSpace(l.textContent())
	}
	caption := captionText(wrap.childByTag("caption"))
	content := ""
	if table := wrap.findFirst("table"); table != nil {
		content = renderNode(table)
	}
	return fmt.Sprintf("<div id=\"table-%s\" class=\"article-table\">"+
		"<div class=\"table-caption\"><strong>%s</strong> %s</div>"+
		"<div class=\"table-content\">%s</div></div>",
		id, html.EscapeString(label), html.EscapeString(caption), content)
}

func captionText(caption *node) string {
	if caption == nil {
		return ""
	}
	var parts []string
	for _, p := range caption.findAll("p") {
		if t := strings.TrimSpace(p.textContent()); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		if t := strings.TrimSpace(caption.textContent()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func keywords(root *node) []string {
	group := root.findFirst("kwd-group")
	if group == nil {
		return nil
	}
	var out []string
	for _, kwd := range group.childrenByTag("kwd") {
		if t := strings.TrimSpace(kwd.textContent()); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func authors(root *node) []Author {
	group := root.findFirst("contrib-group")
	if group == nil {
		return nil
	}

	affiliations := map[string]string{}
	for _, aff := range root.findAll("aff") {
		id := aff.attr("id")
		text := strings.TrimSpace(aff.textContent())
		// drop a leading affiliation marker like "1" or "a"
		text = strings.TrimLeft(text, "0123456789abcdefghij ")
		affiliations[id] = text
	}

	var out []Author
	for _, contrib := range group.childrenByTag("contrib") {
		if contrib.attr("contrib-type") != "author" {
			continue
		}
		author := Author{Corresponding: strings.EqualFold(contrib.attr("corresp"), "yes")}
		if name := contrib.findFirst("name"); name != nil {
			if surname := name.childByTag("surname"); surname != nil {
				author.LastName = strings.TrimSpace(surname.textContent())
			}
			if given := name.childByTag("given-names"); given != nil {
				author.FirstName = strings.TrimSpace(given.textContent())
			}
		}
		if email := contrib.findFirst("email"); email != nil {
			author.Email = strings.TrimSpace(email.textContent())
		}
		if orcid := contrib.findFirstAttr("contrib-id", "contrib-id-type", "orcid"); orcid != nil {
			author.ORCID = strings.TrimSpace(orcid.textContent())
		}
		if xref := contrib.findFirstAttr("xref", "ref-type", "aff"); xref != nil {
			author.Affiliation = affiliations[xref.attr("rid")]
		}
		out = append(out, author)
	}
	return out
}

var leadingNumberRe = regexp.MustCompile(`^\d+\.?\s*`)

func referencesHTML(root *node) string {
	refList := root.findFirst("ref-list")
	if refList == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("<section class=\"references\"><h2>References</h2><ol class=\"reference-list\">")
	for _, ref := range refList.childrenByTag("ref") {
		citation := strings.Join(strings.Fields(ref.textContent()), " ")
		citation = leadingNumberRe.ReplaceAllString(citation, "")
		b.WriteString(fmt.Sprintf("<li id=\"ref-%s\" class=\"reference-item\">%s</li>",
			ref.attr("id"), html.EscapeString(citation)))
	}
	b.WriteString("</ol></section>")
	return b.String()
}

func figures(root *node) []FigureRef {
	var out []FigureRef
	for _, fig := range root.findAll("fig") {
		ref := FigureRef{ID: fig.attr("id")}
		if l := fig.childByTag("label"); l != nil {
			ref.Label = strings.TrimSpace(l.textContent())
		}
		ref.Caption = captionText(fig.childByTag("caption"))
		if graphic := fig.findFirst("graphic"); graphic != nil {
			ref.GraphicHref = graphic.attrNS(xlinkNS, "href")
		}
		out = append(out, ref)
	}
	return out
}

// node is a simple ordered element tree preserving inter-element text,
// which encoding/xml's struct decoding cannot represent for mixed content.
type node struct {
	tag      string
	attrs    []xml.Attr
	text     string // text before the first child
	tail     string // text following this element inside its parent
	children []*node
}

func decode(data []byte) (*node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = true

	var root *node
	var stack []*node

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{tag: t.Name.Local, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			current := stack[len(stack)-1]
			if len(current.children) == 0 {
				current.text += string(t)
			} else {
				last := current.children[len(current.children)-1]
				last.tail += string(t)
			}
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element %s", stack[len(stack)-1].tag)
	}
	if root == nil {
		return nil, fmt.Errorf("no root element")
	}
	return root, nil
}

func (n *node) attr(name string) string {
	for _, a := range n.attrs {
		if a.Name.Local == name && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

func (n *node) attrNS(space, name string) string {
	for _, a := range n.attrs {
		if a.Name.Local == name && (a.Name.Space == space || a.Name.Space == "") {
			return a.Value
		}
	}
	return ""
}

// findFirst returns the first descendant with the given tag, depth-first.
func (n *node) findFirst(tag string) *node {
	for _, child := range n.children {
		if child.tag == tag {
			return child
		}
		if found := child.findFirst(tag); found != nil {
			return found
		}
	}
	return nil
}

// findFirstAttr returns the first descendant with the tag and attribute value.
func (n *node) findFirstAttr(tag, attrName, attrValue string) *node {
	for _, child := range n.children {
		if child.tag == tag && child.attr(attrName) == attrValue {
			return child
		}
		if found := child.findFirstAttr(tag, attrName, attrValue); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant with the given tag, in document order.
func (n *node) findAll(tag string) []*node {
	var out []*node
	for _, child := range n.children {
		if child.tag == tag {
			out = append(out, child)
		}
		out = append(out, child.findAll(tag)...)
	}
	return out
}

// childByTag returns the first direct child with the given tag.
func (n *node) childByTag(tag string) *node {
	for _, child := range n.children {
		if child.tag == tag {
			return child
		}
	}
	return nil
}

// childrenByTag returns the direct children with the given tag.
func (n *node) childrenByTag(tag string) []*node {
	var out []*node
	for _, child := range n.children {
		if child.tag == tag {
			out = append(out, child)
		}
	}
	return out
}

// textContent concatenates all text within the element.
func (n *node) textContent() string {
	var b strings.Builder
	b.WriteString(n.text)
	for _, child := range n.children {
		b.WriteString(child.textContent())
		b.WriteString(child.tail)
	}
	return b.String()
}

// renderNode serialises an element subtree back to markup, used for
// embedded tables that are carried through verbatim.
func renderNode(n *node) string {
	var b strings.Builder
	b.WriteString("<" + n.tag)
	for _, a := range n.attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		b.WriteString(fmt.Sprintf(" %s=%q", a.Name.Local, a.Value))
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(n.text))
	for _, child := range n.children {
		b.WriteString(renderNode(child))
		b.WriteString(html.EscapeString(child.tail))
	}
	b.WriteString("</" + n.tag + ">")
	return b.String()
}

// renderChildren serialises the children of an element without the
// element's own tags.
func renderChildren(n *node) string {
	var b strings.Builder
	b.WriteString(html.EscapeString(n.text))
	for _, child := range n.children {
		b.WriteString(renderNode(child))
		b.WriteString(html.EscapeString(child.tail))
	}
	return b.String()
}
