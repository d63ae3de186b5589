package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Citation carries the bibliographic fields rendered into the
// downloadable citation formats.
type Citation struct {
	Authors      []string
	Title        string
	JournalTitle string
	ISSN         string
	Volume       string
	Issue        string
	Year         int
	Pages        string
	DOI          string
	Abstract     string
	Keywords     []string
	URL          string
}

// RenderRIS produces an RIS (Research Information Systems) record.
func RenderRIS(c Citation) []byte {
	buf := &bytes.Buffer{}
	writeRIS := func(tag, value string) {
		if value != "" {
			fmt.Fprintf(buf, "%s  - %s\r\n", tag, value)
		}
	}

	fmt.Fprintf(buf, "TY  - JOUR\r\n")
	for _, author := range c.Authors {
		writeRIS("AU", risAuthor(author))
	}
	writeRIS("TI", c.Title)
	writeRIS("JO", c.JournalTitle)
	writeRIS("SN", c.ISSN)
	writeRIS("VL", c.Volume)
	writeRIS("IS", c.Issue)
	if c.Year > 0 {
		writeRIS("PY", fmt.Sprintf("%d", c.Year))
	}
	if start, end, ok := splitPages(c.Pages); ok {
		writeRIS("SP", start)
		writeRIS("EP", end)
	} else {
		writeRIS("SP", c.Pages)
	}
	writeRIS("DO", c.DOI)
	writeRIS("AB", c.Abstract)
	for _, kw := range c.Keywords {
		writeRIS("KW", kw)
	}
	writeRIS("UR", c.URL)
	fmt.Fprintf(buf, "ER  - \r\n")
	return buf.Bytes()
}

// RenderBibTeX produces a BibTeX @article entry.
func RenderBibTeX(c Citation) []byte {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "@article{%s,\n", bibKey(c))

	writeField := func(name, value string) {
		if value != "" {
			fmt.Fprintf(buf, "  %s = {%s},\n", name, value)
		}
	}

	writeField("author", strings.Join(c.Authors, " and "))
	writeField("title", c.Title)
	writeField("journal", c.JournalTitle)
	writeField("volume", c.Volume)
	writeField("number", c.Issue)
	if c.Year > 0 {
		writeField("year", fmt.Sprintf("%d", c.Year))
	}
	writeField("pages", strings.ReplaceAll(c.Pages, "-", "--"))
	writeField("doi", c.DOI)
	writeField("issn", c.ISSN)
	writeField("keywords", strings.Join(c.Keywords, ", "))
	writeField("url", c.URL)

	fmt.Fprintf(buf, "}\n")
	return buf.Bytes()
}

// RenderEndNote produces an EndNote tagged (ENW) record.
func RenderEndNote(c Citation) []byte {
	buf := &bytes.Buffer{}
	writeTag := func(tag, value string) {
		if value != "" {
			fmt.Fprintf(buf, "%%%s %s\n", tag, value)
		}
	}

	writeTag("0", "Journal Article")
	for _, author := range c.Authors {
		writeTag("A", risAuthor(author))
	}
	writeTag("T", c.Title)
	writeTag("J", c.JournalTitle)
	writeTag("V", c.Volume)
	writeTag("N", c.Issue)
	if c.Year > 0 {
		writeTag("D", fmt.Sprintf("%d", c.Year))
	}
	writeTag("P", c.Pages)
	writeTag("R", c.DOI)
	writeTag("@", c.ISSN)
	writeTag("X", c.Abstract)
	for _, kw := range c.Keywords {
		writeTag("K", kw)
	}
	writeTag("U", c.URL)
	return buf.Bytes()
}

var bibKeyRe = regexp.MustCompile(`[^a-z0-9]+`)

// bibKey derives a citation key like okafor2026thermal.
func bibKey(c Citation) string {
	var parts []string
	if len(c.Authors) > 0 {
		fields := strings.Fields(c.Authors[0])
		if len(fields) > 0 {
			parts = append(parts, strings.ToLower(fields[len(fields)-1]))
		}
	}
	if c.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", c.Year))
	}
	if words := strings.Fields(c.Title); len(words) > 0 {
		parts = append(parts, strings.ToLower(words[0]))
	}
	key := bibKeyRe.ReplaceAllString(strings.Join(parts, ""), "")
	if key == "" {
		key = "article"
	}
	return key
}

// risAuthor converts "Given Surname" into the "Surname, Given" form RIS
// and EndNote expect. Already-comma'd names pass through.
func risAuthor(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ",") {
		return name
	}
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return name
	}
	last := fields[len(fields)-1]
	given := strings.Join(fields[:len(fields)-1], " ")
	return last + ", " + given
}

func splitPages(pages string) (string, string, bool) {
	parts := strings.SplitN(pages, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}
