package jats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleManuscript = `<?xml version="1.0" encoding="UTF-8"?>
<article xmlns:xlink="http://www.w3.org/1999/xlink" article-type="research-article">
  <front>
    <article-meta>
      <article-id pub-id-type="doi">10.5555/aethra.2026.00042</article-id>
      <title-group>
        <article-title>Thermal Adaptation in Alpine Moss Communities</article-title>
      </title-group>
      <contrib-group>
        <contrib contrib-type="author" corresp="yes">
          <contrib-id contrib-id-type="orcid">0000-0002-1825-0097</contrib-id>
          <name><surname>Okafor</surname><given-names>Adaeze</given-names></name>
          <email>a.okafor@example.edu</email>
          <xref ref-type="aff" rid="aff1">1</xref>
        </contrib>
        <contrib contrib-type="author">
          <name><surname>Lindqvist</surname><given-names>Mara</given-names></name>
          <xref ref-type="aff" rid="aff2">2</xref>
        </contrib>
      </contrib-group>
      <aff id="aff1">1 Department of Botany, Ridgeline University</aff>
      <aff id="aff2">2 Institute for Cold Climate Research</aff>
      <abstract>
        <sec><title>Background</title><p>Moss communities respond to warming.</p></sec>
        <sec><title>Results</title><p>We observed a shift in dominance.</p></sec>
      </abstract>
      <kwd-group>
        <kwd>bryophytes</kwd>
        <kwd>climate</kwd>
      </kwd-group>
    </article-meta>
  </front>
  <body>
    <sec id="s1" sec-type="intro">
      <title>Introduction</title>
      <p>Alpine mosses are <italic>sensitive</italic> indicators <xref ref-type="bibr" rid="b1">[1]</xref>.</p>
      <fig id="f1">
        <label>Figure 1</label>
        <caption><p>Sampling sites across the ridge.</p></caption>
        <graphic xlink:href="fig1.png"/>
      </fig>
      <sec id="s1-1">
        <title>Study area</title>
        <p>The transect spans 400 m of elevation.</p>
      </sec>
    </sec>
  </body>
  <back>
    <ref-list>
      <ref id="b1"><mixed-citation>1. Hart J. Moss thermal limits. J Bryol. 2019.</mixed-citation></ref>
    </ref-list>
  </back>
</article>`

func TestParseExtractsMetadata(t *testing.T) {
	doc, err := Parse([]byte(sampleManuscript))
	require.NoError(t, err)

	require.Equal(t, "Thermal Adaptation in Alpine Moss Communities", doc.Title)
	require.Equal(t, "10.5555/aethra.2026.00042", doc.DOI)
	require.Equal(t, []string{"bryophytes", "climate"}, doc.Keywords)

	require.Len(t, doc.Authors, 2)
	first := doc.Authors[0]
	require.Equal(t, "Adaeze", first.FirstName)
	require.Equal(t, "Okafor", first.LastName)
	require.Equal(t, "a.okafor@example.edu", first.Email)
	require.Equal(t, "0000-0002-1825-0097", first.ORCID)
	require.True(t, first.Corresponding)
	require.Contains(t, first.Affiliation, "Ridgeline University")
	require.False(t, doc.Authors[1].Corresponding)
}

func TestParseBuildsBodyHTML(t *testing.T) {
	doc, err := Parse([]byte(sampleManuscript))
	require.NoError(t, err)

	require.Contains(t, doc.BodyHTML, `<div class="article-body">`)
	require.Contains(t, doc.BodyHTML, `<h2 class="section-title">Introduction</h2>`)
	require.Contains(t, doc.BodyHTML, `<h3 class="section-title">Study area</h3>`)
	require.Contains(t, doc.BodyHTML, "<em>sensitive</em>")
	require.Contains(t, doc.BodyHTML, `<a href="#ref-b1" class="citation-ref">[1]</a>`)
}

func TestParseEmitsFigurePlaceholders(t *testing.T) {
	doc, err := Parse([]byte(sampleManuscript))
	require.NoError(t, err)

	require.Contains(t, doc.BodyHTML, "{{FIGURE:fig1.png}}")
	require.NotContains(t, doc.BodyHTML, `src="fig1.png"`)

	require.Len(t, doc.Figures, 1)
	fig := doc.Figures[0]
	require.Equal(t, "f1", fig.ID)
	require.Equal(t, "Figure 1", fig.Label)
	require.Equal(t, "Sampling sites across the ridge.", fig.Caption)
	require.Equal(t, "fig1.png", fig.GraphicHref)
}

func TestParseAbstractSections(t *testing.T) {
	doc, err := Parse([]byte(sampleManuscript))
	require.NoError(t, err)

	require.Contains(t, doc.AbstractHTML, `<h3 class="abstract-section-title">Background</h3>`)
	require.Contains(t, doc.AbstractHTML, "<p>We observed a shift in dominance.</p>")
	require.Contains(t, doc.Abstract, "Moss communities respond to warming.")
}

func TestParseReferencesStripLeadingNumbers(t *testing.T) {
	doc, err := Parse([]byte(sampleManuscript))
	require.NoError(t, err)

	require.Contains(t, doc.ReferencesHTML, `<li id="ref-b1" class="reference-item">Hart J. Moss thermal limits. J Bryol. 2019.</li>`)
}

func TestParseIsDeterministic(t *testing.T) {
	a, err := Parse([]byte(sampleManuscript))
	require.NoError(t, err)
	b, err := Parse([]byte(sampleManuscript))
	require.NoError(t, err)

	require.Equal(t, a.BodyHTML, b.BodyHTML)
	require.Equal(t, a.AbstractHTML, b.AbstractHTML)
	require.Equal(t, a.ReferencesHTML, b.ReferencesHTML)
}

func TestParseMissingBody(t *testing.T) {
	src := `<article><front><article-meta><title-group><article-title>T</article-title></title-group></article-meta></front></article>`
	_, err := Parse([]byte(src))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Contains(t, perr.Reason, "missing body")
}

func TestParseMalformedMarkup(t *testing.T) {
	_, err := Parse([]byte(`<article><body><sec>unclosed`))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	require.Contains(t, perr.Reason, "malformed")
}

func TestParseGenericFallback(t *testing.T) {
	src := `<document><Title>Plain Submission</Title><Body><p>Some content.</p></Body></document>`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	require.Equal(t, "Plain Submission", doc.Title)
	require.Contains(t, doc.BodyHTML, "Some content.")
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse([]byte("   "))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "empty"))
}
