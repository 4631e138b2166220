package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/sitekit/internal/pagedata"
)

func TestYAMLDraftConvertsToValidPageData(t *testing.T) {
	doc := []byte(`
seo:
  title: About us
  description: Family run since 1982.
sections:
  - type: hero
    headline: Three generations of plumbers
    subtext: Same-day service across the valley.
    ctaText: Call us
    ctaHref: /contact
  - type: faq
    title: Questions
    items:
      - question: Do you work weekends?
        answer: Yes.
`)
	raw, err := yamlToJSON(doc)
	require.NoError(t, err)

	pd, err := pagedata.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "About us", pd.SEO.Title)
	require.Len(t, pd.Sections, 2)
	assert.Equal(t, pagedata.KindHero, pd.Sections[0].Kind())
}

func TestYAMLDraftRejectsGarbage(t *testing.T) {
	_, err := yamlToJSON([]byte("a: [unclosed"))
	assert.Error(t, err)
}
