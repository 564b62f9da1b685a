package content_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchlens/internal/content"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractArticle(t *testing.T) {
	html := `<html><head><title>Best Hiking Boots 2026</title></head><body>
		<h1>Best Hiking Boots</h1>
		<main>
			<h2>Waterproof Models</h2>
			<h2>Budget Picks</h2>
			<p>Our tested selection of boots for every terrain and budget.</p>
		</main>
	</body></html>`

	article := content.ExtractArticle(parseDoc(t, html), "https://example.com/boots")

	assert.Equal(t, "https://example.com/boots", article.URL)
	assert.Equal(t, "Best Hiking Boots 2026", article.Title)
	assert.Equal(t, "Best Hiking Boots", article.H1)
	assert.Equal(t, []string{"Waterproof Models", "Budget Picks"}, article.H2s)
	assert.Contains(t, article.Preview, "tested selection")
	assert.Equal(t, 14, article.WordCount)
}

func TestExtractArticleCapsH2s(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body><main>")
	for i := 0; i < 8; i++ {
		b.WriteString("<h2>Section</h2>")
	}
	b.WriteString("</main></body></html>")

	article := content.ExtractArticle(parseDoc(t, b.String()), "https://example.com/")
	assert.Len(t, article.H2s, 5)
}

func TestExtractArticleFallsBackToBody(t *testing.T) {
	html := `<html><head><meta property="og:title" content="Fallback Title"></head>
		<body><p>just body text here</p></body></html>`

	article := content.ExtractArticle(parseDoc(t, html), "https://example.com/")

	assert.Equal(t, "Fallback Title", article.Title)
	assert.Equal(t, "just body text here", article.Preview)
	assert.Equal(t, 4, article.WordCount)
}

func TestExtractArticleTruncatesPreview(t *testing.T) {
	long := strings.Repeat("word ", 1000)
	html := "<html><body><article>" + long + "</article></body></html>"

	article := content.ExtractArticle(parseDoc(t, html), "https://example.com/")

	assert.Len(t, article.Preview, 2000)
	assert.Equal(t, 1000, article.WordCount)
}

func TestExtractCompetitorProfile(t *testing.T) {
	html := `<html><head><title>Rival Guide</title></head><body>
		<main>
			<h2>Overview</h2>
			<h3>Details</h3>
			<h3>More Details</h3>
			<p>content words here</p>
			<img src="/a.png"><img src="/b.png">
			<a href="/internal">in</a>
			<a href="https://rival.com/page">also in</a>
			<a href="https://elsewhere.com/">out</a>
			<a href="#anchor">skip</a>
		</main>
	</body></html>`

	profile := content.ExtractCompetitorProfile(parseDoc(t, html), "https://rival.com/guide")

	assert.Equal(t, "Rival Guide", profile.Title)
	assert.Equal(t, []string{"Overview"}, profile.H2s)
	assert.Equal(t, []string{"Details", "More Details"}, profile.H3s)
	assert.Equal(t, 2, profile.ImageCount)
	assert.Equal(t, 2, profile.InternalLinks)
	assert.Greater(t, profile.WordCount, 0)
}
