// Package content extracts article structure from HTML pages using goquery:
// the site's own article for review, and competitor pages for profiling.
package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

const (
	fetchTimeout = 10 * time.Second
	userAgent    = "Mozilla/5.0 (compatible; searchlens/1.0)"

	// previewLimit bounds how much body text is carried into advisory
	// prompts.
	previewLimit = 2000

	maxArticleH2s    = 5
	maxProfileHeadings = 10
)

// Article is the extracted structure of the page under analysis.
type Article struct {
	URL       string   `json:"url"`
	Title     string   `json:"title"`
	H1        string   `json:"h1"`
	H2s       []string `json:"h2s"`
	Preview   string   `json:"preview"`
	WordCount int      `json:"word_count"`
}

// CompetitorProfile is the structural summary of a competitor page.
type CompetitorProfile struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	H2s           []string `json:"h2s"`
	H3s           []string `json:"h3s"`
	WordCount     int      `json:"word_count"`
	ImageCount    int      `json:"image_count"`
	InternalLinks int      `json:"internal_links"`
}

// Fetcher downloads and parses pages.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher with a bounded-timeout HTTP client.
func NewFetcher(logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		logger: logger,
	}
}

func (f *Fetcher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid page url %q: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s returned status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html from %s: %w", pageURL, err)
	}
	return doc, nil
}

// FetchArticle downloads and extracts the page under analysis.
func (f *Fetcher) FetchArticle(ctx context.Context, pageURL string) (*Article, error) {
	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return ExtractArticle(doc, pageURL), nil
}

// FetchCompetitor downloads and profiles a competitor page.
func (f *Fetcher) FetchCompetitor(ctx context.Context, pageURL string) (*CompetitorProfile, error) {
	doc, err := f.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return ExtractCompetitorProfile(doc, pageURL), nil
}

// ExtractArticle pulls the article structure out of a parsed document.
// Split from fetching so tests can feed static HTML.
func ExtractArticle(doc *goquery.Document, pageURL string) *Article {
	article := &Article{
		URL:   pageURL,
		Title: extractTitle(doc),
		H1:    strings.TrimSpace(doc.Find("h1").First().Text()),
	}

	doc.Find("h2").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxArticleH2s {
			return false
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			article.H2s = append(article.H2s, text)
		}
		return true
	})

	body := extractBodyText(doc)
	article.WordCount = len(strings.Fields(body))
	if len(body) > previewLimit {
		body = body[:previewLimit]
	}
	article.Preview = body

	return article
}

// ExtractCompetitorProfile pulls the structural summary out of a parsed
// competitor document.
func ExtractCompetitorProfile(doc *goquery.Document, pageURL string) *CompetitorProfile {
	profile := &CompetitorProfile{
		URL:   pageURL,
		Title: extractTitle(doc),
	}

	doc.Find("h2").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxProfileHeadings {
			return false
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			profile.H2s = append(profile.H2s, text)
		}
		return true
	})
	doc.Find("h3").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxProfileHeadings {
			return false
		}
		if text := strings.TrimSpace(s.Text()); text != "" {
			profile.H3s = append(profile.H3s, text)
		}
		return true
	})

	profile.WordCount = len(strings.Fields(extractBodyText(doc)))
	profile.ImageCount = doc.Find("img").Length()
	profile.InternalLinks = countInternalLinks(doc, pageURL)

	return profile
}

// extractTitle prefers <title>, falling back to og:title.
func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return strings.TrimSpace(ogTitle)
	}
	return ""
}

// extractBodyText returns the text of the main content region, falling back
// to the whole body when the page has no recognizable content container.
func extractBodyText(doc *goquery.Document) string {
	for _, selector := range []string{"main", "article", "div.content", "div#content"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return normalizeWhitespace(sel.Text())
		}
	}
	return normalizeWhitespace(doc.Find("body").Text())
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// countInternalLinks counts anchors resolving to the page's own host.
// Relative links count; anchors and javascript pseudo-links don't.
func countInternalLinks(doc *goquery.Document, pageURL string) int {
	base, err := url.Parse(pageURL)
	if err != nil {
		return 0
	}

	count := 0
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		link, err := base.Parse(href)
		if err != nil {
			return
		}
		if link.Host == base.Host {
			count++
		}
	})
	return count
}
