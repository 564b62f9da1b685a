package advisor

import (
	"fmt"
	"strings"

	"searchlens/internal/content"
	"searchlens/internal/insights"
)

// maxTrendRows bounds how many query movements go into a summary prompt.
const maxTrendRows = 20

// BuildArticlePrompt describes a page and asks for keyword-targeted
// improvement advice.
func BuildArticlePrompt(keyword string, article *content.Article) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Review this page targeting the keyword %q and suggest concrete improvements.\n\n", keyword)
	fmt.Fprintf(&sb, "URL: %s\n", article.URL)
	fmt.Fprintf(&sb, "Title: %s\n", article.Title)
	fmt.Fprintf(&sb, "H1: %s\n", article.H1)
	if len(article.H2s) > 0 {
		fmt.Fprintf(&sb, "H2 headings: %s\n", strings.Join(article.H2s, " | "))
	}
	fmt.Fprintf(&sb, "Word count: %d\n\n", article.WordCount)
	fmt.Fprintf(&sb, "Content preview:\n%s\n\n", article.Preview)
	sb.WriteString("Cover: title and heading optimization, content gaps, and search intent fit. Give at most five recommendations.")
	return sb.String()
}

// BuildComparisonPrompt contrasts the page with the pages ranking for the
// keyword and asks what to change to compete.
func BuildComparisonPrompt(keyword string, article *content.Article, profiles []*content.CompetitorProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The page below targets the keyword %q. Compare it with the top-ranking pages and recommend changes.\n\n", keyword)
	fmt.Fprintf(&sb, "Our page: %s\nTitle: %s\nH1: %s\nWord count: %d\n", article.URL, article.Title, article.H1, article.WordCount)
	if len(article.H2s) > 0 {
		fmt.Fprintf(&sb, "H2 headings: %s\n", strings.Join(article.H2s, " | "))
	}

	sb.WriteString("\nTop-ranking pages:\n")
	for i, p := range profiles {
		fmt.Fprintf(&sb, "%d. %s\n   Title: %s\n   Word count: %d, images: %d, internal links: %d\n",
			i+1, p.URL, p.Title, p.WordCount, p.ImageCount, p.InternalLinks)
		if len(p.H2s) > 0 {
			fmt.Fprintf(&sb, "   H2 headings: %s\n", strings.Join(p.H2s, " | "))
		}
	}

	sb.WriteString("\nExplain where our page falls short of the competition in coverage, depth, and structure, then list the highest-impact changes.")
	return sb.String()
}

// BuildTrendsPrompt serializes significant query movements for narrative
// interpretation.
func BuildTrendsPrompt(siteURL string, rows []insights.TrendRow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Interpret the most significant search query changes for %s between two periods.\n\n", siteURL)

	if len(rows) == 0 {
		sb.WriteString("No query showed a significant change between the periods.\n")
	} else {
		limit := len(rows)
		if limit > maxTrendRows {
			limit = maxTrendRows
		}
		for _, row := range rows[:limit] {
			fmt.Fprintf(&sb, "- %q: clicks %d -> %d (%s), impressions %d -> %d, position %.1f -> %.1f\n",
				row.Query,
				row.ComparisonClicks, row.CurrentClicks, row.ChangeRate.String(),
				row.ComparisonImpressions, row.CurrentImpressions,
				row.ComparisonPosition, row.CurrentPosition)
		}
	}

	sb.WriteString("\nSummarize what is improving, what is declining, and the three actions worth taking next.")
	return sb.String()
}
