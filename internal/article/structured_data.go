package article

import (
	"fmt"
	"legal-roundtable/internal/models"
	"strings"
	"time"
)

const (
	schemaContext = "https://schema.org"
	siteLanguage  = "zh-TW"

	// breadcrumb labels of the home and blog pages
	homeLabel = "首頁"
	blogLabel = "法律專欄"
)

// Site describes the publisher of the articles.
type Site struct {
	BaseUrl string
	Name    string
}

// ArticleUrl returns the canonical page address of an article.
func (s Site) ArticleUrl(a models.Article) string {
	return fmt.Sprintf("%s/blog/%s/%s", s.BaseUrl, a.Category, a.ID)
}

// StructuredData builds the JSON-LD graph embedded in an article page: a breadcrumb trail,
// the article itself, the web page and, when the article has questions and answers, an FAQ page.
func StructuredData(site Site, a ArticleWithAuthor, headline string) map[string]any {
	articleUrl := site.ArticleUrl(a.Article)

	graph := []any{
		breadcrumbList(site, a.Article, headline),
		articleNode(site, a, headline, articleUrl),
		webPageNode(site, a.Article, headline, articleUrl),
	}
	if len(a.QA) > 0 {
		graph = append(graph, faqPageNode(a.QA))
	}

	return map[string]any{
		"@context": schemaContext,
		"@graph":   graph,
	}
}

func breadcrumbList(site Site, a models.Article, headline string) map[string]any {
	crumbs := []struct {
		name string
		item string
	}{
		{homeLabel, site.BaseUrl},
		{blogLabel, site.BaseUrl + "/blog"},
		{a.Category.Name(), fmt.Sprintf("%s/blog/%s", site.BaseUrl, a.Category)},
		{headline, ""},
	}

	elements := make([]any, 0, len(crumbs))
	for i, crumb := range crumbs {
		element := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     crumb.name,
		}
		if len(crumb.item) > 0 {
			element["item"] = crumb.item
		}
		elements = append(elements, element)
	}

	return map[string]any{
		"@type":           "BreadcrumbList",
		"itemListElement": elements,
	}
}

func articleNode(site Site, a ArticleWithAuthor, headline, articleUrl string) map[string]any {
	node := map[string]any{
		"@type":       "Article",
		"headline":    headline,
		"description": a.Excerpt,
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  site.Name,
			"url":   site.BaseUrl,
			"logo": map[string]any{
				"@type":  "ImageObject",
				"url":    site.BaseUrl + "/logo.png",
				"width":  180,
				"height": 60,
			},
		},
		"datePublished": a.CreatedAt.Format(time.RFC3339),
		"dateModified":  a.UpdatedAt.Format(time.RFC3339),
		"mainEntityOfPage": map[string]any{
			"@type": "WebPage",
			"@id":   articleUrl,
		},
		"articleSection":      a.Category.Name(),
		"keywords":            strings.Join(a.Keywords, ", "),
		"wordCount":           len(strings.Fields(a.Content)),
		"timeRequired":        fmt.Sprintf("PT%dM", a.ReadTime),
		"inLanguage":          siteLanguage,
		"isAccessibleForFree": true,
	}

	if len(a.Image) > 0 {
		node["image"] = imageObject(a.Image)
	}
	if a.Author != nil {
		node["author"] = map[string]any{
			"@type": "Person",
			"name":  a.Author.Name,
			"url":   site.BaseUrl,
		}
	}
	return node
}

func webPageNode(site Site, a models.Article, headline, articleUrl string) map[string]any {
	node := map[string]any{
		"@type":       "WebPage",
		"@id":         articleUrl,
		"url":         articleUrl,
		"name":        headline,
		"description": a.Excerpt,
		"isPartOf": map[string]any{
			"@type": "WebSite",
			"name":  site.Name,
			"url":   site.BaseUrl,
		},
		"inLanguage": siteLanguage,
	}
	if len(a.Image) > 0 {
		node["primaryImageOfPage"] = imageObject(a.Image)
	}
	return node
}

func faqPageNode(qa []models.QAItem) map[string]any {
	questions := make([]any, 0, len(qa))
	for _, item := range qa {
		questions = append(questions, map[string]any{
			"@type": "Question",
			"name":  item.Question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  item.Answer,
			},
		})
	}

	return map[string]any{
		"@type":      "FAQPage",
		"mainEntity": questions,
	}
}

func imageObject(url string) map[string]any {
	return map[string]any{
		"@type":  "ImageObject",
		"url":    url,
		"width":  1200,
		"height": 630,
	}
}
