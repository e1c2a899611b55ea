package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"legal-roundtable/internal/config"
	"legal-roundtable/internal/constants"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/models"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const (
	xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

	categoryPriority   = 0.7
	categoryChangeFreq = "weekly"
	authorPriority     = 0.7
	authorChangeFreq   = "monthly"
	postPriority       = 0.6
	postChangeFreq     = "monthly"
)

// ArticleSource lists all articles with at least id, category and update time set.
type ArticleSource interface {
	ListSitemapEntries(ctx context.Context) ([]models.Article, error)
}

// AuthorSource lists all authors.
type AuthorSource interface {
	ListAuthors(ctx context.Context) ([]models.Author, error)
}

type Url struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	Urls    []Url    `xml:"url"`
}

// Generator builds the sitemap of the site and keeps a copy in the public directory.
type Generator struct {
	*environment.Env
	Articles     ArticleSource
	Authors      AuthorSource
	BaseUrl      string
	StaticRoutes []config.StaticRoute
	PublicDir    string
	Now          func() time.Time

	// serializes writes of the sitemap file
	mu sync.Mutex
}

// Path is the location of the generated file.
func (g *Generator) Path() string {
	return filepath.Join(g.PublicDir, constants.SitemapFileName)
}

// Urls lists the static routes, one route per category, author and article.
func (g *Generator) Urls(ctx context.Context) ([]Url, error) {
	now := g.now().UTC().Format(time.RFC3339)

	urls := make([]Url, 0, len(g.StaticRoutes))
	for _, route := range g.StaticRoutes {
		urls = append(urls, Url{
			Loc:        g.BaseUrl + route.Path,
			LastMod:    now,
			ChangeFreq: route.ChangeFreq,
			Priority:   formatPriority(route.Priority),
		})
	}

	for _, category := range models.Categories() {
		urls = append(urls, Url{
			Loc:        fmt.Sprintf("%s/blog/%s", g.BaseUrl, category.Slug),
			LastMod:    now,
			ChangeFreq: categoryChangeFreq,
			Priority:   formatPriority(categoryPriority),
		})
	}

	if g.Authors != nil {
		authors, err := g.Authors.ListAuthors(ctx)
		if err != nil {
			return nil, err
		}
		for _, author := range authors {
			urls = append(urls, Url{
				Loc:        fmt.Sprintf("%s/author/%s", g.BaseUrl, author.ID),
				LastMod:    author.UpdatedAt.UTC().Format(time.RFC3339),
				ChangeFreq: authorChangeFreq,
				Priority:   formatPriority(authorPriority),
			})
		}
	}

	articles, err := g.Articles.ListSitemapEntries(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range articles {
		urls = append(urls, Url{
			Loc:        fmt.Sprintf("%s/blog/%s/%s", g.BaseUrl, a.Category, a.ID),
			LastMod:    a.UpdatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: postChangeFreq,
			Priority:   formatPriority(postPriority),
		})
	}

	return urls, nil
}

// Generate builds the sitemap XML and writes it to the public directory. A failed write is
// logged and the XML is returned anyway; a failed article or author lookup fails the generation
// and leaves the previous file in place.
func (g *Generator) Generate(ctx context.Context) ([]byte, error) {
	urls, err := g.Urls(ctx)
	if err != nil {
		g.LogError(logging.GetLogType(logging.TypeSitemap), err)
		return nil, err
	}

	out, err := Encode(urls)
	if err != nil {
		return nil, err
	}

	if err = g.write(out); err != nil {
		g.LogErrorf(logging.GetLogType(logging.TypeSitemap), "error writing %s: %v", g.Path(), err)
	} else {
		g.LogInfof(logging.GetLogType(logging.TypeSitemap), "sitemap with %d urls written to %s", len(urls), g.Path())
	}
	return out, nil
}

// Encode renders urls as a sitemap document.
func Encode(urls []Url) ([]byte, error) {
	body, err := xml.MarshalIndent(urlSet{Xmlns: xmlns, Urls: urls}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// write replaces the sitemap file atomically, so readers never see a partial file.
func (g *Generator) write(content []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(g.PublicDir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(g.PublicDir, constants.SitemapFileName+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), g.Path())
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

func formatPriority(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
