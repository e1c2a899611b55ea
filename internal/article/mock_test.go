package article_test

import (
	"context"
	"gorm.io/gorm"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/database"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/models"
)

type mockRepository struct {
	database.NullRepository

	articles map[string]models.Article
	latest   []models.Article
	byAuthor []models.Article

	findErr      error
	listErr      error
	incrementErr error

	gotLimit      int
	updatedFields map[string]any
	deletedIds    []string
	incremented   []string
}

func (m *mockRepository) FindArticleById(ctx context.Context, id string, a *models.Article) error {
	if m.findErr != nil {
		return m.findErr
	}
	found, ok := m.articles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	*a = found
	return nil
}

func (m *mockRepository) FindLatestArticles(ctx context.Context, limit int, articles *[]models.Article) error {
	m.gotLimit = limit
	if m.listErr != nil {
		return m.listErr
	}
	*articles = append(*articles, m.latest...)
	return nil
}

func (m *mockRepository) FindFeaturedArticles(ctx context.Context, limit int, articles *[]models.Article) error {
	m.gotLimit = limit
	return m.listErr
}

func (m *mockRepository) FindArticlesByAuthor(ctx context.Context, authorId string, limit int, articles *[]models.Article) error {
	if m.listErr != nil {
		return m.listErr
	}
	*articles = append(*articles, m.byAuthor...)
	return nil
}

func (m *mockRepository) CreateArticle(ctx context.Context, a *models.Article) error {
	if len(a.ID) == 0 {
		a.ID = "created"
	}
	return nil
}

func (m *mockRepository) UpdateArticleFields(ctx context.Context, id string, fields map[string]any, rowsAffected *int64) error {
	m.updatedFields = fields
	stored, ok := m.articles[id]
	if !ok {
		return nil
	}
	if title, ok := fields["title"].(string); ok {
		stored.Title = title
	}
	m.articles[id] = stored
	*rowsAffected = 1
	return nil
}

func (m *mockRepository) DeleteArticle(ctx context.Context, id string, rowsAffected *int64) error {
	if _, ok := m.articles[id]; !ok {
		return nil
	}
	m.deletedIds = append(m.deletedIds, id)
	*rowsAffected = 1
	return nil
}

func (m *mockRepository) IncrementArticleViews(ctx context.Context, id string, rowsAffected *int64) error {
	if m.incrementErr != nil {
		return m.incrementErr
	}
	if _, ok := m.articles[id]; !ok {
		return nil
	}
	m.incremented = append(m.incremented, id)
	*rowsAffected = 1
	return nil
}

type mockAuthors struct {
	authors map[string]models.Author
	err     error
}

func (m *mockAuthors) GetAuthorsByIds(ctx context.Context, ids []string) (map[string]models.Author, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(map[string]models.Author)
	for _, id := range ids {
		if a, ok := m.authors[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func newService(repo *mockRepository) *article.Service {
	return &article.Service{
		Env: environment.Environment(repo, nil),
		Authors: &mockAuthors{authors: map[string]models.Author{
			"author-1": {Model: models.Model{ID: "author-1"}, Name: "王律師"},
		}},
	}
}

func testArticle(id, authorId string) models.Article {
	return models.Article{
		Model:    models.Model{ID: id},
		Title:    "標題 " + id,
		Excerpt:  "摘要",
		Content:  "# 標題\n\n## 一\n\n內容",
		AuthorID: authorId,
		Category: models.CategoryLegalOutreach,
		ReadTime: 3,
	}
}
