package article

import (
	"context"
	"errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/models"
)

const (
	DefaultLatestLimit   = 20
	DefaultFeaturedLimit = 5
	DefaultCategoryLimit = 20
	DefaultAuthorLimit   = 20
	MaxLimit             = 100

	// related articles shown below an article
	RelatedCount = 2
)

// AuthorLookup resolves author profiles for a set of author ids.
type AuthorLookup interface {
	GetAuthorsByIds(ctx context.Context, ids []string) (map[string]models.Author, error)
}

// ArticleWithAuthor is an article with its author profile; Author is nil when the profile is missing.
type ArticleWithAuthor struct {
	models.Article
	Author *models.Author `json:"author"`
}

// ArticleForm is the editable content of an article.
type ArticleForm struct {
	Title    string          `json:"title"`
	Excerpt  string          `json:"excerpt"`
	Content  string          `json:"content"`
	Category models.Category `json:"category"`
	Keywords []string        `json:"keywords"`
	QA       []models.QAItem `json:"qa"`
	Image    string          `json:"image"`
	ReadTime int             `json:"readTime"`
	Featured bool            `json:"featured"`
}

// ArticlePatch is a partial update; nil fields are left unchanged.
type ArticlePatch struct {
	Title    *string          `json:"title"`
	Excerpt  *string          `json:"excerpt"`
	Content  *string          `json:"content"`
	Category *models.Category `json:"category"`
	Keywords *[]string        `json:"keywords"`
	QA       *[]models.QAItem `json:"qa"`
	Image    *string          `json:"image"`
	ReadTime *int             `json:"readTime"`
	Featured *bool            `json:"featured"`
}

type Service struct {
	*environment.Env
	Authors AuthorLookup
}

// ClampLimit replaces a non-positive limit by def and caps it at MaxLimit.
func ClampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// GetArticle returns found=false, and no error, when there is no article with that id.
func (s *Service) GetArticle(ctx context.Context, id string) (models.Article, bool, error) {
	var article models.Article
	err := s.FindArticleById(ctx, id, &article)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Article{}, false, nil
	}
	if err != nil {
		s.LogError(logging.GetLogTypeArticle(id), err)
		return models.Article{}, false, operationError(OpFetchArticle, err)
	}
	return article, true, nil
}

func (s *Service) GetArticleWithAuthor(ctx context.Context, id string) (ArticleWithAuthor, bool, error) {
	article, found, err := s.GetArticle(ctx, id)
	if err != nil || !found {
		return ArticleWithAuthor{}, found, err
	}

	withAuthors, err := s.AttachAuthors(ctx, []models.Article{article})
	if err != nil {
		return ArticleWithAuthor{}, false, err
	}
	return withAuthors[0], true, nil
}

func (s *Service) ListLatest(ctx context.Context, limit int) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	if err := s.FindLatestArticles(ctx, ClampLimit(limit, DefaultLatestLimit), &articles); err != nil {
		s.LogError(logging.GetLogType(logging.TypeArticle), err)
		return nil, operationError(OpFetchLatest, err)
	}
	return articles, nil
}

func (s *Service) ListFeatured(ctx context.Context, limit int) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	if err := s.FindFeaturedArticles(ctx, ClampLimit(limit, DefaultFeaturedLimit), &articles); err != nil {
		s.LogError(logging.GetLogType(logging.TypeArticle), err)
		return nil, operationError(OpFetchFeatured, err)
	}
	return articles, nil
}

func (s *Service) ListByCategory(ctx context.Context, category models.Category, limit int) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	if err := s.FindArticlesByCategory(ctx, category, ClampLimit(limit, DefaultCategoryLimit), &articles); err != nil {
		s.LogError(logging.GetLogType(logging.TypeArticle, string(category)), err)
		return nil, operationError(OpFetchByCategory, err)
	}
	return articles, nil
}

func (s *Service) ListByAuthor(ctx context.Context, authorId string, limit int) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	if err := s.FindArticlesByAuthor(ctx, authorId, ClampLimit(limit, DefaultAuthorLimit), &articles); err != nil {
		s.LogError(logging.GetLogType(logging.TypeArticle, authorId), err)
		return nil, operationError(OpFetchByAuthor, err)
	}
	return articles, nil
}

// ListSitemapEntries returns every article with only id, category and update time set.
func (s *Service) ListSitemapEntries(ctx context.Context) ([]models.Article, error) {
	articles := make([]models.Article, 0)
	if err := s.FindArticleSitemapEntries(ctx, &articles); err != nil {
		s.LogError(logging.GetLogType(logging.TypeSitemap), err)
		return nil, operationError(OpFetchSitemapEntries, err)
	}
	return articles, nil
}

// AttachAuthors pairs every article with its author, fetching each distinct author once.
func (s *Service) AttachAuthors(ctx context.Context, articles []models.Article) ([]ArticleWithAuthor, error) {
	out := make([]ArticleWithAuthor, 0, len(articles))
	if len(articles) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.AuthorID)
	}

	authors, err := s.Authors.GetAuthorsByIds(ctx, ids)
	if err != nil {
		s.LogError(logging.GetLogType(logging.TypeArticle), err)
		return nil, operationError(OpFetchAuthors, err)
	}

	for _, a := range articles {
		withAuthor := ArticleWithAuthor{Article: a}
		if author, ok := authors[a.AuthorID]; ok {
			withAuthor.Author = &author
		} else {
			s.LogWarnf(logging.GetLogTypeArticle(a.ID), "author %s not found", a.AuthorID)
		}
		out = append(out, withAuthor)
	}
	return out, nil
}

// RelatedArticles prefers other articles of the same author and tops them up with the latest articles.
func (s *Service) RelatedArticles(ctx context.Context, article models.Article, count int) ([]ArticleWithAuthor, error) {
	related := make([]models.Article, 0, count)
	taken := map[string]struct{}{article.ID: {}}

	collect := func(candidates []models.Article) {
		for _, c := range candidates {
			if len(related) >= count {
				return
			}
			if _, ok := taken[c.ID]; ok {
				continue
			}
			taken[c.ID] = struct{}{}
			related = append(related, c)
		}
	}

	if len(article.AuthorID) > 0 {
		sameAuthor, err := s.ListByAuthor(ctx, article.AuthorID, count+1)
		if err != nil {
			return nil, err
		}
		collect(sameAuthor)
	}

	if len(related) < count {
		latest, err := s.ListLatest(ctx, count+3)
		if err != nil {
			return nil, err
		}
		collect(latest)
	}

	return s.AttachAuthors(ctx, related)
}

// Create stores a new article owned by authorId.
func (s *Service) Create(ctx context.Context, authorId string, form ArticleForm) (models.Article, error) {
	article := models.Article{
		Title:    form.Title,
		Excerpt:  form.Excerpt,
		Content:  form.Content,
		AuthorID: authorId,
		Category: form.Category,
		Keywords: form.Keywords,
		QA:       form.QA,
		Image:    form.Image,
		ReadTime: form.ReadTime,
		Featured: form.Featured,
	}
	article.Prepare()

	if err := article.Validate(); err != nil {
		return models.Article{}, err
	}

	if err := s.CreateArticle(ctx, &article); err != nil {
		s.LogError(logging.GetLogType(logging.TypeArticle, "", authorId), err)
		return models.Article{}, operationError(OpCreateArticle, err)
	}

	s.LogInfof(logging.GetLogTypeArticle(article.ID), "article created by %s", authorId)
	return article, nil
}

// Update merges patch into the article of callerId. The merged article has to pass validation;
// only the fields present in patch are written.
func (s *Service) Update(ctx context.Context, callerId, id string, patch ArticlePatch) (models.Article, error) {
	existing, err := s.owned(ctx, callerId, id, OpUpdateArticle)
	if err != nil {
		return models.Article{}, err
	}

	merged, fields := applyPatch(existing, patch)
	if err = merged.Validate(); err != nil {
		return models.Article{}, err
	}
	if len(fields) == 0 {
		return existing, nil
	}

	var affected int64
	if err = s.UpdateArticleFields(ctx, id, fields, &affected); err != nil {
		s.LogError(logging.GetLogTypeArticle(id), err)
		return models.Article{}, operationError(OpUpdateArticle, err)
	}
	if affected == 0 {
		return models.Article{}, ErrNotFound
	}

	updated, found, err := s.GetArticle(ctx, id)
	if err != nil {
		return models.Article{}, err
	}
	if !found {
		return models.Article{}, ErrNotFound
	}
	return updated, nil
}

// Delete removes the article of callerId.
func (s *Service) Delete(ctx context.Context, callerId, id string) error {
	if _, err := s.owned(ctx, callerId, id, OpDeleteArticle); err != nil {
		return err
	}

	var affected int64
	if err := s.DeleteArticle(ctx, id, &affected); err != nil {
		s.LogError(logging.GetLogTypeArticle(id), err)
		return operationError(OpDeleteArticle, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.LogInfof(logging.GetLogTypeArticle(id), "article deleted by %s", callerId)
	return nil
}

// IncrementViews adds one view in a single store statement, so concurrent readers never lose an update.
func (s *Service) IncrementViews(ctx context.Context, id string) error {
	var affected int64
	if err := s.IncrementArticleViews(ctx, id, &affected); err != nil {
		s.LogError(logging.GetLogTypeArticle(id), err)
		return operationError(OpIncrementArticleViews, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// owned fetches an article and checks that callerId is its author.
func (s *Service) owned(ctx context.Context, callerId, id, op string) (models.Article, error) {
	var existing models.Article
	err := s.FindArticleById(ctx, id, &existing)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Article{}, ErrNotFound
	}
	if err != nil {
		s.LogError(logging.GetLogTypeArticle(id), err)
		return models.Article{}, operationError(op, err)
	}

	if existing.AuthorID != callerId {
		s.LogWarnf(logging.GetLogTypeArticle(id), "%s refused: %s is not the author", op, callerId)
		return models.Article{}, ErrForbidden
	}
	return existing, nil
}

// applyPatch returns the merged article and the column values to write.
func applyPatch(existing models.Article, patch ArticlePatch) (models.Article, map[string]any) {
	merged := existing
	fields := make(map[string]any)

	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Excerpt != nil {
		merged.Excerpt = *patch.Excerpt
	}
	if patch.Content != nil {
		merged.Content = *patch.Content
	}
	if patch.Category != nil {
		merged.Category = *patch.Category
	}
	if patch.Keywords != nil {
		merged.Keywords = *patch.Keywords
	}
	if patch.QA != nil {
		merged.QA = *patch.QA
	}
	if patch.Image != nil {
		merged.Image = *patch.Image
	}
	if patch.ReadTime != nil {
		merged.ReadTime = *patch.ReadTime
	}
	if patch.Featured != nil {
		merged.Featured = *patch.Featured
	}
	merged.Prepare()

	if patch.Title != nil {
		fields["title"] = merged.Title
	}
	if patch.Excerpt != nil {
		fields["excerpt"] = merged.Excerpt
	}
	if patch.Content != nil {
		fields["content"] = merged.Content
	}
	if patch.Category != nil {
		fields["category"] = merged.Category
	}
	if patch.Keywords != nil {
		fields["keywords"] = datatypes.JSONSlice[string](merged.Keywords)
	}
	if patch.QA != nil {
		fields["qa"] = datatypes.JSONSlice[models.QAItem](merged.QA)
	}
	if patch.Image != nil {
		fields["image"] = merged.Image
	}
	if patch.ReadTime != nil {
		fields["read_time"] = merged.ReadTime
	}
	if patch.Featured != nil {
		fields["featured"] = merged.Featured
	}

	return merged, fields
}
