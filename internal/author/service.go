package author

import (
	"context"
	"errors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"gorm.io/gorm"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/models"
	"legal-roundtable/internal/utils"
	"slices"
	"sync"
)

const (
	OpFetchAuthor   = "fetch author"
	OpFetchAuthors  = "fetch authors"
	OpSaveProfile   = "save profile"
	DefaultArticles = 20

	// parallel lookups of one batch
	batchConcurrency = 8
)

var ErrNotFound = errors.New("author not found")

// ArticlesByAuthor lists the latest articles of an author.
type ArticlesByAuthor interface {
	ListByAuthor(ctx context.Context, authorId string, limit int) ([]models.Article, error)
}

// ProfileForm is the editable part of an author profile.
type ProfileForm struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
}

type Service struct {
	*environment.Env
	*collate.Collator
	Articles ArticlesByAuthor

	// a Collator keeps internal buffers and must not sort concurrently
	collatorMu sync.Mutex
}

// ensure Service can resolve the authors of articles
var _ article.AuthorLookup = &Service{}

// authorsLister implements [collate.Lister] so authors can be sorted by name with
// the ordering rules of the site's language instead of by Unicode code point.
type authorsLister struct {
	authors []models.Author
}

func (l authorsLister) Len() int {
	return len(l.authors)
}

func (l authorsLister) Swap(i, j int) {
	l.authors[i], l.authors[j] = l.authors[j], l.authors[i]
}

func (l authorsLister) Bytes(i int) []byte {
	return []byte(l.authors[i].Name)
}

// GetAuthor returns found=false, and no error, for an unknown id.
func (s *Service) GetAuthor(ctx context.Context, id string) (models.Author, bool, error) {
	var author models.Author
	err := s.FindAuthorById(ctx, id, &author)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Author{}, false, nil
	}
	if err != nil {
		s.LogError(logging.GetLogType(logging.TypeAuthor, id), err)
		return models.Author{}, false, &article.OperationError{Op: OpFetchAuthor, Err: err}
	}
	return author, true, nil
}

// GetAuthorsByIds fetches every distinct id once, in parallel, and returns the authors keyed by id.
// Unknown ids are missing from the result.
func (s *Service) GetAuthorsByIds(ctx context.Context, ids []string) (map[string]models.Author, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if len(id) == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	// every goroutine writes its own slot
	found := make([]models.Author, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, id := range unique {
		g.Go(func() error {
			err := s.FindAuthorById(gctx, id, &found[i])
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found[i] = models.Author{}
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		s.LogError(logging.GetLogType(logging.TypeAuthor), err)
		return nil, &article.OperationError{Op: OpFetchAuthors, Err: err}
	}

	existing := slices.DeleteFunc(found, func(a models.Author) bool { return len(a.ID) == 0 })
	authors := utils.SliceToMap(existing, func(a models.Author) string { return a.ID })
	return authors, nil
}

// ListAuthors returns all authors ordered by name.
func (s *Service) ListAuthors(ctx context.Context) ([]models.Author, error) {
	authors := make([]models.Author, 0)
	if err := s.FindAllAuthors(ctx, &authors); err != nil {
		s.LogError(logging.GetLogType(logging.TypeAuthor), err)
		return nil, &article.OperationError{Op: OpFetchAuthors, Err: err}
	}

	if s.Collator != nil {
		s.collatorMu.Lock()
		s.Sort(authorsLister{authors: authors})
		s.collatorMu.Unlock()
	}
	return authors, nil
}

// SaveProfile creates or replaces the profile of callerId.
func (s *Service) SaveProfile(ctx context.Context, callerId string, form ProfileForm) (models.Author, error) {
	author := models.Author{
		Model:       models.Model{ID: callerId},
		Name:        form.Name,
		Title:       form.Title,
		Description: form.Description,
		Avatar:      form.Avatar,
	}
	author.Prepare()

	if err := author.Validate(); err != nil {
		return models.Author{}, err
	}

	if err := s.UpsertAuthor(ctx, &author); err != nil {
		s.LogError(logging.GetLogType(logging.TypeAuthor, callerId), err)
		return models.Author{}, &article.OperationError{Op: OpSaveProfile, Err: err}
	}

	s.LogInfo(logging.GetLogType(logging.TypeAuthor, callerId), "profile saved")
	return author, nil
}

// ArticlesOf returns the latest articles of an author.
func (s *Service) ArticlesOf(ctx context.Context, authorId string, limit int) ([]models.Article, error) {
	if limit <= 0 {
		limit = DefaultArticles
	}
	return s.Articles.ListByAuthor(ctx, authorId, limit)
}
