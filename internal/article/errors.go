package article

import "errors"

var (
	ErrNotFound  = errors.New("article not found")
	ErrForbidden = errors.New("article belongs to another author")
)

// operations reported by OperationError
const (
	OpFetchArticle          = "fetch article"
	OpFetchLatest           = "fetch latest articles"
	OpFetchFeatured         = "fetch featured articles"
	OpFetchByCategory       = "fetch articles by category"
	OpFetchByAuthor         = "fetch articles by author"
	OpFetchSitemapEntries   = "fetch sitemap entries"
	OpFetchAuthors          = "fetch authors"
	OpCreateArticle         = "create article"
	OpUpdateArticle         = "update article"
	OpDeleteArticle         = "delete article"
	OpIncrementArticleViews = "increment views"
)

// OperationError hides a store failure behind a fixed message per operation.
// The store error stays reachable through errors.Unwrap for logging.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return "failed to " + e.Op
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func operationError(op string, err error) error {
	return &OperationError{Op: op, Err: err}
}
