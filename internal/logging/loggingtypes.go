package logging

const (
	TypeInitialization = "initialization"
	TypeIntervalTask   = "intervaltask"
	TypeArticle        = "article"
	TypeAuthor         = "author"
	TypeAuth           = "auth"
	TypeViewTracking   = "viewtracking"
	TypeSitemap        = "sitemap"
)

// GetLogType creates a key/value slice which can be passed to the Log* functions.
// It takes up to 3 arguments: subType, contextId1 (e.g. an article id) and correlationId.
// Empty values and anything beyond the third argument are ignored.
func GetLogType(logType ...string) []any {
	keys := []string{"subType", "contextId1", "correlationId"}

	keyVal := make([]any, 0, 2*len(keys))
	for i, v := range logType {
		if i >= len(keys) {
			break
		}
		if len(v) == 0 {
			continue
		}
		keyVal = append(keyVal, keys[i], v)
	}
	return keyVal
}

func GetLogTypeInitialization() []any {
	return GetLogType(TypeInitialization)
}

func GetLogTypeIntervalTask(taskName string) []any {
	return GetLogType(TypeIntervalTask, taskName)
}

func GetLogTypeArticle(articleId string) []any {
	return GetLogType(TypeArticle, articleId)
}
