package constants

// keys of the controller registry built in main
const (
	Article = iota
	Author
	Auth
	ViewTracker
	Sitemap
)

const (
	// SessionFlagPrefix prefixes the per-article "already counted" flag in a view session
	SessionFlagPrefix = "article_viewed_"

	// ClaimsContextKey is the gin context key holding the validated JWT claims
	ClaimsContextKey = "claims"

	SitemapFileName = "sitemap.xml"
)
