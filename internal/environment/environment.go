package environment

import (
	"legal-roundtable/internal/database"
	"legal-roundtable/internal/logging"
)

// Env bundles the article store and the logger.
// Services and controllers embed it to reach both through promoted methods.
type Env struct {
	database.Repository
	logging.Logger
}

// Environment constructs an Env; a nil repository or logger is replaced by its no-op implementation.
func Environment(repository database.Repository, logger logging.Logger) *Env {
	if repository == nil {
		repository = &database.NullRepository{}
	}

	if logger == nil {
		logger = &logging.NullLogger{}
	}

	return &Env{repository, logger}
}

// Null returns an Env that neither stores nor logs anything.
func Null() *Env {
	return Environment(nil, nil)
}
