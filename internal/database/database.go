package database

import (
	"fmt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"legal-roundtable/internal/config"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/models"
	"net/url"
)

const defaultSqlitePath = "legal-roundtable.db"

func InitDatabase(c *config.Configuration, l logging.Logger) (*gorm.DB, error) {
	l.LogInfof(logging.GetLogTypeInitialization(), "Initializing Database (driver: %s)", c.Database.Driver)

	dialector, err := openDialector(c)
	if err != nil {
		l.LogErrorf(logging.GetLogTypeInitialization(), "error initializing database: %v", err)
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logging.InitGormLogger(c)})
	if err != nil {
		l.LogErrorf(logging.GetLogTypeInitialization(), "error initializing database: %v", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		l.LogErrorf(logging.GetLogTypeInitialization(), "error setting connection properties on db conn pool")
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.Database.ConnMaxLifetime.Duration)

	l.LogDebug(logging.GetLogTypeInitialization(), "connected to Database")

	err = Migrate(db, l)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func openDialector(c *config.Configuration) (gorm.Dialector, error) {
	switch c.Database.Driver {
	case "postgres":
		dsn := url.URL{
			User:     url.UserPassword(c.Database.Username, c.Database.Password),
			Scheme:   "postgres",
			Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
			Path:     c.Database.DatabaseName,
			RawQuery: (&url.Values{"sslmode": []string{"disable"}}).Encode(),
		}
		return postgres.Open(dsn.String()), nil
	case "sqlite":
		path := c.Database.SqlitePath
		if len(path) == 0 {
			path = defaultSqlitePath
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

// Migrate creates or updates the tables of all persisted models.
func Migrate(db *gorm.DB, l logging.Logger) error {
	migrations := []struct {
		name  string
		model any
	}{
		{name: "models.User", model: &models.User{}},
		{name: "models.Author", model: &models.Author{}},
		{name: "models.Article", model: &models.Article{}},
	}

	for _, m := range migrations {
		if err := db.AutoMigrate(m.model); err != nil {
			l.LogErrorf(logging.GetLogTypeInitialization(), "error auto migrating %s: %v", m.name, err)
			return err
		}
	}

	return nil
}
