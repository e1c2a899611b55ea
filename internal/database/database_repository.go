package database

import (
	"context"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"legal-roundtable/internal/models"
)

// Repository defines data access methods for articles, authors and the login credentials of users.
//
// Finders of a single record return gorm.ErrRecordNotFound when nothing matches.
// Mutations report the number of touched rows through rowsAffected.
type Repository interface {

	// FindArticleById fetches one article.
	//
	// Param id path string true "Article ID"
	FindArticleById(ctx context.Context, id string, article *models.Article) error

	// FindLatestArticles fetches the most recently updated articles.
	FindLatestArticles(ctx context.Context, limit int, articles *[]models.Article) error

	// FindFeaturedArticles fetches the most recently updated featured articles.
	FindFeaturedArticles(ctx context.Context, limit int, articles *[]models.Article) error

	// FindArticlesByCategory fetches the most recently updated articles of a category.
	FindArticlesByCategory(ctx context.Context, category models.Category, limit int, articles *[]models.Article) error

	// FindArticlesByAuthor fetches the most recently updated articles of an author.
	FindArticlesByAuthor(ctx context.Context, authorId string, limit int, articles *[]models.Article) error

	// FindArticleSitemapEntries fetches id, category and update time of every article.
	FindArticleSitemapEntries(ctx context.Context, articles *[]models.Article) error

	CreateArticle(ctx context.Context, article *models.Article) error

	// UpdateArticleFields merges fields (column name to value) into an article and refreshes updated_at.
	UpdateArticleFields(ctx context.Context, id string, fields map[string]any, rowsAffected *int64) error

	DeleteArticle(ctx context.Context, id string, rowsAffected *int64) error

	// IncrementArticleViews adds one to the view counter in a single statement.
	IncrementArticleViews(ctx context.Context, id string, rowsAffected *int64) error

	FindAuthorById(ctx context.Context, id string, author *models.Author) error

	FindAllAuthors(ctx context.Context, authors *[]models.Author) error

	// UpsertAuthor creates the author or updates its profile fields on an id conflict.
	UpsertAuthor(ctx context.Context, author *models.Author) error

	// FindUserLoginCredentials fetches the user record with the specified email.
	//
	// Param email path string true "Email"
	FindUserLoginCredentials(ctx context.Context, email string, user *models.User) error

	// UpsertUsers inserts users or updates their password hash on an email conflict.
	UpsertUsers(ctx context.Context, users []models.User) error
}

// NullRepository is a no-op implementation of the Repository interface.
// Useful for testing or default wiring when no database operations are required.
type NullRepository struct{}

func (n *NullRepository) FindArticleById(ctx context.Context, id string, article *models.Article) error {
	return nil
}

func (n *NullRepository) FindLatestArticles(ctx context.Context, limit int, articles *[]models.Article) error {
	return nil
}

func (n *NullRepository) FindFeaturedArticles(ctx context.Context, limit int, articles *[]models.Article) error {
	return nil
}

func (n *NullRepository) FindArticlesByCategory(ctx context.Context, category models.Category, limit int, articles *[]models.Article) error {
	return nil
}

func (n *NullRepository) FindArticlesByAuthor(ctx context.Context, authorId string, limit int, articles *[]models.Article) error {
	return nil
}

func (n *NullRepository) FindArticleSitemapEntries(ctx context.Context, articles *[]models.Article) error {
	return nil
}

func (n *NullRepository) CreateArticle(ctx context.Context, article *models.Article) error {
	return nil
}

func (n *NullRepository) UpdateArticleFields(ctx context.Context, id string, fields map[string]any, rowsAffected *int64) error {
	return nil
}

func (n *NullRepository) DeleteArticle(ctx context.Context, id string, rowsAffected *int64) error {
	return nil
}

func (n *NullRepository) IncrementArticleViews(ctx context.Context, id string, rowsAffected *int64) error {
	return nil
}

func (n *NullRepository) FindAuthorById(ctx context.Context, id string, author *models.Author) error {
	return nil
}

func (n *NullRepository) FindAllAuthors(ctx context.Context, authors *[]models.Author) error {
	return nil
}

func (n *NullRepository) UpsertAuthor(ctx context.Context, author *models.Author) error {
	return nil
}

func (n *NullRepository) FindUserLoginCredentials(ctx context.Context, email string, user *models.User) error {
	return nil
}

func (n *NullRepository) UpsertUsers(ctx context.Context, users []models.User) error {
	return nil
}

// ensure NullRepository implements Repository
var _ Repository = &NullRepository{}

// GormRepository provides a GORM-based implementation of the Repository interface.
type GormRepository struct {
	*gorm.DB
}

// ensure GormRepository implements Repository
var _ Repository = &GormRepository{}

func (g *GormRepository) FindArticleById(ctx context.Context, id string, article *models.Article) error {
	return g.DB.
		WithContext(ctx).
		Where("id = ?", id).
		Take(article).
		Error
}

func (g *GormRepository) FindLatestArticles(ctx context.Context, limit int, articles *[]models.Article) error {
	return g.DB.
		WithContext(ctx).
		Order("updated_at desc").
		Limit(limit).
		Find(articles).
		Error
}

func (g *GormRepository) FindFeaturedArticles(ctx context.Context, limit int, articles *[]models.Article) error {
	return g.DB.
		WithContext(ctx).
		Where("featured = ?", true).
		Order("updated_at desc").
		Limit(limit).
		Find(articles).
		Error
}

func (g *GormRepository) FindArticlesByCategory(ctx context.Context, category models.Category, limit int, articles *[]models.Article) error {
	return g.DB.
		WithContext(ctx).
		Where("category = ?", category).
		Order("updated_at desc").
		Limit(limit).
		Find(articles).
		Error
}

func (g *GormRepository) FindArticlesByAuthor(ctx context.Context, authorId string, limit int, articles *[]models.Article) error {
	return g.DB.
		WithContext(ctx).
		Where("author_id = ?", authorId).
		Order("updated_at desc").
		Limit(limit).
		Find(articles).
		Error
}

func (g *GormRepository) FindArticleSitemapEntries(ctx context.Context, articles *[]models.Article) error {
	return g.DB.
		WithContext(ctx).
		Select("id", "category", "updated_at").
		Order("updated_at desc").
		Find(articles).
		Error
}

func (g *GormRepository) CreateArticle(ctx context.Context, article *models.Article) error {
	return g.DB.
		WithContext(ctx).
		Create(article).
		Error
}

func (g *GormRepository) UpdateArticleFields(ctx context.Context, id string, fields map[string]any, rowsAffected *int64) error {
	result := g.DB.
		WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		Updates(fields)
	*rowsAffected = result.RowsAffected
	return result.Error
}

func (g *GormRepository) DeleteArticle(ctx context.Context, id string, rowsAffected *int64) error {
	result := g.DB.
		WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Article{})
	*rowsAffected = result.RowsAffected
	return result.Error
}

func (g *GormRepository) IncrementArticleViews(ctx context.Context, id string, rowsAffected *int64) error {
	// UpdateColumn leaves updated_at untouched; a view is not an edit
	result := g.DB.
		WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	*rowsAffected = result.RowsAffected
	return result.Error
}

func (g *GormRepository) FindAuthorById(ctx context.Context, id string, author *models.Author) error {
	return g.DB.
		WithContext(ctx).
		Where("id = ?", id).
		Take(author).
		Error
}

func (g *GormRepository) FindAllAuthors(ctx context.Context, authors *[]models.Author) error {
	return g.DB.
		WithContext(ctx).
		Order("name").
		Find(authors).
		Error
}

func (g *GormRepository) UpsertAuthor(ctx context.Context, author *models.Author) error {
	return g.DB.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "title", "description", "avatar", "updated_at"}),
		}).
		Create(author).
		Error
}

func (g *GormRepository) FindUserLoginCredentials(ctx context.Context, email string, user *models.User) error {
	return g.DB.
		WithContext(ctx).
		Model(models.User{}).
		Where("email = ?", email).
		Take(user).
		Error
}

func (g *GormRepository) UpsertUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	return g.DB.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			// keep the id of an existing account, only its password hash is replaced
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"password", "updated_at"}),
		}).
		Create(&users).
		Error
}
