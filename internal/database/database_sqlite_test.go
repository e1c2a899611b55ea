package database_test

import (
	"context"
	"fmt"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"legal-roundtable/internal/database"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/models"
	"moul.io/zapgorm2"
	"strings"
	"sync"
	"testing"
	"time"
)

// openSqlite returns a repository on a fresh in-memory database with all tables migrated.
func openSqlite(t *testing.T) *database.GormRepository {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: zapgorm2.New(zap.NewNop())})
	if err != nil {
		t.Fatalf("error opening sqlite: %v", err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		t.Fatalf("error getting sql.DB: %v", err)
	}
	// a single connection keeps the in-memory database alive and serializes writers
	sqlDb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDb.Close() })

	if err = database.Migrate(db, &logging.NullLogger{}); err != nil {
		t.Fatalf("error migrating: %v", err)
	}

	return &database.GormRepository{DB: db}
}

func TestSqlite_CreateAndFindArticle(t *testing.T) {
	repo := openSqlite(t)
	ctx := context.Background()

	submitted := models.Article{
		Title:    "定型化契約的審閱期間",
		Excerpt:  "消費者保護法的實務問題",
		Content:  "## 審閱期間\n\n至少三十日。",
		AuthorID: "author-1",
		Category: models.CategoryLegalOutreach,
		Keywords: datatypes.JSONSlice[string]{"消保法", "契約"},
		QA:       datatypes.JSONSlice[models.QAItem]{{Question: "審閱期間多久？", Answer: "依規定而定"}},
		Image:    "https://lawtable.org/images/contract.jpg",
		ReadTime: 4,
		Featured: true,
	}

	err := repo.CreateArticle(ctx, &submitted)
	if err != nil {
		t.Fatalf("CreateArticle error: %v", err)
	}
	if len(submitted.ID) == 0 {
		t.Fatal("want id to be assigned on create")
	}

	var got models.Article
	err = repo.FindArticleById(ctx, submitted.ID, &got)
	if err != nil {
		t.Fatalf("FindArticleById error: %v", err)
	}

	opts := cmpopts.IgnoreFields(models.Model{}, "CreatedAt", "UpdatedAt")
	if !cmp.Equal(submitted, got, opts) {
		t.Error(cmp.Diff(submitted, got, opts))
	}
	if got.Views != 0 {
		t.Errorf("got %d views, want 0", got.Views)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("want updated_at to be assigned by the store")
	}
}

func TestSqlite_UpdateArticleFields(t *testing.T) {
	repo := openSqlite(t)
	ctx := context.Background()

	a := models.Article{Title: "old", Content: "c", AuthorID: "author-1", Category: models.CategoryJudgmentAnalysis, ReadTime: 1}
	if err := repo.CreateArticle(ctx, &a); err != nil {
		t.Fatalf("CreateArticle error: %v", err)
	}

	var affected int64
	err := repo.UpdateArticleFields(ctx, a.ID, map[string]any{
		"title":    "new",
		"keywords": datatypes.JSONSlice[string]{"刑法"},
	}, &affected)
	if err != nil {
		t.Fatalf("UpdateArticleFields error: %v", err)
	}
	if affected != 1 {
		t.Errorf("got %d affected rows, want 1", affected)
	}

	var got models.Article
	if err = repo.FindArticleById(ctx, a.ID, &got); err != nil {
		t.Fatalf("FindArticleById error: %v", err)
	}
	if got.Title != "new" || got.Content != "c" {
		t.Errorf("unexpected article after update: %+v", got)
	}
	if !cmp.Equal([]string{"刑法"}, []string(got.Keywords)) {
		t.Error(cmp.Diff([]string{"刑法"}, []string(got.Keywords)))
	}

	err = repo.UpdateArticleFields(ctx, "missing", map[string]any{"title": "x"}, &affected)
	if err != nil {
		t.Fatalf("UpdateArticleFields error: %v", err)
	}
	if affected != 0 {
		t.Errorf("got %d affected rows for a missing article, want 0", affected)
	}
}

// backdate moves the last-updated time of an article into the past without touching anything else.
func backdate(t *testing.T, repo *database.GormRepository, id string, at time.Time) {
	t.Helper()

	err := repo.DB.Model(&models.Article{}).Where("id = ?", id).UpdateColumn("updated_at", at).Error
	if err != nil {
		t.Fatalf("error backdating article %s: %v", id, err)
	}
}

func TestSqlite_UpdateArticleFields_RefreshesUpdatedAt(t *testing.T) {
	repo := openSqlite(t)
	ctx := context.Background()

	older := models.Article{Title: "older", Content: "c", AuthorID: "author-1", Category: models.CategoryJudgmentAnalysis, ReadTime: 1}
	newer := models.Article{Title: "newer", Content: "c", AuthorID: "author-1", Category: models.CategoryJudgmentAnalysis, ReadTime: 1}
	for _, a := range []*models.Article{&older, &newer} {
		if err := repo.CreateArticle(ctx, a); err != nil {
			t.Fatalf("CreateArticle error: %v", err)
		}
	}
	past := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	backdate(t, repo, older.ID, past)
	backdate(t, repo, newer.ID, past.Add(time.Hour))

	var affected int64
	if err := repo.UpdateArticleFields(ctx, older.ID, map[string]any{"title": "edited"}, &affected); err != nil {
		t.Fatalf("UpdateArticleFields error: %v", err)
	}

	var got models.Article
	if err := repo.FindArticleById(ctx, older.ID, &got); err != nil {
		t.Fatalf("FindArticleById error: %v", err)
	}
	if !got.UpdatedAt.After(past.Add(time.Hour)) {
		t.Errorf("got updated_at %v, want it refreshed after %v", got.UpdatedAt, past)
	}

	var latest []models.Article
	if err := repo.FindLatestArticles(ctx, 2, &latest); err != nil {
		t.Fatalf("FindLatestArticles error: %v", err)
	}
	if len(latest) != 2 || latest[0].ID != older.ID {
		t.Errorf("want the edited article first in the latest articles, got %+v", latest)
	}
}

func TestSqlite_IncrementArticleViews_KeepsUpdatedAt(t *testing.T) {
	repo := openSqlite(t)
	ctx := context.Background()

	viewed := models.Article{Title: "viewed", Content: "c", AuthorID: "author-1", Category: models.CategoryJudgmentAnalysis, ReadTime: 1}
	edited := models.Article{Title: "edited", Content: "c", AuthorID: "author-1", Category: models.CategoryJudgmentAnalysis, ReadTime: 1}
	for _, a := range []*models.Article{&viewed, &edited} {
		if err := repo.CreateArticle(ctx, a); err != nil {
			t.Fatalf("CreateArticle error: %v", err)
		}
	}
	past := time.Now().Add(-48 * time.Hour).Truncate(time.Second)
	backdate(t, repo, viewed.ID, past)
	backdate(t, repo, edited.ID, past.Add(time.Hour))

	var affected int64
	if err := repo.IncrementArticleViews(ctx, viewed.ID, &affected); err != nil {
		t.Fatalf("IncrementArticleViews error: %v", err)
	}

	var got models.Article
	if err := repo.FindArticleById(ctx, viewed.ID, &got); err != nil {
		t.Fatalf("FindArticleById error: %v", err)
	}
	if got.Views != 1 {
		t.Errorf("got %d views, want 1", got.Views)
	}
	if !got.UpdatedAt.Equal(past) {
		t.Errorf("got updated_at %v, want it unchanged at %v", got.UpdatedAt, past)
	}

	var latest []models.Article
	if err := repo.FindLatestArticles(ctx, 2, &latest); err != nil {
		t.Fatalf("FindLatestArticles error: %v", err)
	}
	if len(latest) != 2 || latest[0].ID != edited.ID {
		t.Errorf("a view must not move an article up the latest articles, got %+v", latest)
	}
}

func TestSqlite_DeleteArticle(t *testing.T) {
	repo := openSqlite(t)
	ctx := context.Background()

	a := models.Article{Title: "t", Content: "c", AuthorID: "author-1", Category: models.CategoryJudgmentAnalysis, ReadTime: 1}
	if err := repo.CreateArticle(ctx, &a); err != nil {
		t.Fatalf("CreateArticle error: %v", err)
	}

	var affected int64
	if err := repo.DeleteArticle(ctx, a.ID, &affected); err != nil {
		t.Fatalf("DeleteArticle error: %v", err)
	}
	if affected != 1 {
		t.Errorf("got %d affected rows, want 1", affected)
	}

	var got models.Article
	err := repo.FindArticleById(ctx, a.ID, &got)
	if err != gorm.ErrRecordNotFound {
		t.Errorf("want gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestSqlite_IncrementArticleViewsConcurrently(t *testing.T) {
	repo := openSqlite(t)
	ctx := context.Background()

	a := models.Article{Title: "t", Content: "c", AuthorID: "author-1", Category: models.CategoryJudgmentAnalysis, ReadTime: 1}
	if err := repo.CreateArticle(ctx, &a); err != nil {
		t.Fatalf("CreateArticle error: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var affected int64
			errs <- repo.IncrementArticleViews(ctx, a.ID, &affected)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("IncrementArticleViews error: %v", err)
		}
	}

	var got models.Article
	if err := repo.FindArticleById(ctx, a.ID, &got); err != nil {
		t.Fatalf("FindArticleById error: %v", err)
	}
	if got.Views != n {
		t.Errorf("got %d views, want %d", got.Views, n)
	}
}

func TestSqlite_IncrementArticleViews_Missing(t *testing.T) {
	repo := openSqlite(t)

	var affected int64
	err := repo.IncrementArticleViews(context.Background(), "missing", &affected)
	if err != nil {
		t.Fatalf("IncrementArticleViews error: %v", err)
	}
	if affected != 0 {
		t.Errorf("got %d affected rows, want 0", affected)
	}
}

func TestSqlite_UpsertAuthor(t *testing.T) {
	repo := openSqlite(t)
	ctx := context.Background()

	author := models.Author{Model: models.Model{ID: "u1"}, Name: "王律師", Title: "執業律師"}
	if err := repo.UpsertAuthor(ctx, &author); err != nil {
		t.Fatalf("UpsertAuthor error: %v", err)
	}

	changed := models.Author{Model: models.Model{ID: "u1"}, Name: "王大明律師", Description: "專長民事訴訟"}
	if err := repo.UpsertAuthor(ctx, &changed); err != nil {
		t.Fatalf("UpsertAuthor error: %v", err)
	}

	var all []models.Author
	if err := repo.FindAllAuthors(ctx, &all); err != nil {
		t.Fatalf("FindAllAuthors error: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("got %d authors, want 1", len(all))
	}
	if all[0].Name != "王大明律師" || all[0].Title != "" || all[0].Description != "專長民事訴訟" {
		t.Errorf("unexpected author after upsert: %+v", all[0])
	}
}

func TestSqlite_UpsertUsers(t *testing.T) {
	repo := openSqlite(t)
	ctx := context.Background()

	err := repo.UpsertUsers(ctx, []models.User{{Model: models.Model{ID: "u1"}, Email: "editor@lawtable.org", Password: "hash-1"}})
	if err != nil {
		t.Fatalf("UpsertUsers error: %v", err)
	}
	err = repo.UpsertUsers(ctx, []models.User{{Model: models.Model{ID: "u2"}, Email: "editor@lawtable.org", Password: "hash-2"}})
	if err != nil {
		t.Fatalf("UpsertUsers error: %v", err)
	}

	var got models.User
	if err = repo.FindUserLoginCredentials(ctx, "editor@lawtable.org", &got); err != nil {
		t.Fatalf("FindUserLoginCredentials error: %v", err)
	}
	if got.ID != "u1" || got.Password != "hash-2" {
		t.Errorf("unexpected user after upsert: %+v", got)
	}
}
