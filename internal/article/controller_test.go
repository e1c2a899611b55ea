package article_test

import (
	"encoding/json"
	"errors"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/constants"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/markdown"
	"legal-roundtable/internal/middlewares"
	"legal-roundtable/internal/models"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newController(repo *mockRepository) *article.Controller {
	var core zapcore.Core

	return &article.Controller{
		Env: &environment.Env{
			Repository: repo,
			Logger:     &logging.DefaultLogger{Logger: zap.New(core).Sugar()},
		},
		Service:  newService(repo),
		Renderer: markdown.NewRenderer(),
		Site:     article.Site{BaseUrl: "https://lawtable.org", Name: "法律圓桌"},
	}
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	return c, w
}

func signIn(c *gin.Context, userId string) {
	c.Set(constants.ClaimsContextKey, &middlewares.Claims{UserId: userId, Email: userId + "@lawtable.org"})
}

func TestGetArticlePage(t *testing.T) {
	a := testArticle("a1", "author-1")
	a.Content = "# 真正的標題\n\n## 背景\n\n內容\n\n## 背景"
	ctrl := newController(&mockRepository{articles: map[string]models.Article{"a1": a}})

	c, w := newContext(http.MethodGet, "/articles/a1", "")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	ctrl.GetArticlePage(c)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var response struct {
		Data struct {
			Headline string                    `json:"headline"`
			HTML     string                    `json:"html"`
			Toc      []markdown.TocItem        `json:"toc"`
			Article  article.ArticleWithAuthor `json:"article"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}

	if response.Data.Headline != "真正的標題" {
		t.Errorf("got headline %q, want 真正的標題", response.Data.Headline)
	}
	if strings.Contains(response.Data.HTML, "<h1") {
		t.Error("first level-1 heading was rendered into the body")
	}

	wantToc := []markdown.TocItem{
		{ID: "背景", Text: "背景", Level: 2},
		{ID: "背景-1", Text: "背景", Level: 2},
	}
	if !cmp.Equal(wantToc, response.Data.Toc) {
		t.Error(cmp.Diff(wantToc, response.Data.Toc))
	}
	if response.Data.Article.Author == nil || response.Data.Article.Author.Name != "王律師" {
		t.Errorf("got author %v, want 王律師", response.Data.Article.Author)
	}
}

func TestGetArticlePage_NotFound(t *testing.T) {
	ctrl := newController(&mockRepository{articles: map[string]models.Article{}})

	c, w := newContext(http.MethodGet, "/articles/missing", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	ctrl.GetArticlePage(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetArticlePage_StoreFailure(t *testing.T) {
	ctrl := newController(&mockRepository{findErr: errors.New("timeout")})

	c, w := newContext(http.MethodGet, "/articles/a1", "")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	ctrl.GetArticlePage(c)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("got status %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(w.Body.String(), "failed to fetch article") {
		t.Errorf("got body %s, want the operation message", w.Body.String())
	}
}

func TestListArticlesByCategory_Unknown(t *testing.T) {
	ctrl := newController(&mockRepository{})

	c, w := newContext(http.MethodGet, "/articles/category/gossip", "")
	c.Params = gin.Params{{Key: "category", Value: "gossip"}}

	ctrl.ListArticlesByCategory(c)

	if w.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestSubmitArticle_NotSignedIn(t *testing.T) {
	ctrl := newController(&mockRepository{})

	c, w := newContext(http.MethodPost, "/admin/articles", `{"data": {}}`)
	ctrl.SubmitArticle(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("got status %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestSubmitArticle(t *testing.T) {
	ctrl := newController(&mockRepository{})

	body := `{"data": {"title": "契約解除", "content": "## 要件\n\n內容", "category": "legal-outreach",
		"keywords": ["契約", "契約"], "qa": [{"question": "可以解除嗎？", "answer": "視情況而定"}], "readTime": 4}}`
	c, w := newContext(http.MethodPost, "/admin/articles", body)
	signIn(c, "author-1")

	ctrl.SubmitArticle(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var response struct {
		Data models.Article `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if response.Data.AuthorID != "author-1" {
		t.Errorf("got author %s, want the signed-in user", response.Data.AuthorID)
	}
	if response.Data.ReadTime != 4 {
		t.Errorf("got read time %d, want 4", response.Data.ReadTime)
	}
	if len(response.Data.QA) != 1 || response.Data.QA[0].Answer != "視情況而定" {
		t.Errorf("got qa %v", response.Data.QA)
	}
	if !cmp.Equal([]string{"契約"}, []string(response.Data.Keywords)) {
		t.Error(cmp.Diff([]string{"契約"}, []string(response.Data.Keywords)))
	}
}

func TestSubmitArticle_Invalid(t *testing.T) {
	ctrl := newController(&mockRepository{})

	c, w := newContext(http.MethodPost, "/admin/articles", `{"data": {"title": "", "content": "x", "category": "legal-outreach"}}`)
	signIn(c, "author-1")

	ctrl.SubmitArticle(c)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("got status %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(w.Body.String(), `"title"`) {
		t.Errorf("got body %s, want a title error", w.Body.String())
	}
}

func TestEditArticle_Forbidden(t *testing.T) {
	ctrl := newController(&mockRepository{articles: map[string]models.Article{"a1": testArticle("a1", "author-1")}})

	c, w := newContext(http.MethodPatch, "/admin/articles/a1", `{"data": {"title": "改"}}`)
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	signIn(c, "author-2")

	ctrl.EditArticle(c)

	if w.Code != http.StatusForbidden {
		t.Errorf("got status %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestRemoveArticle(t *testing.T) {
	repo := &mockRepository{articles: map[string]models.Article{"a1": testArticle("a1", "author-1")}}
	ctrl := newController(repo)

	c, w := newContext(http.MethodDelete, "/admin/articles/a1", "")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	signIn(c, "author-1")

	ctrl.RemoveArticle(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Errorf("got status %d, want %d", w.Code, http.StatusNoContent)
	}
	if len(repo.deletedIds) != 1 {
		t.Errorf("got %d deletions, want 1", len(repo.deletedIds))
	}
}

func TestPreviewMarkdown(t *testing.T) {
	ctrl := newController(&mockRepository{})

	c, w := newContext(http.MethodPost, "/admin/markdown/preview", `{"data": {"content": "# T\n\n## A"}}`)
	ctrl.PreviewMarkdown(c)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `id=\"a\"`) {
		t.Errorf("got body %s, want a heading anchor", w.Body.String())
	}
}

func TestActiveHeading(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"default offset", `{"data": {"scrollY": 150, "headings": [{"id": "a", "top": 0}, {"id": "b", "top": 240}, {"id": "c", "top": 900}]}}`, "b"},
		{"explicit offset", `{"data": {"scrollY": 150, "offset": 0, "headings": [{"id": "a", "top": 0}, {"id": "b", "top": 240}]}}`, "a"},
		{"above all headings", `{"data": {"scrollY": 0, "headings": [{"id": "a", "top": 400}]}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newController(&mockRepository{})

			c, w := newContext(http.MethodPost, "/articles/active-heading", tt.body)
			ctrl.ActiveHeading(c)

			if w.Code != http.StatusOK {
				t.Fatalf("got status %d, want %d: %s", w.Code, http.StatusOK, w.Body.String())
			}

			var response struct {
				Data struct {
					ID string `json:"id"`
				} `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				t.Fatalf("error decoding response: %v", err)
			}
			if response.Data.ID != tt.want {
				t.Errorf("got active heading %q, want %q", response.Data.ID, tt.want)
			}
		})
	}
}

func TestRecountViews(t *testing.T) {
	repo := &mockRepository{articles: map[string]models.Article{"a1": testArticle("a1", "author-1")}}
	ctrl := newController(repo)

	c, w := newContext(http.MethodPost, "/api/articles/a1/views", "")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}

	ctrl.RecountViews(c)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != `{"success":true}` {
		t.Errorf("got body %s", w.Body.String())
	}
	if !cmp.Equal([]string{"a1"}, repo.incremented) {
		t.Error(cmp.Diff([]string{"a1"}, repo.incremented))
	}
}

func TestRecountViews_Failures(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		repo     *mockRepository
		wantCode int
		wantBody string
	}{
		{
			name:     "missing id",
			id:       "",
			repo:     &mockRepository{},
			wantCode: http.StatusBadRequest,
			wantBody: `{"error":"Article ID is required"}`,
		},
		{
			name:     "store failure",
			id:       "a1",
			repo:     &mockRepository{incrementErr: errors.New("deadlock")},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"error":"Failed to increment views"}`,
		},
		{
			name:     "unknown article",
			id:       "missing",
			repo:     &mockRepository{articles: map[string]models.Article{}},
			wantCode: http.StatusNotFound,
			wantBody: `{"error":"Article not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := newController(tt.repo)
			c, w := newContext(http.MethodPost, "/api/articles/"+tt.id+"/views", "")
			c.Params = gin.Params{{Key: "id", Value: tt.id}}

			ctrl.RecountViews(c)

			if w.Code != tt.wantCode {
				t.Errorf("got status %d, want %d", w.Code, tt.wantCode)
			}
			if w.Body.String() != tt.wantBody {
				t.Errorf("got body %s, want %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}
