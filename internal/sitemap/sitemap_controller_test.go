package sitemap_test

import (
	"errors"
	"github.com/gin-gonic/gin"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/sitemap"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func serve(handler gin.HandlerFunc, method string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/api/sitemap", nil)
	handler(c)
	return w
}

func TestGetSitemap(t *testing.T) {
	ctrl := &sitemap.Controller{Env: environment.Null(), Generator: newGenerator(t, &mockArticles{})}

	w := serve(ctrl.GetSitemap, http.MethodGet)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "application/xml" {
		t.Errorf("got content type %s, want application/xml", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache" {
		t.Errorf("got cache control %s, want no-cache", got)
	}
	if !strings.Contains(w.Body.String(), "<loc>https://lawtable.org/blog</loc>") {
		t.Errorf("got body %s", w.Body.String())
	}
}

func TestPostSitemap(t *testing.T) {
	ctrl := &sitemap.Controller{Env: environment.Null(), Generator: newGenerator(t, &mockArticles{})}

	w := serve(ctrl.PostSitemap, http.MethodPost)

	want := `{"message":"Sitemap generated successfully","success":true}`
	if w.Code != http.StatusOK || w.Body.String() != want {
		t.Errorf("got %d %s, want 200 %s", w.Code, w.Body.String(), want)
	}
}

func TestSitemap_Failure(t *testing.T) {
	ctrl := &sitemap.Controller{
		Env:       environment.Null(),
		Generator: newGenerator(t, &mockArticles{err: errors.New("timeout")}),
	}

	for _, handler := range []gin.HandlerFunc{ctrl.GetSitemap, ctrl.PostSitemap} {
		w := serve(handler, http.MethodGet)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("got status %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if w.Body.String() != `{"error":"Failed to generate sitemap"}` {
			t.Errorf("got body %s", w.Body.String())
		}
	}
}

func TestGetRobots(t *testing.T) {
	ctrl := &sitemap.Controller{Env: environment.Null(), Generator: newGenerator(t, &mockArticles{})}

	w := serve(ctrl.GetRobots, http.MethodGet)

	if !strings.Contains(w.Body.String(), "Sitemap: https://lawtable.org/sitemap.xml") {
		t.Errorf("got body %s", w.Body.String())
	}
}
