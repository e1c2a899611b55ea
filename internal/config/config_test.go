package config_test

import (
	"github.com/google/go-cmp/cmp"
	"legal-roundtable/internal/config"
	"strings"
	"testing"
	"time"
)

func TestParseEmailList(t *testing.T) {
	got := config.ParseEmailList(" a@lawtable.org, ,b@lawtable.org,")
	want := []string{"a@lawtable.org", "b@lawtable.org"}

	if !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
}

func TestParseEmailList_Empty(t *testing.T) {
	got := config.ParseEmailList("")
	if len(got) != 0 {
		t.Errorf("got %v, want empty list", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "editor@lawtable.org")
	t.Setenv("SIGNING_KEY", "")

	c, err := config.Load(strings.NewReader(`{"ListeningPort": "8080", "Site": {"BaseUrl": "https://lawtable.org/"}}`))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if c.ListeningPort != "8080" {
		t.Errorf("got port %s, want 8080", c.ListeningPort)
	}
	if c.Database.Driver != "postgres" {
		t.Errorf("got driver %s, want postgres", c.Database.Driver)
	}
	if c.ViewTracking.MinReadTime != 10 {
		t.Errorf("got min read time %d, want 10", c.ViewTracking.MinReadTime)
	}
	if c.ViewTracking.SessionTtl.Duration != 30*time.Minute {
		t.Errorf("got session ttl %v, want 30m", c.ViewTracking.SessionTtl.Duration)
	}
	if !cmp.Equal([]string{"editor@lawtable.org"}, c.Admin.Emails) {
		t.Error(cmp.Diff([]string{"editor@lawtable.org"}, c.Admin.Emails))
	}
	if len(c.Site.StaticRoutes) != 3 {
		t.Errorf("got %d static routes, want 3", len(c.Site.StaticRoutes))
	}

	config.Set(c)
	if config.BaseUrl() != "https://lawtable.org" {
		t.Errorf("got base url %s, want https://lawtable.org", config.BaseUrl())
	}
	if config.MinReadTime() != 10*time.Second {
		t.Errorf("got %v, want 10s", config.MinReadTime())
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := config.Load(strings.NewReader(`{"Auth": {"TokenLifetime": "twelve hours"}}`))
	if err == nil {
		t.Fatal("want error for an invalid duration")
	}
}
