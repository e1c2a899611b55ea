package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"go.uber.org/zap/zapcore"
	"io"
	"net/url"
	"os"
	"strings"
	"time"
)

type JsonUrl struct {
	*url.URL
}

func (j *JsonUrl) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	configUrl, err := url.Parse(s)
	j.URL = configUrl
	return err
}

func (j *JsonUrl) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.URL.String())
}

type JsonDuration struct {
	time.Duration
}

func (j *JsonDuration) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	var duration time.Duration
	duration, err = time.ParseDuration(s)
	if err != nil {
		return err
	}
	j.Duration = duration
	return err
}

func (j *JsonDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Duration.String())
}

// StaticRoute is a sitemap entry that does not come from the article store.
type StaticRoute struct {
	Path       string
	Priority   float64
	ChangeFreq string
}

// SeedUser is an author account that is upserted on start-up.
// Password holds a bcrypt hash, never a clear text password.
type SeedUser struct {
	Id       string
	Email    string
	Password string
}

type Configuration struct {
	Logging struct {
		MaxSize         int
		MaxBackups      int
		MaxAge          int
		Level           zapcore.Level
		ConsoleLogLevel zapcore.Level
		File            string
		HttpAccessFile  string
		DbLogFile       string
	}
	ListeningPort    string
	ListeningAddress string
	Database         struct {
		// Driver is either "postgres" (default) or "sqlite"
		Driver          string
		Host            string
		Port            uint
		Username        string
		Password        string
		DatabaseName    string
		SqlitePath      string
		MaxIdleConns    int
		MaxOpenConns    int
		ConnMaxLifetime *JsonDuration
	}
	Auth struct {
		SigningKey    string
		TokenLifetime *JsonDuration
		Users         []SeedUser
	}
	Admin struct {
		Emails []string
	}
	Site struct {
		BaseUrl      *JsonUrl
		Name         string
		PublicDir    string
		StaticRoutes []StaticRoute
		// AllowedOrigins lists the origins allowed to call the API with credentials; empty allows any
		AllowedOrigins []string
	}
	ViewTracking struct {
		// MinReadTime is the dwell time in seconds before a view is counted
		MinReadTime int
		SessionTtl  *JsonDuration
		CookieName  string
	}
	Scheduler struct {
		SitemapSpec      string
		SessionPurgeSpec string
	}
}

var config *Configuration

func InitConfig() *Configuration {
	configFile := flag.String("config", "config.json", "Path to config file (json)")
	flag.Parse()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "\nUsage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		_, _ = fmt.Fprint(os.Stderr, "\n")
	}

	file, err := os.Open(*configFile)
	if err != nil {
		flag.Usage()
		panic("Error opening config file: " + err.Error())
	}
	defer file.Close()

	c, err := Load(file)
	if err != nil {
		flag.Usage()
		panic("Error parsing config file: " + err.Error())
	}

	config = c
	return config
}

// Load decodes a JSON configuration, applies environment overrides and fills in defaults.
func Load(r io.Reader) (*Configuration, error) {
	var c Configuration
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&c); err != nil {
		return nil, err
	}

	applyEnvironment(&c)
	applyDefaults(&c)

	return &c, nil
}

// Set replaces the package configuration; used by tests and tools that build a configuration in code.
func Set(c *Configuration) {
	config = c
}

func applyEnvironment(c *Configuration) {
	if emails, ok := os.LookupEnv("ADMIN_EMAILS"); ok {
		c.Admin.Emails = ParseEmailList(emails)
	}
	if key := os.Getenv("SIGNING_KEY"); len(key) > 0 {
		c.Auth.SigningKey = key
	}
}

func applyDefaults(c *Configuration) {
	if c.Logging.MaxSize <= 0 {
		c.Logging.MaxSize = 500
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge <= 0 {
		c.Logging.MaxAge = 28
	}

	if len(c.Database.Driver) == 0 {
		c.Database.Driver = "postgres"
	}
	if c.Database.ConnMaxLifetime == nil {
		c.Database.ConnMaxLifetime = &JsonDuration{Duration: time.Hour}
	}

	if c.Auth.TokenLifetime == nil || c.Auth.TokenLifetime.Duration <= 0 {
		c.Auth.TokenLifetime = &JsonDuration{Duration: 12 * time.Hour}
	}

	if c.Site.BaseUrl == nil || c.Site.BaseUrl.URL == nil {
		u, _ := url.Parse("http://localhost")
		c.Site.BaseUrl = &JsonUrl{URL: u}
	}
	if len(c.Site.Name) == 0 {
		c.Site.Name = "法律圓桌"
	}
	if len(c.Site.PublicDir) == 0 {
		c.Site.PublicDir = "public"
	}
	if len(c.Site.StaticRoutes) == 0 {
		c.Site.StaticRoutes = []StaticRoute{
			{Path: "", Priority: 1.0, ChangeFreq: "daily"},
			{Path: "/blog", Priority: 0.7, ChangeFreq: "monthly"},
			{Path: "/author", Priority: 0.7, ChangeFreq: "monthly"},
		}
	}

	if c.ViewTracking.MinReadTime <= 0 {
		c.ViewTracking.MinReadTime = 10
	}
	if c.ViewTracking.SessionTtl == nil || c.ViewTracking.SessionTtl.Duration <= 0 {
		c.ViewTracking.SessionTtl = &JsonDuration{Duration: 30 * time.Minute}
	}
	if len(c.ViewTracking.CookieName) == 0 {
		c.ViewTracking.CookieName = "lr_session"
	}

	if len(c.Scheduler.SitemapSpec) == 0 {
		c.Scheduler.SitemapSpec = "@every 6h"
	}
	if len(c.Scheduler.SessionPurgeSpec) == 0 {
		c.Scheduler.SessionPurgeSpec = "@every 10m"
	}
}

// ParseEmailList splits a comma separated list of e-mail addresses,
// trimming blanks and dropping empty entries.
func ParseEmailList(s string) []string {
	emails := make([]string, 0)
	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(e)
		if len(e) == 0 {
			continue
		}
		emails = append(emails, e)
	}
	return emails
}

func Config() *Configuration {
	return config
}

func Port() string {
	return config.ListeningPort
}

func Address() string {
	return config.ListeningAddress
}

func BaseUrl() string {
	return strings.TrimRight(config.Site.BaseUrl.String(), "/")
}

func AdminEmails() []string {
	return config.Admin.Emails
}

func SigningKey() string {
	return config.Auth.SigningKey
}

func TokenLifetime() time.Duration {
	return config.Auth.TokenLifetime.Duration
}

func MinReadTime() time.Duration {
	return time.Duration(config.ViewTracking.MinReadTime) * time.Second
}
