package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"io"
	"legal-roundtable/internal/article"
	"legal-roundtable/internal/auth"
	"legal-roundtable/internal/author"
	"legal-roundtable/internal/config"
	"legal-roundtable/internal/constants"
	"legal-roundtable/internal/database"
	"legal-roundtable/internal/environment"
	"legal-roundtable/internal/logging"
	"legal-roundtable/internal/markdown"
	"legal-roundtable/internal/middlewares"
	"legal-roundtable/internal/routes"
	"legal-roundtable/internal/scheduler"
	"legal-roundtable/internal/sitemap"
	"legal-roundtable/internal/viewtracker"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

var initializationState sync.Map

func main() {
	c := config.InitConfig()

	logger := logging.InitLogging(c)

	controllerRegistry, sched, err := injectDependencies(c, logger)
	if err != nil {
		logger.LogErrorf(nil, "injecting depencies failed: %s", err.Error())
		return
	}

	ginLogger := logging.InitGinLogger(c)

	gin.DefaultWriter = io.MultiWriter(&zapio.Writer{Log: ginLogger, Level: config.Config().Logging.Level})
	if config.Config().Logging.Level == zap.DebugLevel {
		logger.LogDebug(nil, "Enabling Gin debug (writes to access log)")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		ginzap.GinzapWithConfig(ginLogger, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        false,
			SkipPaths:  []string{"/status", "/heartbeat"},
		}),
		ginzap.RecoveryWithZap(ginLogger, true),
	)

	// Routes
	routes.InitRouter(r, controllerRegistry)

	SetupCloseHandler(logger, sched)
	go func() {
		// write the sitemap on startup, the scheduler keeps it fresh afterwards
		generator := controllerRegistry[constants.Sitemap].(*sitemap.Controller).Generator
		runInitialization("sitemap", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			_, err := generator.Generate(ctx)
			return err
		})
		runInitialization("scheduler", sched.Start)
	}()
	go checkAllInitializations(logger)

	if len(config.Config().ListeningAddress) == 0 && len(config.Config().ListeningPort) == 0 {
		panic("No listening address/port provided")
	}

	logger.LogInfof(nil, "API running. Listening on %s:%s", config.Address(), config.Port())

	err = r.Run(config.Address() + ":" + config.Port())
	if err != nil {
		logger.LogErrorf(nil, "Listening on %s:%s failed: %s", config.Address(), config.Port(), err.Error())
		return
	}
}

func injectDependencies(config *config.Configuration, logger logging.Logger) (map[int]any, *scheduler.Scheduler, error) {
	db, err := database.InitDatabase(config, logger)
	if err != nil {
		logger.LogError(nil, "error initializing database: ", err)
		return nil, nil, err
	}

	env := environment.Environment(
		&database.GormRepository{DB: db},
		logger,
	)

	middlewares.SigningKey = config.Auth.SigningKey
	if len(middlewares.SigningKey) == 0 {
		key := make([]byte, 32)
		if _, err = rand.Read(key); err != nil {
			return nil, nil, err
		}
		middlewares.SigningKey = hex.EncodeToString(key)
		logger.LogWarn(logging.GetLogTypeInitialization(), "no signing key configured, issued tokens become invalid on restart")
	}

	authService := &auth.AuthService{Env: env}
	if err = authService.SeedUsers(context.Background(), config.Auth.Users); err != nil {
		logger.LogErrorf(logging.GetLogTypeInitialization(), "seeding users failed: %v", err)
		return nil, nil, err
	}

	// the Collator orders author names the way readers of the site expect,
	// instead of Go's default pure Unicode code point ordering
	authorService := &author.Service{
		Env:      env,
		Collator: collate.New(language.Make("zh-Hant")),
	}
	articleService := &article.Service{Env: env, Authors: authorService}
	authorService.Articles = articleService

	site := article.Site{BaseUrl: strings.TrimRight(config.Site.BaseUrl.String(), "/"), Name: config.Site.Name}

	articleController := &article.Controller{
		Env:      env,
		Service:  articleService,
		Renderer: markdown.NewRenderer(),
		Site:     site,
	}

	authorController := &author.Controller{
		Env:     env,
		Service: authorService,
	}

	authController := &auth.Controller{
		Env:           env,
		AuthService:   authService,
		TokenLifetime: configTokenLifetime,
		AdminEmails:   configAdminEmails,
	}

	clock := viewtracker.RealClock()
	sessions := viewtracker.NewSessions(clock, config.ViewTracking.SessionTtl.Duration)
	viewTrackerController := &viewtracker.Controller{
		Env:          env,
		Service:      viewtracker.NewService(env, articleService, clock, sessions, time.Duration(config.ViewTracking.MinReadTime)*time.Second),
		CookieName:   config.ViewTracking.CookieName,
		SecureCookie: config.Site.BaseUrl.Scheme == "https",
	}

	generator := &sitemap.Generator{
		Env:          env,
		Articles:     articleService,
		Authors:      authorService,
		BaseUrl:      site.BaseUrl,
		StaticRoutes: config.Site.StaticRoutes,
		PublicDir:    config.Site.PublicDir,
		Now:          time.Now,
	}
	sitemapController := &sitemap.Controller{
		Env:       env,
		Generator: generator,
	}

	sched := scheduler.NewScheduler(env, generator, viewTrackerController.Service,
		config.Scheduler.SitemapSpec, config.Scheduler.SessionPurgeSpec)

	controllerRegistry := make(map[int]any)
	controllerRegistry[constants.Article] = articleController
	controllerRegistry[constants.Author] = authorController
	controllerRegistry[constants.Auth] = authController
	controllerRegistry[constants.ViewTracker] = viewTrackerController
	controllerRegistry[constants.Sitemap] = sitemapController

	return controllerRegistry, sched, nil
}

func configTokenLifetime() time.Duration {
	return config.TokenLifetime()
}

func configAdminEmails() []string {
	return config.AdminEmails()
}

// runInitialization tracks fn in initializationState until it succeeds or fails.
func runInitialization(name string, fn func() error) {
	initializationState.Store(name, "running")
	if err := fn(); err != nil {
		initializationState.Store(name, "failed")
		return
	}
	initializationState.Delete(name)
}

func checkAllInitializations(logger logging.Logger) {
	internalCounter := 15
	failedInits, unfinishedInits := make([]string, 0), make([]string, 0)
	time.Sleep(time.Second * 2)
	for internalCounter != 0 {
		allWorkedOn := true
		failedInits = []string{}
		unfinishedInits = []string{}
		initializationState.Range(func(key, value interface{}) bool {
			if value == "failed" {
				failedInits = append(failedInits, key.(string))
			} else {
				unfinishedInits = append(unfinishedInits, key.(string))
				logger.LogWarnf(nil, "Initialization: waiting for %v", key)
				allWorkedOn = false
			}
			return true
		})
		if allWorkedOn {
			break
		}
		time.Sleep(time.Second * 2)
		if internalCounter%5 == 0 {
			logger.LogDebug(nil, "Waiting for all initialization(s) to complete...")
		}
		internalCounter--
	}
	if len(failedInits) > 0 || len(unfinishedInits) > 0 || internalCounter == 0 {
		if len(unfinishedInits) > 0 {
			logger.LogErrorf(nil, "%v Initialization function(s) did not complete in time: %v",
				len(unfinishedInits), strings.Join(unfinishedInits, ", "))
		}
		if len(failedInits) > 0 {
			logger.LogErrorf(nil, "%v Initialization function(s) failed: %v",
				len(failedInits), strings.Join(failedInits, ", "))
		}
	} else {
		logger.LogInfo(nil, "Initialization completed successfully")
	}
}

func SetupCloseHandler(logger logging.Logger, sched *scheduler.Scheduler) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-c
		fmt.Println()
		logger.LogWarnf(nil, "Cleaning up...")
		sched.Stop()
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}()
}
