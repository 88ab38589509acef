package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/fatmac/marketplace/internal/config"
	"github.com/fatmac/marketplace/internal/db"
	"github.com/fatmac/marketplace/internal/events"
	"github.com/fatmac/marketplace/internal/httpserver"
	"github.com/fatmac/marketplace/internal/logging"
	"github.com/fatmac/marketplace/internal/mailer"
	"github.com/fatmac/marketplace/internal/middleware"
	"github.com/fatmac/marketplace/internal/repo"
	"github.com/fatmac/marketplace/internal/service"
	"github.com/fatmac/marketplace/internal/service/search"
	"github.com/fatmac/marketplace/internal/storage"
)

const tokenTTL = 24 * time.Hour

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.LogLevel)

	ctx := logging.IntoContext(context.Background(), log)

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db init failed", "error", err)
		os.Exit(1)
	}

	var producer events.Publisher = events.Nop{}
	var kafkaProducer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaProducer = events.NewProducer(cfg.KafkaBrokers)
		producer = kafkaProducer
	} else {
		log.Warn("kafka brokers not configured, events disabled")
	}

	var mail mailer.Mailer
	if kafkaProducer != nil {
		mail = mailer.NewQueue(producer, cfg.MailFrom)
	} else {
		mail = &mailer.Log{L: log}
	}

	store := storage.NewDisk(cfg.UploadDir)
	repository := repo.New(database)

	authSvc := service.NewAuthService(repository, mail, producer, cfg.JWTSecret, tokenTTL)
	catalogSvc := service.NewCatalogService(repository, store, producer)
	orderSvc := service.NewOrderService(repository, store, mail, producer)
	vendorSvc := service.NewVendorService(repository, mail, store)
	cmsSvc := service.NewCmsService(repository, store)
	settingsSvc := service.NewSettingsService(repository, store, cfg.PublicBaseURL)
	newsletterSvc := service.NewNewsletterService(repository)
	dashboardSvc := service.NewDashboardService(repository)

	searchHandler := &httpserver.SearchHandler{Index: search.DefaultIndex, BaseURL: cfg.PublicBaseURL}
	if cfg.ESURL != "" {
		esClient, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Error("elasticsearch init failed", "error", err)
			os.Exit(1)
		}
		searchHandler.ES = esClient
	} else {
		log.Warn("ES_URL not configured, product search disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), echomw.CORS())
	e.Use(middleware.RequestLogger(log.With("service", cfg.ServiceName)))
	e.Use(middleware.Metrics())

	auth := middleware.NewAuth(cfg.JWTSecret, repository)

	httpserver.Register(e, &httpserver.Deps{
		Auth:       auth,
		UploadDir:  cfg.UploadDir,
		AuthH:      &httpserver.AuthHandler{Auth: authSvc, BaseURL: cfg.PublicBaseURL},
		Products:   &httpserver.ProductHandler{Catalog: catalogSvc, BaseURL: cfg.PublicBaseURL},
		Orders:     &httpserver.OrderHandler{Orders: orderSvc, BaseURL: cfg.PublicBaseURL},
		Vendors:    &httpserver.VendorHandler{Vendors: vendorSvc, BaseURL: cfg.PublicBaseURL},
		Cms:        &httpserver.CmsHandler{Cms: cmsSvc, BaseURL: cfg.PublicBaseURL},
		Settings:   &httpserver.SettingsHandler{Settings: settingsSvc},
		Newsletter: &httpserver.NewsletterHandler{Newsletter: newsletterSvc},
		Dashboard:  &httpserver.DashboardHandler{Dashboard: dashboardSvc},
		Search:     searchHandler,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Error("db close error", "error", err)
		}
	}

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Error("kafka close error", "error", err)
		}
	}

	log.Info("shutdown complete")
}
