package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/backoffice-api/internal/application/auth"
	"github.com/jhoicas/backoffice-api/internal/application/inventory"
	"github.com/jhoicas/backoffice-api/internal/application/usecase"
	"github.com/jhoicas/backoffice-api/internal/domain/query"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/codec"
	infrapdf "github.com/jhoicas/backoffice-api/internal/infrastructure/pdf"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/storage"
	"github.com/jhoicas/backoffice-api/internal/infrastructure/stores"
	httpRouter "github.com/jhoicas/backoffice-api/internal/interfaces/http"
	"github.com/jhoicas/backoffice-api/pkg/config"
	pkgjwt "github.com/jhoicas/backoffice-api/pkg/jwt"
	"github.com/jhoicas/backoffice-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	repos, err := stores.Open(ctx, *cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir persistencia")
	}
	defer repos.Close()

	refreshStore, closeRefresh, err := stores.RefreshStore(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer closeRefresh()

	signer, err := pkgjwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET requerido")
	}
	files, err := storage.NewLocalStorage(cfg.Upload.Dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Upload.Dir).Msg("carpeta de adjuntos")
	}

	resourceUC := usecase.NewResourceUseCase(repos.Resources, usecase.RecordRules{Languages: cfg.App.Languages}).
		WithDependents(usecase.Dependents{Users: repos.Users, Barcodes: repos.Barcodes, Inventories: repos.Inventories})
	transferUC := usecase.NewTransferUseCase(resourceUC, codec.New(cfg.App.Languages))
	userUC := usecase.NewUserUseCase(repos.Users, repos.Resources)
	barcodeUC := usecase.NewBarcodeUseCase(repos.Barcodes, repos.Resources)
	inventoryUC := inventory.NewUseCase(repos.Tx, repos.Inventories, repos.Barcodes, repos.Resources, infrapdf.NewMarotoPDFGenerator())
	authUC := auth.NewAuthUseCase(repos.Users, repos.Resources, signer, refreshStore)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.Upload.MaxBytes + 1<<20, // margen para el resto del multipart
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Backoffice API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ResourceUC:     resourceUC,
		TransferUC:     transferUC,
		UserUC:         userUC,
		BarcodeUC:      barcodeUC,
		InventoryUC:    inventoryUC,
		AuthUC:         authUC,
		Signer:         signer,
		Storage:        files,
		Parser:         query.NewParser(cfg.App.DefaultPageSize),
		AppName:        cfg.App.Name,
		StoreTimeout:   cfg.Storage.Timeout,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		CookieSecure:   cfg.HTTP.CookieSecure,
		LoginPerMinute: cfg.HTTP.LoginPerMinute,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
