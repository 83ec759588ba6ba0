package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/mizuleaf/callscope/internal/config"
	"github.com/mizuleaf/callscope/internal/infrastructure/media"
	"github.com/mizuleaf/callscope/internal/infrastructure/providers"
	"github.com/mizuleaf/callscope/internal/infrastructure/repository"
	"github.com/mizuleaf/callscope/internal/present/rest"
	"github.com/mizuleaf/callscope/internal/present/rest/middleware"
	"github.com/mizuleaf/callscope/internal/service"
	"github.com/mizuleaf/callscope/internal/usecase"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if conf.Server.EnableTrace {
		shutdown, err := setupTracing(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Error("failed to set up tracing", "error", err)
			os.Exit(1)
		}
		defer shutdown()
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if err := providers.MigrateDatabase(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	rdb := providers.NewRedis(conf.Server)

	userRepo := repository.NewUserRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	recordingRepo := repository.NewRecordingRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	clipRepo := repository.NewClipRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	zoomGateway := providers.NewZoomGateway(conf.Zoom)
	transcribeGateway := providers.NewTranscriptionGateway(conf.Transcription)
	analyzeGateway := providers.NewAnalysisGateway(conf.Analysis)
	emailGateway := providers.NewEmailGateway(conf.Email)
	transfer := media.NewTransfer()

	authService := service.NewAuthService(userRepo)
	credCache := service.NewCredentialCache(zoomGateway)
	signalService := service.NewSignalService(rdb)

	notificationUC := usecase.NewNotificationUsecase(
		notificationRepo, userRepo, recordingRepo, accountRepo, emailGateway, conf.App)
	syncUC := usecase.NewSyncUsecase(accountRepo, recordingRepo, credCache, zoomGateway)
	recordingUC := usecase.NewRecordingUsecase(
		recordingRepo, analysisRepo, ruleRepo,
		transcribeGateway, analyzeGateway, transfer, signalService, notificationUC,
		conf.Media.TempDir, conf.Media.StorageDir)
	clipUC := usecase.NewClipUsecase(clipRepo, recordingRepo, transfer, conf.Media.TempDir, conf.Media.StorageDir)
	ruleUC := usecase.NewRuleUsecase(ruleRepo)
	feedbackUC := usecase.NewFeedbackUsecase(feedbackRepo, recordingRepo, notificationUC)
	accountUC := usecase.NewAccountUsecase(accountRepo)
	dashboardUC := usecase.NewDashboardUsecase(recordingRepo, analysisRepo, feedbackRepo)

	handler := rest.NewHandler(
		conf.App, authService,
		syncUC, recordingUC, clipUC, ruleUC, feedbackUC, notificationUC, accountUC, dashboardUC)

	authMiddleware := middleware.NewAuthMiddleware(authService, conf.App)

	e := echo.New()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	if conf.Server.EnableTrace {
		e.Use(otelecho.Middleware("callscope"))
	}
	e.Use(authMiddleware.IdentifyIdentity)

	handler.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTracing(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName("callscope"),
	))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			slog.Warn("failed to shut down tracer provider", "error", err)
		}
	}, nil
}
