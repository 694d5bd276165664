// Package server wires configuration, storage, services and transports
// together and runs them until the process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/logging"
	"github.com/dmitrijs2005/healthtracker/internal/server/auth"
	"github.com/dmitrijs2005/healthtracker/internal/server/avatars"
	"github.com/dmitrijs2005/healthtracker/internal/server/config"
	"github.com/dmitrijs2005/healthtracker/internal/server/jobs"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/healthtracker/internal/server/rest"
	"github.com/dmitrijs2005/healthtracker/internal/server/services"
	"github.com/dmitrijs2005/healthtracker/internal/server/sms"
	"github.com/dmitrijs2005/healthtracker/internal/telemetry"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/healthtracker/internal/server/grpc"
)

const telemetryShutdownTimeout = 5 * time.Second

type App struct {
	config            *config.Config
	logger            logging.Logger
	db                *sql.DB
	httpServer        *rest.Server
	grpcServer        *gs.GRPCServer
	purgeJob          *jobs.PurgeJob
	shutdownTelemetry func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(os.Stdout, c.Environment, c.LogLevel)
	if c.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, c.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN, c.DatabaseMaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	issuer, err := auth.NewTokenIssuer(c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("token issuer error: %w", err)
	}

	var presigner services.AvatarPresigner
	if p, err := avatars.NewPresigner(ctx, c); err != nil {
		logger.Warn(ctx, "avatar storage disabled", "error", err)
	} else {
		presigner = p
	}

	sender := sms.NewSmsRuClient(c.SmsRuAPIURL, c.SmsRuAPIID, c.SmsRuTimeout)

	authService := services.NewAuthService(db, rm, issuer, sender, c, logger)
	profileService := services.NewProfileService(db, rm, presigner, logger)
	statsService := services.NewStatsService(db, rm)
	followService := services.NewFollowService(db, rm)
	maintenanceService := services.NewMaintenanceService(db, rm, c.PhoneRegion, logger)

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		httpServer: rest.NewServer(c.EndpointAddrHTTP, c.APIPrefix, logger, rest.Dependencies{
			Auth:    authService,
			Profile: profileService,
			Stats:   statsService,
			Follow:  followService,
			DB:      db,
		}),
		grpcServer:        gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db),
		shutdownTelemetry: shutdownTelemetry,
	}

	if c.PurgeSchedule != "" {
		app.purgeJob, err = jobs.NewPurgeJob(c.PurgeSchedule, maintenanceService, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until a termination signal arrives or any server fails, then
// waits for every component to stop and releases shared resources.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.purgeJob != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.purgeJob.Run(ctx)
		}()
	}

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	if err := app.shutdownTelemetry(ctx); err != nil {
		app.logger.Error(ctx, "telemetry shutdown failed", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
}
