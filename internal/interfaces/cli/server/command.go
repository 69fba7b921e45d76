// Package server implements the `helios server` command.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	agentUC "github.com/helios-home/helios/internal/application/agent/usecases"
	deviceUC "github.com/helios-home/helios/internal/application/device/usecases"
	networkUC "github.com/helios-home/helios/internal/application/network/usecases"
	serviceUC "github.com/helios-home/helios/internal/application/service/usecases"
	sharedservices "github.com/helios-home/helios/internal/domain/shared/services"
	"github.com/helios-home/helios/internal/infrastructure/acm"
	"github.com/helios-home/helios/internal/infrastructure/cache"
	"github.com/helios-home/helios/internal/infrastructure/config"
	"github.com/helios-home/helios/internal/infrastructure/database"
	"github.com/helios-home/helios/internal/infrastructure/migration"
	"github.com/helios-home/helios/internal/infrastructure/repository"
	"github.com/helios-home/helios/internal/infrastructure/routerapi"
	"github.com/helios-home/helios/internal/infrastructure/scheduler"
	httpRouter "github.com/helios-home/helios/internal/interfaces/http"
	"github.com/helios-home/helios/internal/interfaces/http/handlers"
	agenthandler "github.com/helios-home/helios/internal/interfaces/http/handlers/agent"
	"github.com/helios-home/helios/internal/shared/logger"
)

const (
	agentPingInterval = 15 * time.Second
	networkStatusTTL  = 30 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var (
	env         string
	autoMigrate bool
	withCache   bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the control plane",
		Long:  `Start the Helios control plane: REST API, agent WebSocket endpoint and the periodic scan scheduler.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run pending database migrations on startup")
	cmd.Flags().BoolVar(&withCache, "with-cache", false, "Cache the network status snapshot in Redis")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.Infow("starting control plane", "environment", env)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Errorw("failed to close database", "error", err)
		}
	}()

	if autoMigrate {
		migrator, err := migration.NewMigrator(db, log)
		if err != nil {
			return err
		}
		if err := migrator.Up(); err != nil {
			return err
		}
	}

	uowProvider := database.NewUnitOfWorkProvider(db)
	serviceRepo := repository.NewServiceRepository(log)
	deviceRepo := repository.NewDeviceRepository(log)
	tokenGen := sharedservices.NewTokenGenerator()

	routerAPI, err := routerapi.New(&cfg.RouterAPI, log)
	if err != nil {
		return fmt.Errorf("failed to initialize router API: %w", err)
	}

	var statusCache networkUC.StatusCache
	if withCache {
		redisClient := cache.NewRedisClient(&cfg.Redis)
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Errorw("failed to close redis client", "error", err)
			}
		}()
		statusCache = cache.NewNetworkStatusCache(redisClient, networkStatusTTL)
	}

	connections := acm.NewManager(log)

	createServiceUC := serviceUC.NewCreateServiceUseCase(uowProvider, serviceRepo, tokenGen, log)
	listServicesUC := serviceUC.NewListServicesUseCase(uowProvider, serviceRepo, log)
	listTemplatesUC := serviceUC.NewListServiceTemplatesUseCase()
	installScriptUC := serviceUC.NewGenerateInstallScriptUseCase(
		uowProvider, serviceRepo, tokenGen, &cfg.Agent, cfg.Server.BaseURL, log)
	listDevicesUC := deviceUC.NewListDevicesUseCase(uowProvider, deviceRepo, serviceRepo, log)
	fetchStatusUC := networkUC.NewFetchNetworkStatusUseCase(routerAPI, statusCache, log)
	handleConnectionUC := agentUC.NewHandleAgentConnectionUseCase(uowProvider, serviceRepo, connections, log)

	scanDelay := time.Duration(cfg.Scanning.DeviceScanDelay) * time.Second
	syncDevicesUC := deviceUC.NewSyncDevicesUseCase(uowProvider, deviceRepo, routerAPI, scanDelay, log)
	agentPingUC := agentUC.NewAgentPingUseCase(connections, agentPingInterval, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(log)
	sched.Add(syncDevicesUC)
	sched.Add(agentPingUC)
	go sched.Run(ctx)

	router := httpRouter.NewRouter(
		&cfg.Server,
		handlers.NewDeviceHandler(listDevicesUC, log),
		handlers.NewNetworkHandler(fetchStatusUC, log),
		handlers.NewServiceHandler(createServiceUC, listServicesUC, installScriptUC, log),
		handlers.NewServiceTemplateHandler(listTemplatesUC),
		agenthandler.NewWSHandler(handleConnectionUC, log),
		log,
	)

	srv := &http.Server{
		Addr:        cfg.Server.GetAddr(),
		Handler:     router.Engine(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Infow("server stopped")
	return nil
}
