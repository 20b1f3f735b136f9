package app

import (
	"context"
	"fmt"
	"io"

	"github.com/semmidev/dbops/internal/adapter/compressor"
	"github.com/semmidev/dbops/internal/adapter/database"
	"github.com/semmidev/dbops/internal/adapter/storage"
	"github.com/semmidev/dbops/internal/config"
	"github.com/semmidev/dbops/internal/domain"
	"github.com/semmidev/dbops/internal/dsn"
	"github.com/semmidev/dbops/internal/envfile"
	"github.com/semmidev/dbops/internal/infrastructure/command"
	"github.com/semmidev/dbops/internal/infrastructure/logger"
	"github.com/semmidev/dbops/internal/usecase"
)

type App struct {
	config *config.Config
	logger *logger.Logger
	runner *command.Runner
}

// New builds the shared pieces; name tags log entries with the tool.
func New(cfg *config.Config, name string) (*App, error) {
	log, err := logger.New(name, cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return &App{
		config: cfg,
		logger: log,
		runner: command.NewRunner(),
	}, nil
}

// Diagnose prints the category/config report to out.
func (a *App) Diagnose(ctx context.Context, out io.Writer) error {
	conn, err := a.resolveConnection(dsn.DiagnosticDefaults)
	if err != nil {
		return err
	}

	db := database.NewMySQL(a.runner, conn, a.config.Client)
	return usecase.NewDiagnose(db, conn, out, a.logger).Execute(ctx)
}

// Upgrade backs up Banner and widens Banner.targetId, printing progress to out.
func (a *App) Upgrade(ctx context.Context, out io.Writer) error {
	conn, err := a.resolveConnection(dsn.UpgradeDefaults)
	if err != nil {
		return err
	}

	db := database.NewMySQL(a.runner, conn, a.config.Client)

	var offsite *usecase.Offsite
	if targets := initializeUploadTargets(ctx, a.config, a.logger); len(targets) > 0 {
		offsite = usecase.NewOffsite(targets, compressor.NewGzip(), a.logger, a.config.Backup.Compress)
	}

	return usecase.NewUpgrade(db, out, a.logger, offsite).Execute(ctx)
}

func (a *App) resolveConnection(defaults dsn.Defaults) (domain.Connection, error) {
	src := a.config.Source

	raw, err := envfile.Lookup(src.EnvFile, src.EnvKey)
	if err != nil {
		return domain.Connection{}, err
	}

	conn, err := dsn.Parse(raw, defaults)
	if err != nil {
		return domain.Connection{}, fmt.Errorf("%s in %s: %w", src.EnvKey, src.EnvFile, err)
	}

	a.logger.Infof("Resolved connection %s from %s", conn, src.EnvFile)
	return conn, nil
}

func initializeUploadTargets(ctx context.Context, cfg *config.Config, log *logger.Logger) []usecase.UploadTarget {
	var targets []usecase.UploadTarget

	for _, targetCfg := range cfg.GetEnabledUploadTargets() {
		var stor domain.Storage
		var err error

		switch targetCfg.Type {
		case "local":
			stor, err = storage.NewLocal(targetCfg.Path)
		case "s3":
			stor, err = storage.NewS3(ctx, &targetCfg)
		case "gdrive":
			stor, err = storage.NewGDrive(ctx, &targetCfg)
		case "telegram":
			stor, err = storage.NewTelegram(&targetCfg)
		default:
			log.Warnf("Unknown upload target type: %s", targetCfg.Type)
			continue
		}

		if err != nil {
			log.Errorf("Failed to initialize %s upload target: %v", targetCfg.Type, err)
			continue
		}

		log.Infof("Offsite copy enabled: %s", targetCfg.Type)
		targets = append(targets, usecase.UploadTarget{
			Name:    targetCfg.Type,
			Storage: stor,
		})
	}

	return targets
}

func (a *App) Shutdown() {
	a.logger.Close()
}
