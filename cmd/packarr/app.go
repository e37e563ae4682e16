package main

import (
	"os"
	"strings"

	"github.com/amaumene/packarr/internal/config"
	"github.com/amaumene/packarr/internal/constants"
	"github.com/amaumene/packarr/internal/database"
	"github.com/amaumene/packarr/internal/handlers"
	"github.com/amaumene/packarr/internal/services"
	"github.com/amaumene/packarr/pkg/logger"
)

var (
	Logger           logger.Logger
	Config           *config.Config
	DB               database.Database
	handler          *handlers.Handler
	serviceContainer *services.Container
)

func InitializeLogger() {
	Logger = logger.New()

	logLevel := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = constants.DefaultLogLevel
	}

	switch logLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		Logger.Warnf("[app] unknown log level '%s', defaulting to %s", os.Getenv("LOG_LEVEL"), constants.DefaultLogLevel)
	}
}

func InitializeConfig() {
	var err error
	Config, err = config.Load()
	if err != nil {
		Logger.Fatalf("[app] failed to load configuration: %v", err)
	}

	if Config.APIKeyAllDebrid == "" && Config.APIKeyTorBox == "" {
		Logger.Warnf("[app] no debrid API key configured, relying on public mirrors only")
	}
}

func InitializeDatabase() {
	var err error
	DB, err = database.NewBolt(Config.DatabasePath)
	if err != nil {
		Logger.Fatalf("[app] failed to initialize database: %v", err)
	}
	Logger.Infof("[app] pack store opened at %s", Config.DatabasePath)
}

func InitializeServices() {
	serviceContainer = services.NewContainer(Config, DB, Logger)
	handler = handlers.New(serviceContainer, Config)
	Logger.Infof("[app] services initialized successfully")
}
