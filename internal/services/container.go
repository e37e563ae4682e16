package services

import (
	"time"

	"github.com/amaumene/packarr/internal/cache"
	"github.com/amaumene/packarr/internal/config"
	"github.com/amaumene/packarr/internal/constants"
	"github.com/amaumene/packarr/internal/database"
	"github.com/amaumene/packarr/pkg/logger"
)

// Container holds all application services for dependency injection.
type Container struct {
	Resolver *Resolver
	Chain    *ProviderChain
	Guard    *cache.LookupGuard
	DB       database.Database
	Logger   logger.Logger
}

// NewContainer wires the provider chain, the anti-loop guard and the
// resolver from configuration. Providers without an API key are left
// out of the chain; the public mirror tier is always last.
func NewContainer(cfg *config.Config, db database.Database, log logger.Logger) *Container {
	var providers []DebridClient
	if cfg.APIKeyAllDebrid != "" {
		providers = append(providers, NewAllDebridProvider(cfg.APIKeyAllDebrid))
	}
	if cfg.APIKeyTorBox != "" {
		providers = append(providers, NewTorBoxProvider(cfg.APIKeyTorBox))
	}
	providers = append(providers, NewMirrorProvider(cfg.MirrorURLs, log))

	chain := NewProviderChain(providers, log)
	guard := cache.NewLookupGuard(constants.GuardMaxEntries, constants.GuardTTLMinutes*time.Minute)

	return &Container{
		Resolver: NewResolver(db, chain, guard, cfg.PackTTL, log),
		Chain:    chain,
		Guard:    guard,
		DB:       db,
		Logger:   log,
	}
}
