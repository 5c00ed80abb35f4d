// Package app wires configuration into a ready-to-use normalization pipeline.
package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"bkcnorm/internal/booking"
	"bkcnorm/internal/config"
	"bkcnorm/internal/pipeline"
	"bkcnorm/internal/port"
	"bkcnorm/internal/portlookup"
	_ "bkcnorm/internal/portlookup/httpclient" // registers the "http" provider
	"bkcnorm/internal/portlookup/sqlitecache"
	_ "bkcnorm/internal/portlookup/static" // registers the "static" provider
)

// Components holds what BuildPipeline created. Cache is nil when the port
// code cache is disabled; callers must Close it.
type Components struct {
	Pipeline *pipeline.Pipeline
	Resolver port.PortResolver
	Cache    *sqlitecache.Cache
}

// Close releases the port code cache, if any.
func (c *Components) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// BuildPipeline loads the mappings file and builds the pipeline with the
// configured port lookup chain.
func BuildPipeline(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	mappings, err := config.LoadMappings(cfg.Pipeline.MappingsPath)
	if err != nil {
		return nil, fmt.Errorf("loading mappings: %w", err)
	}
	keyMap, err := mappings.KeyMap()
	if err != nil {
		return nil, fmt.Errorf("building key map: %w", err)
	}
	uom, err := mappings.UOMCanonicalizer()
	if err != nil {
		return nil, fmt.Errorf("building UOM table: %w", err)
	}
	fields, err := booking.SchemaFields(cfg.Pipeline.Schema)
	if err != nil {
		return nil, fmt.Errorf("pipeline schema: %w", err)
	}

	comps := &Components{}
	resolver, err := portlookup.NewChain(&cfg.PortLookup, mappings.Ports, logger)
	if err != nil {
		return nil, fmt.Errorf("port lookup: %w", err)
	}
	if resolver != nil && cfg.Cache.Path != "" {
		cache, err := sqlitecache.Open(cfg.Cache.Path, resolver, cfg.Cache.TTL, logger)
		if err != nil {
			return nil, fmt.Errorf("opening port code cache: %w", err)
		}
		comps.Cache = cache
		resolver = cache
		logger.Info("port code cache enabled", zap.String("path", cfg.Cache.Path))
	}
	if resolver == nil {
		logger.Warn("port lookup disabled, extracted port codes are kept")
	}
	comps.Resolver = resolver

	p, err := pipeline.New(pipeline.Config{
		Fields:             fields,
		KeyMap:             keyMap,
		UOM:                uom,
		GrossWeightDivisor: cfg.Pipeline.GrossWeightDivisor,
		PortTimeout:        PortTimeout(&cfg.PortLookup),
	}, resolver, logger)
	if err != nil {
		_ = comps.Close()
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	comps.Pipeline = p
	return comps, nil
}

// PortTimeout returns the per-lookup timeout of the primary provider, or 0.
func PortTimeout(cfg *config.PortLookupConfig) time.Duration {
	if primary := cfg.PrimaryConfig(); primary != nil && primary.TimeoutSecs > 0 {
		return time.Duration(primary.TimeoutSecs) * time.Second
	}
	return 0
}
