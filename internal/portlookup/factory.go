package portlookup

import (
	"fmt"

	"go.uber.org/zap"

	"bkcnorm/internal/config"
	"bkcnorm/internal/port"
)

// ProviderFactory creates a PortResolver from a provider config. ports is the
// static port table from the mappings file.
type ProviderFactory func(cfg *config.PortProviderConfig, ports []config.PortEntry) (port.PortResolver, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a port lookup provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewResolver creates a PortResolver from a provider config using the registered factory.
func NewResolver(cfg *config.PortProviderConfig, ports []config.PortEntry) (port.PortResolver, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown port lookup provider: %s", cfg.Provider)
	}
	return factory(cfg, ports)
}

// NewChain builds the configured resolver: the primary alone, or the primary
// followed by the secondary behind a FallbackResolver. It returns nil when no
// primary provider is configured.
func NewChain(cfg *config.PortLookupConfig, ports []config.PortEntry, logger *zap.Logger) (port.PortResolver, error) {
	primaryCfg := cfg.PrimaryConfig()
	if primaryCfg == nil {
		return nil, nil
	}
	primary, err := NewResolver(primaryCfg, ports)
	if err != nil {
		return nil, fmt.Errorf("primary port lookup: %w", err)
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := NewResolver(secondaryCfg, ports)
	if err != nil {
		return nil, fmt.Errorf("secondary port lookup: %w", err)
	}

	return NewFallbackResolver(
		[]port.PortResolver{primary, secondary},
		[]string{primaryCfg.Provider, secondaryCfg.Provider},
		logger,
	), nil
}
