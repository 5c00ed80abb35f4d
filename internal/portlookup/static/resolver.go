package static

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bkcnorm/internal/config"
	"bkcnorm/internal/domain"
	"bkcnorm/internal/normalize"
	"bkcnorm/internal/port"
	"bkcnorm/internal/portlookup"
)

const providerName = "static"

func init() {
	portlookup.RegisterProvider(providerName, func(_ *config.PortProviderConfig, ports []config.PortEntry) (port.PortResolver, error) {
		return New(ports)
	})
}

// Resolver resolves port codes from the Port_Codes table of the mappings file.
// Descriptions and aliases match ignoring case, accents and spacing.
type Resolver struct {
	byCountry  map[string]map[string]string
	anyCountry map[string]string
}

// New builds a Resolver. When a name is listed twice for the same country the
// first entry wins.
func New(entries []config.PortEntry) (*Resolver, error) {
	r := &Resolver{
		byCountry:  make(map[string]map[string]string),
		anyCountry: make(map[string]string),
	}
	for _, e := range entries {
		code := strings.ToUpper(strings.TrimSpace(e.PortCode))
		if code == "" {
			continue
		}
		country := strings.ToUpper(strings.TrimSpace(e.CountryCode))
		names := append([]string{e.Description, code}, e.Aliases...)
		for _, name := range names {
			key := normalize.FoldKey(name)
			if key == "" {
				continue
			}
			if r.byCountry[country] == nil {
				r.byCountry[country] = make(map[string]string)
			}
			if _, ok := r.byCountry[country][key]; !ok {
				r.byCountry[country][key] = code
			}
			if _, ok := r.anyCountry[key]; !ok {
				r.anyCountry[key] = code
			}
		}
	}
	if len(r.anyCountry) == 0 {
		return nil, errors.New("static port lookup: no port codes configured")
	}
	return r, nil
}

// Resolve looks description up within countryCode, or across all countries
// when countryCode is empty.
func (r *Resolver) Resolve(ctx context.Context, description, countryCode string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := normalize.FoldKey(description)
	table := r.anyCountry
	if cc := strings.ToUpper(strings.TrimSpace(countryCode)); cc != "" {
		table = r.byCountry[cc]
	}
	if code, ok := table[key]; ok {
		return code, nil
	}
	return "", fmt.Errorf("%w: %q (%s)", domain.ErrPortNotResolved, description, countryCode)
}
