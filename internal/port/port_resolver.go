package port

import "context"

// PortResolver resolves a free-text port of discharge within a country to a
// port code (e.g. "NHAVA SHEVA", "IN" -> "NSA"). Implementations honor the
// context deadline and return an error when no code could be obtained.
type PortResolver interface {
	Resolve(ctx context.Context, description, countryCode string) (string, error)
}
