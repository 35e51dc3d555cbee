package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Provider reports whether an upstream provider has credentials.
type Provider interface {
	Configured() bool
}

// ProviderChecker is a Provider that can also be checked over the network.
type ProviderChecker interface {
	Provider
	HealthCheck(ctx context.Context) error
}
