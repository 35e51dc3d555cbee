package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckNotConfigured marks a provider without credentials. It does not degrade.
	CheckNotConfigured CheckResult = "not_configured"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type providerEntry struct {
	name     string
	provider Provider
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	providers []providerEntry
}

// New creates a Service. db is nil when quotas are held in memory only.
func New(db DBPinger) *Service {
	return &Service{db: db}
}

// WithProvider adds a provider to the report. Providers implementing
// ProviderChecker are checked; others only report whether they are configured.
func (s *Service) WithProvider(name string, p Provider) *Service {
	if p != nil {
		s.providers = append(s.providers, providerEntry{name: name, provider: p})
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	for _, e := range s.providers {
		checks[e.name] = checkProvider(ctx, e.provider)
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func checkProvider(ctx context.Context, p Provider) CheckResult {
	if !p.Configured() {
		return CheckNotConfigured
	}
	pc, ok := p.(ProviderChecker)
	if !ok {
		return CheckOK
	}
	if err := pc.HealthCheck(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
