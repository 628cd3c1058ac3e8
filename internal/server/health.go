package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/netviz/internal/config"
	"github.com/vanshika/netviz/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// GraphHealthService verifies graph connectivity as part of health checks.
// A nil client means the Neo4j store is disabled and always reports healthy.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}

// RegistryHealthService reports unhealthy when the dataset registry is
// missing or lists nothing to show.
type RegistryHealthService struct {
	Registry func() *config.Registry
}

// Probe implements the HealthService interface.
func (s RegistryHealthService) Probe(context.Context) error {
	if s.Registry == nil {
		return nil
	}
	reg := s.Registry()
	if reg == nil {
		return errors.New("dataset registry not loaded")
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("dataset registry: %w", err)
	}
	return nil
}

// HealthServices probes every member and joins the failures.
type HealthServices []HealthService

// Probe implements the HealthService interface.
func (hs HealthServices) Probe(ctx context.Context) error {
	var errs []error
	for _, h := range hs {
		if h == nil {
			continue
		}
		if err := h.Probe(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
