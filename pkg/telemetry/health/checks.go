package health

import (
	"context"
	"fmt"

	"cmmc/validator/pkg/resolver"
	"cmmc/validator/pkg/vocabulary"
)

// VocabularySource is satisfied by *vocabulary.Store.
type VocabularySource interface {
	Get() (*vocabulary.Set, error)
}

// ServiceReporter is satisfied by *resolver.HTTPResolver.
type ServiceReporter interface {
	Name() string
	GetHealth() resolver.Health
}

// VocabularyCheck fails until a vocabulary has been loaded.
func VocabularyCheck(source VocabularySource) CheckFunc {
	return func(ctx context.Context) error {
		set, err := source.Get()
		if err != nil {
			return err
		}
		if len(set.RequiredColumns()) == 0 {
			return fmt.Errorf("vocabulary from %s has no columns", set.Source())
		}
		return nil
	}
}

// ServiceCheck reports the last known health of a lookup service. It does
// not contact the service; the resolver's background checker keeps the
// state fresh.
func ServiceCheck(service ServiceReporter) CheckFunc {
	return func(ctx context.Context) error {
		h := service.GetHealth()
		if h.IsHealthy {
			return nil
		}
		if h.LastError != nil {
			return fmt.Errorf("%s unhealthy after %d consecutive failures: %w",
				service.Name(), h.ConsecutiveFailures, h.LastError)
		}
		return fmt.Errorf("%s unhealthy after %d consecutive failures", service.Name(), h.ConsecutiveFailures)
	}
}
