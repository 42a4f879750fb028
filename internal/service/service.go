// Package service is the library boundary of the prerequisite engine. It
// loads a fresh graph snapshot from the stores for every call, runs the pure
// algorithms over it and maps the outcome onto the apperr taxonomy.
//
// Service holds no graph state between calls and is safe for concurrent use
// as long as its stores are.
package service

import (
	"github.com/specialistvlad/learngrid/internal/apperr"
	"github.com/specialistvlad/learngrid/internal/metrics"
	"github.com/specialistvlad/learngrid/internal/progressstore"
	"github.com/specialistvlad/learngrid/internal/readiness"
	"github.com/specialistvlad/learngrid/internal/topologystore"
	"github.com/specialistvlad/learngrid/internal/workflow"
)

// Config holds the tunable constants of the engine.
type Config struct {
	Weights          readiness.Weights
	MasteryThreshold float64
	// Workers bounds parallel availability resolution. Zero means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the 70/30 readiness split and a mastery threshold of 70.
func DefaultConfig() Config {
	return Config{
		Weights:          readiness.DefaultWeights,
		MasteryThreshold: workflow.DefaultMasteryThreshold,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.MasteryThreshold < 0 || c.MasteryThreshold > 100 {
		return apperr.Validationf("mastery threshold must be between 0 and 100, got %v", c.MasteryThreshold)
	}
	if c.Workers < 0 {
		return apperr.Validationf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Service exposes the engine operations.
type Service struct {
	topology topologystore.Store
	progress progressstore.Store
	metrics  *metrics.Metrics
	cfg      Config
}

// New builds a service over the given stores. A nil m records nothing.
func New(topology topologystore.Store, progress progressstore.Store, m *metrics.Metrics, cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.Discard()
	}
	return &Service{
		topology: topology,
		progress: progress,
		metrics:  m,
		cfg:      cfg,
	}, nil
}

// Config returns the configuration the service runs with.
func (s *Service) Config() Config {
	return s.cfg
}
