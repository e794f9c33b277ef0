// Package service wires the configured components into one facade the CLI
// and embedding programs talk to.
package service

import (
	"context"
	"fmt"
	"path/filepath"

	"decoyforge/internal/config"
	"decoyforge/internal/consistency"
	"decoyforge/internal/generate"
	"decoyforge/internal/llm"
	"decoyforge/internal/logging"
	"decoyforge/internal/populate"
	"decoyforge/internal/store"
	"decoyforge/internal/token"
)

// Service owns the full pipeline: provider client, ledger store, generator,
// populator, and profile registry.
type Service struct {
	cfg       *config.Config
	store     *store.Store
	client    llm.Client
	generator *generate.Generator
	populator *populate.Populator
	registry  *populate.Registry
}

// New builds a service from configuration. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	client, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider client: %w", err)
	}
	return NewWithClient(cfg, client)
}

// NewWithClient builds a service around a caller-supplied provider client.
func NewWithClient(cfg *config.Config, client llm.Client) (*Service, error) {
	dbPath := cfg.Storage.DatabasePath
	if dbPath != ":memory:" && !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(cfg.Workspace, dbPath)
	}
	s, err := store.Open(dbPath, cfg.Storage.LookupCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	registry, err := populate.NewRegistry()
	if err != nil {
		s.Close()
		return nil, err
	}
	if dir := cfg.Populate.ProfileDir; dir != "" {
		if cfg.Populate.WatchProfiles {
			err = registry.Watch(dir)
		} else {
			err = registry.LoadDir(dir)
		}
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	gen := generate.New(client, s, cfg.Generation)
	svc := &Service{
		cfg:       cfg,
		store:     s,
		client:    client,
		generator: gen,
		populator: populate.New(gen, s, cfg.Populate),
		registry:  registry,
	}
	logging.Boot("service ready: provider=%s model=%s store=%s", client.Name(), cfg.LLM.Model, dbPath)
	return svc, nil
}

// Close releases the store and any profile watcher.
func (s *Service) Close() error {
	s.registry.Stop()
	return s.store.Close()
}

// PopulateDecoy runs a full population job for the named profile.
func (s *Service) PopulateDecoy(ctx context.Context, decoyID, profileName string) (*populate.Report, error) {
	profile, err := s.registry.Get(profileName)
	if err != nil {
		return nil, err
	}
	return s.populator.Populate(ctx, decoyID, profile)
}

// GenerateArtifact produces a single validated artifact outside any
// population job. A fresh consistency context scopes it; the context is
// persisted so honeytoken artifacts stay attributable.
func (s *Service) GenerateArtifact(ctx context.Context, decoyID string, req generate.Request) (*generate.Result, error) {
	cc := consistency.Open(decoyID)
	req.Context = cc
	res, err := s.generator.Generate(ctx, req)
	if cerr := cc.Close(context.WithoutCancel(ctx), s.store); cerr != nil {
		logging.Generator("failed to persist one-off context %s: %v", cc.JobID, cerr)
	}
	return res, err
}

// LookupHoneytoken resolves a credential value observed in the wild to its
// ledger record, bumping access tracking.
func (s *Service) LookupHoneytoken(ctx context.Context, value string) (*token.Record, error) {
	return s.store.Lookup(ctx, value)
}

// MarkHoneytokenTriggered records the first confirmed external use of a
// planted token.
func (s *Service) MarkHoneytokenTriggered(ctx context.Context, id string) error {
	return s.store.MarkTriggered(ctx, id)
}

// DeactivateHoneytoken retires a token, e.g. when its decoy is torn down.
func (s *Service) DeactivateHoneytoken(ctx context.Context, id string) error {
	return s.store.Deactivate(ctx, id)
}

// ListHoneytokens returns ledger records matching the filter.
func (s *Service) ListHoneytokens(ctx context.Context, f token.Filter) ([]token.Record, error) {
	return s.store.List(ctx, f)
}

// GetHoneytoken returns one ledger record by ID.
func (s *Service) GetHoneytoken(ctx context.Context, id string) (*token.Record, error) {
	return s.store.Get(ctx, id)
}

// Profiles lists the known population profile names.
func (s *Service) Profiles() []string {
	return s.registry.Names()
}

// Profile returns one profile definition by name.
func (s *Service) Profile(name string) (*populate.Profile, error) {
	return s.registry.Get(name)
}
