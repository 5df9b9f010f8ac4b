package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-builder/internal/drafts"
	"resume-builder/internal/gateway"
	"resume-builder/internal/jobcontext"
	"resume-builder/internal/localstore"
	"resume-builder/internal/navguard"
	"resume-builder/internal/workflow"
)

// env is everything one command invocation needs, opened from Config.
type env struct {
	cfg     Config
	kv      *localstore.SQLiteStore
	drafts  *drafts.Store
	jobs    *jobcontext.Store
	gateway *gateway.Client
	bus     *navguard.Bus
}

func openEnv(ctx context.Context, cfg Config) (*env, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	kv, err := localstore.OpenSQLite(ctx, cfg.StatePath, cfg.Session)
	if err != nil {
		return nil, err
	}

	opts := gateway.Options{BaseURL: cfg.ServerURL, GuestID: cfg.GuestID, Timeout: cfg.Timeout}
	if cfg.Token != "" {
		opts.TokenSource = gateway.StaticToken(cfg.Token)
	}
	gw, err := gateway.New(opts)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	return &env{
		cfg:     cfg,
		kv:      kv,
		drafts:  drafts.New(kv),
		jobs:    jobcontext.New(kv, time.Now),
		gateway: gw,
		bus:     navguard.NewBus(),
	}, nil
}

func (e *env) router(imp workflow.Importer) *workflow.Router {
	return &workflow.Router{
		KV:       e.kv,
		Drafts:   e.drafts,
		Jobs:     e.jobs,
		Gateway:  e.gateway,
		Importer: imp,
		Bus:      e.bus,
	}
}

func (e *env) Close() error {
	return e.kv.Close()
}
