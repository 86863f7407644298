// Package app assembles the application: configuration, store, caches,
// retry policy, loaders, tracker and gateways. Commands build an App and
// work through its parts.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/competency"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/config"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/gateway"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/quiz"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/results"
	"github.com/jhouedanou/demarchecompetencesciprel-sub000/internal/store"
)

// App holds the wired application components.
type App struct {
	Config    config.Config
	StorePath string
	SnapDir   string
	Repo      store.Repository
	User      store.User
	Retryer   *gateway.Retryer
	Loader    *quiz.Loader
	Catalog   []competency.Area
	Tracker   *competency.Tracker
	Results   *results.Gateway
	Snapshots quiz.SnapshotStore
}

// New builds an App from resolved configuration, opening the configured
// store and loading the local user.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	repo, storePath, err := openRepository(cfg.Store)
	if err != nil {
		return nil, err
	}

	user, err := repo.CurrentUser(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	retryer := gateway.NewRetryer(gateway.RetryPolicy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.RetryBaseDelay(),
	})
	loader := quiz.NewLoader(repo, retryer,
		gateway.NewCache[[]quiz.Question](cfg.QuestionTTL()), cfg.QuestionTTL())
	catalog := competency.DefaultCatalog()
	tracker := competency.NewTracker(repo, retryer, user.ID, catalog,
		cfg.Competency.AssessmentIntervalMonths)

	snapshotDir := cfg.Store.SnapshotDir
	if snapshotDir == "" {
		snapshotDir = filepath.Join(filepath.Dir(storePath), "snapshots")
	}

	return &App{
		Config:    cfg,
		StorePath: storePath,
		SnapDir:   snapshotDir,
		Repo:      repo,
		User:      user,
		Retryer:   retryer,
		Loader:    loader,
		Catalog:   catalog,
		Tracker:   tracker,
		Results: results.NewGateway(results.Options{
			Store:   repo,
			Retryer: retryer,
			Loader:  loader,
			Tracker: tracker,
			Catalog: catalog,
			Cache:   gateway.NewCache[[]quiz.Result](cfg.ResultTTL()),
			TTL:     cfg.ResultTTL(),
		}),
		Snapshots: store.NewFileSnapshotStore(snapshotDir),
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Repo.Close()
}

func openRepository(cfg config.StoreConfig) (store.Repository, string, error) {
	path := cfg.Path
	if path == "" {
		var err error
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, "", fmt.Errorf("resolve store path: %w", err)
		}
		if cfg.Driver == "json" {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
		}
	}

	switch cfg.Driver {
	case "json":
		repo, err := store.OpenJSONFile(path)
		if err != nil {
			return nil, "", err
		}
		return repo, path, nil
	default:
		repo, err := store.OpenSQLite(path)
		if err != nil {
			return nil, "", err
		}
		return repo, path, nil
	}
}
