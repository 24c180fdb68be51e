package sync

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/kozko2001/obsidian-wallabag/pkg/domain"
)

// Client is the remote API surface the syncer needs
type Client interface {
	Auth(ctx context.Context, creds domain.Credentials) (*domain.Token, error)
	FetchEntries(ctx context.Context, token *domain.Token) ([]domain.Entry, error)
}

// Converter translates an entry's HTML body to markdown
type Converter interface {
	Convert(e domain.Entry) (domain.Entry, error)
}

// Extractor pulls readable text from an entry's origin URL, used as a
// fallback for entries the server returns without content
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Vault reconciles one entry into its local note file
type Vault interface {
	Sync(ctx context.Context, e domain.Entry) (domain.SyncStatus, string, error)
}

// History records completed runs; optional
type History interface {
	RecordRun(ctx context.Context, result *domain.RunResult, runErr error) (int64, error)
}

// Syncer drives one end-to-end run: authenticate, fetch all entries,
// filter archived, convert, and reconcile each entry concurrently.
// Auth and fetch failures are fatal to the run; per-entry conversion and
// reconciliation failures are isolated and reported, never escalated.
type Syncer struct {
	client     Client
	converter  Converter
	extractor  Extractor // nil disables the fallback
	vault      Vault
	history    History // nil disables run recording
	creds      domain.Credentials
	maxWorkers int
}

// Config holds syncer dependencies and settings
type Config struct {
	Client      Client
	Converter   Converter
	Extractor   Extractor
	Vault       Vault
	History     History
	Credentials domain.Credentials
	MaxWorkers  int
}

// NewSyncer creates a syncer from the provided configuration
func NewSyncer(cfg Config) *Syncer {
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = 5
	}
	return &Syncer{
		client:     cfg.Client,
		converter:  cfg.Converter,
		extractor:  cfg.Extractor,
		vault:      cfg.Vault,
		history:    cfg.History,
		creds:      cfg.Credentials,
		maxWorkers: cfg.MaxWorkers,
	}
}

// Run executes one sync run and returns its aggregated result. The run
// completes only after every dispatched reconciliation has settled; entries
// that fail do not fail the run itself.
func (s *Syncer) Run(ctx context.Context) (*domain.RunResult, error) {
	result := &domain.RunResult{StartedAt: time.Now().UTC()}

	token, err := s.client.Auth(ctx, s.creds)
	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		s.record(ctx, result, err)
		return nil, err
	}

	entries, err := s.client.FetchEntries(ctx, token)
	if err != nil {
		lgr.Printf("[ERROR] %v", err)
		s.record(ctx, result, err)
		return nil, err
	}

	// archived entries are done reading, only unarchived ones become notes
	pending := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Archived {
			pending = append(pending, e)
		}
	}
	result.Total = len(pending)
	lgr.Printf("[INFO] syncing %d of %d entries", len(pending), len(entries))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxWorkers)

	for _, e := range pending {
		g.Go(func() error {
			outcome := s.syncEntry(gctx, e)
			mu.Lock()
			result.Add(outcome)
			mu.Unlock()
			return nil
		})
	}

	// the group never returns an error, per-entry failures are collected
	_ = g.Wait()
	result.FinishedAt = time.Now().UTC()

	s.record(ctx, result, nil)
	lgr.Printf("[INFO] sync done: %d created, %d updated, %d failed", result.Created, result.Updated, result.Failed)
	return result, nil
}

// syncEntry converts and reconciles a single entry; any failure is
// captured in the outcome instead of propagating
func (s *Syncer) syncEntry(ctx context.Context, e domain.Entry) domain.EntryOutcome {
	outcome := domain.EntryOutcome{EntryID: e.ID, Title: e.Title, URL: e.URL}

	if e.Content == "" && s.extractor != nil {
		text, err := s.extractor.Extract(ctx, e.URL)
		if err != nil {
			lgr.Printf("[WARN] fallback extraction for entry %d (%s): %v", e.ID, e.URL, err)
		} else {
			e.Content = text
		}
	}

	converted, err := s.converter.Convert(e)
	if err != nil {
		lgr.Printf("[WARN] entry %d (%s): %v", e.ID, e.Title, err)
		outcome.Status = domain.StatusFailed
		outcome.Err = err
		return outcome
	}

	status, path, err := s.vault.Sync(ctx, converted)
	outcome.Path = path
	if err != nil {
		lgr.Printf("[WARN] reconcile entry %d (%s): %v", e.ID, e.Title, err)
		outcome.Status = domain.StatusFailed
		outcome.Err = err
		return outcome
	}

	outcome.Status = status
	lgr.Printf("[DEBUG] %s %s", status, path)
	return outcome
}

// record persists the run in history when a store is configured
func (s *Syncer) record(ctx context.Context, result *domain.RunResult, runErr error) {
	if s.history == nil {
		return
	}
	if result.FinishedAt.IsZero() {
		result.FinishedAt = time.Now().UTC()
	}
	if _, err := s.history.RecordRun(ctx, result, runErr); err != nil {
		lgr.Printf("[WARN] failed to record run: %v", err)
	}
}
