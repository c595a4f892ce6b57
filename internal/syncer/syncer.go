// Package syncer reconciles credential records created while offline.
package syncer

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/evcharge-agent/internal/model"
	"github.com/iliyamo/evcharge-agent/internal/netcheck"
)

// Store is the slice of the credential store the syncer needs.
type Store interface {
	Unsynced(ctx context.Context) ([]model.Credential, error)
	MarkSynced(ctx context.Context, identifier string, at time.Time) error
}

// Syncer periodically marks local-only registrations as synced once
// the gateway is reachable again.  Best effort, at least once, no
// conflict detection.
//
// TODO: re-submit the registration payload to the gateway before
// flipping the flag.  As written (and as in the app this replaces), a
// registration created while offline never reaches the server; the
// record is merely marked synced on the next reachable tick.
type Syncer struct {
	store    Store
	net      netcheck.Checker
	interval time.Duration
	now      func() time.Time
}

func New(st Store, net netcheck.Checker, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Syncer{store: st, net: net, interval: interval, now: time.Now}
}

// Run loops until ctx is done, attempting one pass per tick.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				log.Printf("syncer: pass failed: %v", err)
			}
		}
	}
}

// SyncOnce marks every unsynced record as synced when the gateway is
// reachable.  Unreachable is not an error; the next tick retries.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	if !s.net.Online() {
		return nil
	}
	pending, err := s.store.Unsynced(ctx)
	if err != nil {
		return err
	}
	for _, c := range pending {
		if err := s.store.MarkSynced(ctx, c.Identifier, s.now().UTC()); err != nil {
			return err
		}
		log.Printf("syncer: marked %s as synced", c.Identifier)
	}
	return nil
}
