package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/tripkeeper/internal/common"
	"github.com/dmitrijs2005/tripkeeper/internal/docstore"
	"github.com/dmitrijs2005/tripkeeper/internal/logging"
)

// PollingStore implements docstore.Store over the API client. Documents are
// versioned server-side, so a subscription is a cheap poll loop that
// delivers a callback whenever the observed version changes.
type PollingStore struct {
	client   Client
	log      logging.Logger
	interval time.Duration
}

func NewPollingStore(client Client, log logging.Logger, interval time.Duration) *PollingStore {
	return &PollingStore{
		client:   client,
		log:      log.With("component", "docstore"),
		interval: interval,
	}
}

func (s *PollingStore) Get(ctx context.Context, path string) (*docstore.Document, error) {
	return s.client.GetDocument(ctx, path)
}

func (s *PollingStore) Set(ctx context.Context, path string, fields map[string]any, merge bool) error {
	_, err := s.client.SetDocument(ctx, path, fields, merge)
	return err
}

func (s *PollingStore) Delete(ctx context.Context, path string) error {
	return s.client.DeleteDocument(ctx, path)
}

// versionAbsent marks a path with no document, so a later delete is still a
// visible transition.
const versionAbsent int64 = -1

// Subscribe starts a poll loop for path. The callback receives the initial
// snapshot and then every observed change; a missing document is delivered
// as nil. Unsubscribe stops the loop and is idempotent.
func (s *PollingStore) Subscribe(path string, fn func(*docstore.Document)) (docstore.Subscription, error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &pollSubscription{cancel: cancel}

	go s.poll(ctx, path, fn)
	return sub, nil
}

func (s *PollingStore) poll(ctx context.Context, path string, fn func(*docstore.Document)) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Force delivery of the first successful observation.
	lastVersion := int64(-2)

	for {
		// Passing the last seen version lets the server answer an
		// unchanged document without a body.
		doc, changed, err := s.client.GetDocumentIfChanged(ctx, path, lastVersion)
		if ctx.Err() != nil {
			return
		}
		switch {
		case errors.Is(err, common.ErrorNotFound):
			if lastVersion != versionAbsent {
				lastVersion = versionAbsent
				fn(nil)
			}
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			s.log.Debug(ctx, "document poll failed", "path", path, "error", err)
		case changed:
			lastVersion = doc.Version
			fn(doc)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type pollSubscription struct {
	once   sync.Once
	cancel context.CancelFunc
}

func (s *pollSubscription) Unsubscribe() {
	s.once.Do(s.cancel)
}
