package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/polyscout/polyscout/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory domain.SnapshotStore.
type fakeStore struct {
	objects map[string][]byte
	mtimes  map[string]time.Time
	putErr  error
	listErr error
	getErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: make(map[string][]byte),
		mtimes:  make(map[string]time.Time),
	}
}

func (s *fakeStore) Put(_ context.Context, path string, data []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[path] = data
	return nil
}

func (s *fakeStore) Get(_ context.Context, path string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (s *fakeStore) List(_ context.Context, prefix string) ([]domain.SnapshotInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.SnapshotInfo
	for path, data := range s.objects {
		if strings.HasPrefix(path, prefix) {
			out = append(out, domain.SnapshotInfo{
				Path:         path,
				Size:         int64(len(data)),
				LastModified: s.mtimes[path],
			})
		}
	}
	return out, nil
}

// fakeDirectives is a canned domain.DirectiveSource.
type fakeDirectives struct {
	directives []domain.Directive
	err        error
}

func (d *fakeDirectives) Open(context.Context) ([]domain.Directive, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.directives, nil
}

// fakeEvents is a canned domain.EventSource.
type fakeEvents struct {
	bySlug map[string]domain.Event
	top    []domain.Event
	topErr error
}

func (e *fakeEvents) EventBySlug(_ context.Context, slug string) (domain.Event, error) {
	ev, ok := e.bySlug[slug]
	if !ok {
		return domain.Event{}, domain.ErrNotFound
	}
	return ev, nil
}

func (e *fakeEvents) TopEvents(context.Context, int) ([]domain.Event, error) {
	if e.topErr != nil {
		return nil, e.topErr
	}
	return e.top, nil
}

// fakeResolver resolves from a fixed table and reports unknown queries as
// no-match.
type fakeResolver struct {
	table map[string]string
}

func (r *fakeResolver) Name() string { return "fake" }

func (r *fakeResolver) Resolve(_ context.Context, query string) (string, error) {
	slug, ok := r.table[query]
	if !ok {
		return "", domain.ErrNoMatch
	}
	return slug, nil
}

var errBoom = errors.New("boom")

// yesNoMarket builds a live two-outcome market with sensible defaults that
// individual tests override.
func yesNoMarket(ticker string, yes float64) domain.Market {
	return domain.Market{
		Ticker:        ticker,
		Question:      "Will it happen?",
		Active:        true,
		Outcomes:      `["Yes","No"]`,
		OutcomePrices: `["` + formatProb(yes) + `","` + formatProb(1-yes) + `"]`,
		Volume:        1000,
		Volume24h:     500,
		Liquidity:     200,
		EndDate:       "2026-12-31",
	}
}

func formatProb(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
