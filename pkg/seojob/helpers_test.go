package seojob_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/seojob"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobmemory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeGenerator returns metadata derived from the context title and fails
// for titles listed in failOn.
type fakeGenerator struct {
	calls  atomic.Int32
	failOn map[string]bool
	slugs  map[string]string
	delay  time.Duration
}

func (g *fakeGenerator) Generate(ctx context.Context, gc seojob.GenerationContext) (seojob.Metadata, error) {
	g.calls.Add(1)
	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return seojob.Metadata{}, ctx.Err()
		}
	}
	if g.failOn[gc.Title] {
		return seojob.Metadata{}, errors.New("rate limit exceeded for " + gc.Title)
	}
	return seojob.Metadata{
		Title:       gc.Title + " | Catalog",
		Description: "About " + gc.Title,
		Slug:        g.slugs[gc.Title],
		Keywords:    []string{gc.ContentKind},
	}, nil
}

type fixture struct {
	store *seojobmemory.Store
	gen   *fakeGenerator
	clock *fakeClock
	svc   *seojob.Service
}

func newFixture(opts ...seojob.Option) *fixture {
	clock := newFakeClock()
	store := seojobmemory.NewStore()
	store.SetClock(clock.Now)
	gen := &fakeGenerator{failOn: map[string]bool{}, slugs: map[string]string{}}

	opts = append([]seojob.Option{seojob.WithClock(clock.Now)}, opts...)
	return &fixture{
		store: store,
		gen:   gen,
		clock: clock,
		svc:   seojob.NewService(store, store, gen, opts...),
	}
}

func (f *fixture) addCollections(n int) []string {
	ids := make([]string, n)
	for i := range n {
		id := fmt.Sprintf("c%d", i+1)
		f.store.PutContent(seojob.Content{
			ID:    id,
			Kind:  seojob.KindCollection,
			Title: id,
		}, true)
		ids[i] = id
	}
	return ids
}

func (f *fixture) jobFor(kind seojob.TargetKind, id string) *seojob.Job {
	for _, j := range f.store.Jobs() {
		if j.TargetKind == kind && j.TargetID == id {
			return j
		}
	}
	return nil
}
