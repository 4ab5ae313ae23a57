package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/plaquekeeper/internal/client/models"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/plate"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/qr"
	"github.com/dmitrijs2005/plaquekeeper/internal/client/snapshot"
	"github.com/dmitrijs2005/plaquekeeper/internal/metrics"
	"github.com/stretchr/testify/require"
)

var errEncode = errors.New("encoder down")

// fakeEncoder returns "qr:<text>" or, when failing, errEncode.
type fakeEncoder struct {
	mu    sync.Mutex
	fail  bool
	calls []string
	// gate, when set, blocks each Encode until a value is received.
	gate chan struct{}
}

func (f *fakeEncoder) Encode(ctx context.Context, text string) (string, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.fail {
		return "", errEncode
	}
	return "qr:" + text, nil
}

func (f *fakeEncoder) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeEncoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

var _ qr.Encoder = (*fakeEncoder)(nil)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, time.May, 20, 9, 30, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func seqIDs(prefix string) func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("%s-%d", prefix, n.Add(1)) }
}

type storeFixture struct {
	snap    *snapshot.MemoryStore
	enc     *fakeEncoder
	clock   *testClock
	metrics *metrics.Metrics
	store   DataStore
}

func newStoreFixture(t *testing.T, extra ...Option) *storeFixture {
	t.Helper()
	f := &storeFixture{
		snap:    snapshot.NewMemoryStore(),
		enc:     &fakeEncoder{},
		clock:   newTestClock(),
		metrics: metrics.NewMetrics(nil),
	}
	f.store = f.open(t, extra...)
	return f
}

// open builds a fresh DataStore over the fixture's snapshot store.
func (f *storeFixture) open(t *testing.T, extra ...Option) DataStore {
	t.Helper()
	opts := append([]Option{
		WithClock(f.clock.Now),
		WithIDGenerator(seqIDs("id")),
		WithMetrics(f.metrics),
		WithPlateGenerator(plate.NewGenerator(rand.NewPCG(1, 1), f.clock.Now)),
	}, extra...)
	s, err := NewDataStore(context.Background(), f.snap, f.enc, opts...)
	require.NoError(t, err)
	return s
}

func sampleUserInput(nom string) models.UserInput {
	return models.UserInput{
		Email:    nom + "@transport.cd",
		Password: "pw-" + nom,
		Role:     models.RoleUser,
		Nom:      nom,
		PostNom:  "MUTOMBO",
		Prenom:   "Jean",
	}
}

func samplePlaqueInput(numero string) models.PlaqueInput {
	return models.PlaqueInput{
		Numero:      numero,
		Nom:         "KASONGO",
		PostNom:     "ILUNGA",
		Prenom:      "Marie",
		District:    "Lukunga",
		Territoire:  "Gombe",
		Secteur:     "Centre",
		Village:     "Kintambo",
		Province:    "Kinshasa",
		Nationalite: "Congolaise",
		Adresse:     "12 av. du Commerce",
		Telephone:   "+243810000000",
		Email:       "marie@example.cd",
		CreatedBy:   "1",
	}
}

func newPCG() rand.Source { return rand.NewPCG(42, 42) }

// constSource always returns the maximum value, so every draw picks the
// last sequence number and letter.
type constSource struct{}

func (constSource) Uint64() uint64 { return ^uint64(0) }
