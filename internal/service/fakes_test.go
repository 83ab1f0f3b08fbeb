package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/logger"
	"github.com/listenupapp/binderkeep/internal/store"
)

// fakeAccount is an in-memory AccountStore that can be switched offline.
type fakeAccount struct {
	mu      sync.Mutex
	docs    map[string][]byte
	offline bool
	writes  int
}

func newFakeAccount() *fakeAccount {
	return &fakeAccount{docs: make(map[string][]byte)}
}

func (f *fakeAccount) GetAccountDocument(_ context.Context, userID, kind string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return nil, errors.Unavailable("permission denied")
	}
	return f.docs[userID+"/"+kind], nil
}

func (f *fakeAccount) PutAccountDocument(_ context.Context, userID, kind string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.offline {
		return errors.Unavailable("offline")
	}
	f.writes++
	f.docs[userID+"/"+kind] = body
	return nil
}

func (f *fakeAccount) setOffline(v bool) {
	f.mu.Lock()
	f.offline = v
	f.mu.Unlock()
}

func (f *fakeAccount) doc(userID, kind string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[userID+"/"+kind]
}

// fakeAdmin is a fixed AdminConfig.
type fakeAdmin struct {
	baselines  map[string][]domain.Slot
	exclusions domain.KeySet
	defaults   domain.DefaultCardOverrides
	custom     []domain.CustomEntry
}

func (f *fakeAdmin) Baseline(_ context.Context, key string) ([]domain.Slot, bool) {
	slots, ok := f.baselines[key]
	return domain.CloneSlots(slots), ok
}

func (f *fakeAdmin) Exclusions(context.Context) domain.KeySet { return f.exclusions }

func (f *fakeAdmin) DefaultCards(context.Context) domain.DefaultCardOverrides { return f.defaults }

func (f *fakeAdmin) CustomEntries(context.Context) []domain.CustomEntry { return f.custom }

// fakeCatalog serves printings and groups by id, ignoring language. Searches are keyed
// by "lang/name".
type fakeCatalog struct {
	printings map[string]*domain.Printing
	groups    map[string]*domain.Group
	search    map[string][]domain.PrintingBrief
	offline   bool
	lookups   int
}

func (f *fakeCatalog) SearchByName(_ context.Context, lang, name string) ([]domain.PrintingBrief, error) {
	if f.offline {
		return nil, errors.Unavailable("catalog offline")
	}
	return f.search[lang+"/"+name], nil
}

func (f *fakeCatalog) GetPrinting(_ context.Context, _, id string) (*domain.Printing, error) {
	f.lookups++
	if f.offline {
		return nil, errors.Unavailable("catalog offline")
	}
	if p, ok := f.printings[id]; ok {
		return p, nil
	}
	return nil, errors.NotFoundf("printing %s", id)
}

func (f *fakeCatalog) GetGroup(_ context.Context, _, id string) (*domain.Group, error) {
	if g, ok := f.groups[id]; ok {
		return g, nil
	}
	return nil, errors.NotFoundf("group %s", id)
}

// fakeSpecies serves a fixed base roster and localized names keyed by "lang/dexId".
type fakeSpecies struct {
	roster    []domain.Species
	names     map[string]string
	err       error
	nameCalls int
}

func (f *fakeSpecies) BaseRoster(context.Context) ([]domain.Species, error) {
	return f.roster, f.err
}

func (f *fakeSpecies) LocalizedName(_ context.Context, dexID int, lang string) (string, error) {
	f.nameCalls++
	if f.err != nil {
		return "", f.err
	}
	return f.names[lang+"/"+strconv.Itoa(dexID)], nil
}

func newTestDevice(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewInMemory(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// testClock returns a clock that advances one second per call.
func testClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestCollectionStore(t *testing.T, account AccountStore) (*CollectionStore, *store.Store) {
	t.Helper()
	device := newTestDevice(t)
	cs := NewCollectionStore(device, account, nil, logger.Discard())
	cs.now = testClock()
	return cs, device
}
