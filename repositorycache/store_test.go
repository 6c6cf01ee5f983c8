package repositorycache_test

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-domain-repository/cache"
	"github.com/goliatone/go-domain-repository/pkg/testsupport"
	"github.com/goliatone/go-domain-repository/repository"
	"github.com/goliatone/go-domain-repository/repositorycache"
	"github.com/goliatone/go-domain-repository/storage/memory"
)

// countingStore wraps a store and counts the calls that reach it.
type countingStore struct {
	repository.Store[*testsupport.Widget, int64]
	mu    sync.Mutex
	calls map[string]int
}

func newCountingStore() *countingStore {
	base := memory.New(
		func(w *testsupport.Widget) int64 { return w.ID() },
		memory.WithKeyGenerator(memory.Sequence(), func(w *testsupport.Widget, id int64) *testsupport.Widget {
			return w.WithID(id)
		}),
		memory.WithUniqueIndex[*testsupport.Widget, int64]("name", (*testsupport.Widget).Name),
	)
	return &countingStore{Store: base, calls: map[string]int{}}
}

func (s *countingStore) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

func (s *countingStore) record(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[method]++
}

func (s *countingStore) Get(ctx context.Context, pk int64) (*testsupport.Widget, bool, error) {
	s.record("Get")
	return s.Store.Get(ctx, pk)
}

func (s *countingStore) All(ctx context.Context) ([]*testsupport.Widget, error) {
	s.record("All")
	return s.Store.All(ctx)
}

// mockCacheService is a map backed cache that records calls and can be told
// to fail deletes.
type mockCacheService struct {
	mu        sync.Mutex
	calls     []string
	storage   map[string]any
	deleteErr error
}

func newMockCacheService() *mockCacheService {
	return &mockCacheService{storage: map[string]any{}}
}

func (m *mockCacheService) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "GetOrFetch:"+key)

	if value, ok := m.storage[key]; ok {
		return value, nil
	}

	result := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})
	if !result[1].IsNil() {
		return nil, result[1].Interface().(error)
	}
	value := result[0].Interface()
	m.storage[key] = value
	return value, nil
}

func (m *mockCacheService) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "Delete:"+key)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.storage, key)
	return nil
}

func (m *mockCacheService) DeleteByPrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "DeleteByPrefix:"+prefix)
	for key := range m.storage {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(m.storage, key)
		}
	}
	return nil
}

func (m *mockCacheService) getCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func widgetKey(w *testsupport.Widget) int64 { return w.ID() }

func newSturdyc(t *testing.T) cache.CacheService {
	t.Helper()
	cfg := cache.DefaultConfig()
	cfg.Capacity = 100
	cfg.NumShards = 2
	cfg.TTL = time.Minute
	cfg.EarlyRefresh = nil
	svc, err := cache.NewCacheService(cfg)
	require.NoError(t, err)
	return svc
}

func TestCachedStore_GetIsCached(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	store := repositorycache.New[*testsupport.Widget, int64](base, newSturdyc(t), widgetKey)

	saved, err := store.Put(ctx, testsupport.NewWidget("gear"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, found, err := store.Get(ctx, saved.ID())
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, got.Equals(saved))
	}
	assert.Equal(t, 1, base.count("Get"))
}

func TestCachedStore_AbsenceIsCached(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	store := repositorycache.New[*testsupport.Widget, int64](base, newSturdyc(t), widgetKey)

	for i := 0; i < 2; i++ {
		_, found, err := store.Get(ctx, 99)
		require.NoError(t, err)
		assert.False(t, found)
	}
	assert.Equal(t, 1, base.count("Get"))
}

func TestCachedStore_PutInvalidates(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	store := repositorycache.New[*testsupport.Widget, int64](base, newSturdyc(t), widgetKey)

	saved, err := store.Put(ctx, testsupport.NewWidget("gear"))
	require.NoError(t, err)
	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	_, _, err = store.Get(ctx, saved.ID())
	require.NoError(t, err)

	_, err = store.Put(ctx, testsupport.NewWidgetBuilderFrom(saved).Color("blue").Build())
	require.NoError(t, err)
	_, err = store.Put(ctx, testsupport.NewWidget("flange"))
	require.NoError(t, err)

	got, found, err := store.Get(ctx, saved.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "blue", got.Color())

	all, err = store.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, 2, base.count("Get"))
	assert.Equal(t, 2, base.count("All"))
}

func TestCachedStore_AllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	store := repositorycache.New[*testsupport.Widget, int64](base, newSturdyc(t), widgetKey)

	for _, name := range []string{"gear", "flange", "sprocket"} {
		_, err := store.Put(ctx, testsupport.NewWidget(name))
		require.NoError(t, err)
	}

	first, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)
	want := append([]*testsupport.Widget(nil), first...)

	first[0], first[2] = first[2], first[0]
	first[1] = nil

	second, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, second)
	assert.Equal(t, 1, base.count("All"))
}

func TestCachedStore_PutFillsCachedAbsence(t *testing.T) {
	ctx := context.Background()
	base := newCountingStore()
	store := repositorycache.New[*testsupport.Widget, int64](base, newSturdyc(t), widgetKey)

	_, found, err := store.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, found)

	saved, err := store.Put(ctx, testsupport.NewWidget("first"))
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.ID())

	_, found, err = store.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	store := repositorycache.New[*testsupport.Widget, int64](newCountingStore(), newSturdyc(t), widgetKey)
	repo := repository.NewDefault[*testsupport.Widget, int64](store)

	saved, err := repo.Save(ctx, testsupport.NewWidget("gear"))
	require.NoError(t, err)
	_, found, err := repo.Find(ctx, saved.ID())
	require.NoError(t, err)
	require.True(t, found)

	require.NoError(t, repo.Remove(ctx, saved.ID()))

	_, found, err = repo.Find(ctx, saved.ID())
	require.NoError(t, err)
	assert.False(t, found)
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCachedStore_FailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	mock := newMockCacheService()
	store := repositorycache.New[*testsupport.Widget, int64](newCountingStore(), mock, widgetKey)

	_, err := store.Put(ctx, testsupport.NewWidget("dup"))
	require.NoError(t, err)
	before := len(mock.getCalls())

	_, err = store.Put(ctx, testsupport.NewWidget("dup"))
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err))
	assert.Len(t, mock.getCalls(), before, "no invalidation after a failed write")
}

func TestCachedStore_Keys(t *testing.T) {
	ctx := context.Background()
	mock := newMockCacheService()
	store := repositorycache.New[*testsupport.Widget, int64](newCountingStore(), mock, widgetKey)
	assert.Equal(t, "widget", store.Namespace())

	saved, err := store.Put(ctx, testsupport.NewWidget("gear"))
	require.NoError(t, err)
	_, _, _ = store.Get(ctx, saved.ID())
	_, _ = store.All(ctx)

	expected := []string{
		"Delete:widget::Get::1",
		"Delete:widget::All",
		"GetOrFetch:widget::Get::1",
		"GetOrFetch:widget::All",
	}
	assert.Equal(t, expected, mock.getCalls())
}

func TestCachedStore_InvalidationFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	mock := newMockCacheService()
	mock.deleteErr = errors.New("cache unavailable")
	store := repositorycache.New[*testsupport.Widget, int64](newCountingStore(), mock, widgetKey,
		repositorycache.WithLogger(zap.New(core)),
		repositorycache.WithNamespace("gadgets"),
	)

	_, err := store.Put(ctx, testsupport.NewWidget("gear"))

	require.NoError(t, err, "write succeeds even when invalidation fails")
	entries := logs.FilterMessage("cache invalidation failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "gadgets", entries[0].ContextMap()["namespace"])
}

func TestCachedStore_Purge(t *testing.T) {
	ctx := context.Background()
	mock := newMockCacheService()
	base := newCountingStore()
	store := repositorycache.New[*testsupport.Widget, int64](base, mock, widgetKey)

	for _, w := range testsupport.Widgets(t) {
		_, err := base.Put(ctx, w)
		require.NoError(t, err)
	}
	for id := int64(1); id <= 3; id++ {
		_, _, err := store.Get(ctx, id)
		require.NoError(t, err)
	}

	require.NoError(t, store.Purge(ctx))

	_, _, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, base.count("Get"))
	assert.Contains(t, mock.getCalls(), "DeleteByPrefix:widget::")
}

func TestCachedStore_FetchErrorNotCached(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")
	store := repositorycache.New[*testsupport.Widget, int64](failingStore{err: boom}, newSturdyc(t), widgetKey)

	_, _, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, boom)
	_, err = store.All(ctx)
	assert.ErrorIs(t, err, boom)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, int64) (*testsupport.Widget, bool, error) {
	return nil, false, f.err
}
func (f failingStore) Delete(context.Context, int64) error { return f.err }
func (f failingStore) Put(context.Context, *testsupport.Widget) (*testsupport.Widget, error) {
	return nil, f.err
}
func (f failingStore) All(context.Context) ([]*testsupport.Widget, error) { return nil, f.err }

func ExampleNew() {
	ctx := context.Background()
	svc, _ := cache.NewCacheService(cache.DefaultConfig())
	base := memory.New(
		func(w *testsupport.Widget) int64 { return w.ID() },
		memory.WithKeyGenerator(memory.Sequence(), func(w *testsupport.Widget, id int64) *testsupport.Widget {
			return w.WithID(id)
		}),
	)
	repo := repository.NewDefault[*testsupport.Widget, int64](
		repositorycache.New[*testsupport.Widget, int64](base, svc, widgetKey),
	)

	saved, _ := repo.Save(ctx, testsupport.NewWidget("sprocket"))
	got, found, _ := repo.Find(ctx, saved.ID())
	fmt.Println(found, got.Name())
	// Output: true sprocket
}
