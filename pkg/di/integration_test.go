package di_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-domain-repository/entity"
	"github.com/goliatone/go-domain-repository/pkg/config"
	"github.com/goliatone/go-domain-repository/pkg/di"
	"github.com/goliatone/go-domain-repository/pkg/testsupport"
	"github.com/goliatone/go-domain-repository/repository"
	"github.com/goliatone/go-domain-repository/storage/bunstore"
)

type backend struct {
	name string
	cfg  func() *config.Config
}

func backends() []backend {
	return []backend{
		{name: "memory", cfg: config.Default},
		{name: "memory+cache", cfg: func() *config.Config { return withCache(config.Default()) }},
		{name: "sqlite", cfg: sqliteConfig},
		{name: "sqlite+cache", cfg: func() *config.Config { return withCache(sqliteConfig()) }},
	}
}

func widgetRepository(t *testing.T, c *di.Container) *repository.Default[*testsupport.Widget, int64] {
	t.Helper()
	return di.NewDefaultRepository[*testsupport.Widget, testsupport.WidgetRow, int64](
		c, testsupport.WidgetMapper{}, widgetMemoryOptions()...,
	)
}

func TestRepositoryLifecycle(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := widgetRepository(t, newContainer(t, b.cfg()))

			var saved []*testsupport.Widget
			for _, w := range testsupport.Widgets(t) {
				s, err := repo.Save(ctx, w)
				require.NoError(t, err)
				require.NotZero(t, s.ID(), "storage assigns the key")
				saved = append(saved, s)
			}

			got, found, err := repo.Find(ctx, saved[1].ID())
			require.NoError(t, err)
			require.True(t, found)
			assert.True(t, got.Equals(saved[1]))
			assert.True(t, entity.SameIdentity[int64](got, saved[1]))

			updated, err := repo.Save(ctx, testsupport.NewWidgetBuilderFrom(saved[1]).Color("blue").Build())
			require.NoError(t, err)
			assert.Equal(t, saved[1].ID(), updated.ID())

			got, found, err = repo.FindByPrimaryKey(ctx, saved[1].ID())
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "blue", got.Color())

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			require.Len(t, all, len(saved))
			for i := range saved {
				assert.Equal(t, saved[i].ID(), all[i].ID())
			}

			require.NoError(t, repo.Remove(ctx, saved[0].ID()))
			require.NoError(t, repo.Remove(ctx, saved[0].ID()), "removing twice is a no-op")

			_, found, err = repo.Find(ctx, saved[0].ID())
			require.NoError(t, err)
			assert.False(t, found)

			all, err = repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, len(saved)-1)
		})
	}
}

func TestRepositoryErrors(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := widgetRepository(t, newContainer(t, b.cfg()))

			_, err := repo.Save(ctx, testsupport.NewWidget("gear"))
			require.NoError(t, err)

			_, err = repo.Save(ctx, testsupport.NewWidget("gear"))
			require.Error(t, err)
			assert.True(t, repository.IsConflict(err), "got %v", err)

			_, err = repo.Save(ctx, testsupport.NewWidget(""))
			require.Error(t, err)
			assert.True(t, repository.IsInvalid(err), "got %v", err)

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1, "failed saves leave storage untouched")
		})
	}
}

func TestAccountRepositoryOnSQLite(t *testing.T) {
	ctx := context.Background()
	c := newContainer(t, sqliteConfig())

	store := bunstore.New[*testsupport.Account, testsupport.AccountRow, int64](c.DB(), testsupport.AccountMapper{})
	repo := di.NewRepository[*testsupport.Account, uuid.UUID, int64](
		c, store, bunstore.ColumnResolver[uuid.UUID](store, "uid", func(id uuid.UUID) any { return id.String() }),
	)

	var saved []*testsupport.Account
	for _, a := range testsupport.Accounts(t) {
		s, err := repo.Save(ctx, a)
		require.NoError(t, err)
		saved = append(saved, s)
	}

	got, found, err := repo.Find(ctx, saved[0].ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, saved[0].Email(), got.Email())

	_, found, err = repo.Find(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Remove(ctx, saved[0].ID()))
	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, saved[1].ID(), all[0].ID())
}

func TestConcurrentAccess(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := widgetRepository(t, newContainer(t, b.cfg()))

			const workers = 10
			const perWorker = 10

			var wg sync.WaitGroup
			errs := make(chan error, workers*perWorker)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(worker int) {
					defer wg.Done()
					for j := 0; j < perWorker; j++ {
						saved, err := repo.Save(ctx, testsupport.NewWidget(fmt.Sprintf("w-%d-%d", worker, j)))
						if err != nil {
							errs <- err
							continue
						}
						if _, found, err := repo.Find(ctx, saved.ID()); err != nil || !found {
							errs <- fmt.Errorf("worker %d: find %d: found=%v err=%v", worker, saved.ID(), found, err)
						}
					}
				}(i)
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				t.Error(err)
			}

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, workers*perWorker)
		})
	}
}

func BenchmarkFind(b *testing.B) {
	for _, be := range backends() {
		b.Run(be.name, func(b *testing.B) {
			ctx := context.Background()
			c, err := di.NewContainer(be.cfg())
			require.NoError(b, err)
			defer c.Close()
			require.NoError(b, c.Migrate(ctx, (*testsupport.WidgetRow)(nil)))

			repo := di.NewDefaultRepository[*testsupport.Widget, testsupport.WidgetRow, int64](
				c, testsupport.WidgetMapper{}, widgetMemoryOptions()...,
			)
			saved, err := repo.Save(ctx, testsupport.NewWidget("bench"))
			require.NoError(b, err)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := repo.Find(ctx, saved.ID()); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
