package vocabulary

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu      sync.Mutex
	sizes   []map[string]int
	errored int
}

func (o *recordingObserver) ObserveVocabularyReload(source string, sizes map[string]int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.errored++
		return
	}
	o.sizes = append(o.sizes, sizes)
}

func (o *recordingObserver) reloads() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.sizes)
}

func TestStore_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vocab.tsv", referenceTable)
	observer := &recordingObserver{}

	store := NewStore(NewLoader(LoaderConfig{}, nil, nil), path, observer, nil)

	_, err := store.Get()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Nil(t, store.Current())

	require.NoError(t, store.Reload(context.Background()))
	first := store.Current()
	require.NotNil(t, first)
	assert.Equal(t, 2, observer.sizes[0][FieldSource])

	// A broken file keeps the previous vocabulary.
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	assert.Error(t, store.Reload(context.Background()))
	assert.Same(t, first, store.Current())
	assert.Equal(t, 1, observer.errored)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "vocab.tsv", referenceTable)
	observer := &recordingObserver{}
	store := NewStore(NewLoader(LoaderConfig{}, nil, nil), path, observer, nil)
	require.NoError(t, store.Reload(context.Background()))

	watcher, err := NewWatcher(path, 20*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = watcher.Watch(ctx, func() error { return store.Reload(ctx) })
	}()
	defer watcher.Stop()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// Unrelated files in the same directory are ignored.
	writeFile(t, dir, "other.tsv", "x\n")
	updated := referenceTable + "\t\tBreast milk\t\tRat\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	require.Eventually(t, func() bool {
		return store.Current().Allowed(FieldSource).Contains("rat")
	}, 2*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, observer.reloads(), 2)
}

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var mu sync.Mutex
	calls := 0
	for i := 0; i < 5; i++ {
		d.Trigger(func() {
			mu.Lock()
			calls++
			mu.Unlock()
		})
	}

	time.Sleep(150 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()

	d.Stop()
	d.Trigger(func() { t.Error("callback after Stop") })
	time.Sleep(60 * time.Millisecond)
}

func TestScheduler(t *testing.T) {
	path := writeFile(t, t.TempDir(), "vocab.tsv", referenceTable)
	store := NewStore(NewLoader(LoaderConfig{}, nil, nil), filepath.Clean(path), nil, nil)

	t.Run("empty schedule is a no-op", func(t *testing.T) {
		s := NewScheduler(store, "", nil)
		require.NoError(t, s.Start(context.Background()))
		assert.False(t, s.IsRunning())
		assert.Nil(t, s.NextRun())
	})

	t.Run("invalid schedule", func(t *testing.T) {
		s := NewScheduler(store, "every tuesday", nil)
		assert.Error(t, s.Start(context.Background()))
	})

	t.Run("runs and stops with context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		s := NewScheduler(store, "@every 1h", nil)
		require.NoError(t, s.Start(ctx))
		assert.True(t, s.IsRunning())
		require.NotNil(t, s.NextRun())
		assert.WithinDuration(t, time.Now().Add(time.Hour), *s.NextRun(), time.Minute)

		cancel()
		assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
	})
}
