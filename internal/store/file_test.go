package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinifier/tinifier/internal/shortener"
	"github.com/tinifier/tinifier/internal/store"
	"go.uber.org/zap"
)

func newFileStore(t *testing.T, path string) *store.FileStore {
	t.Helper()

	s, err := store.NewFileStore(path, zap.NewNop())
	require.NoError(t, err)

	return s
}

func TestFileStore_Insert(t *testing.T) {
	t.Run("creates the file lazily on first write", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store")
		s := newFileStore(t, path)

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "file must not exist before the first write")

		_, err = s.Insert(context.Background(), "abc123",
			shortener.NewEntry("exampledotcom", "abc123", "alice"))
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "abc123:exampledotcom,"))
		assert.True(t, strings.HasSuffix(string(data), "\n"))
	})

	t.Run("refuses an occupied code", func(t *testing.T) {
		s := newFileStore(t, filepath.Join(t.TempDir(), "store"))

		_, err := s.Insert(context.Background(), "abc123",
			shortener.NewEntry("exampledotcom", "abc123", "alice"))
		require.NoError(t, err)

		_, err = s.Insert(context.Background(), "abc123",
			shortener.NewEntry("otherdotcom", "abc123", "bob"))
		assert.ErrorIs(t, err, shortener.ErrExists)
	})

	t.Run("rolls back the cache when the append fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store")
		s := newFileStore(t, path)

		// Occupy the path with a directory so the append cannot open it.
		require.NoError(t, os.Mkdir(path, 0o755))

		_, err := s.Insert(context.Background(), "abc123",
			shortener.NewEntry("exampledotcom", "abc123", "alice"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, shortener.ErrExists, "a write fault is not an existence conflict")

		ok, cerr := s.Contains(context.Background(), "abc123")
		require.NoError(t, cerr)
		assert.False(t, ok, "failed insert must not leave the entry cached")
	})
}

func TestFileStore_TwoLifetimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")

	first := newFileStore(t, path)

	expires := time.Now().Add(time.Hour)
	original := shortener.Entry{
		LongURL:   "exampledotcom",
		ShortURL:  "abc123",
		ExpiresAt: &expires,
		CreatedAt: time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		Author:    "alice",
	}

	_, err := first.Insert(context.Background(), "abc123", original)
	require.NoError(t, err)

	// A second lifetime loads the entry back, but the line grammar
	// discards timestamps: expiration resets to never and creation to the
	// load time.
	second := newFileStore(t, path)

	got, err := second.Get(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "exampledotcom", got.LongURL)
	assert.Equal(t, "alice", got.Author)
	assert.Nil(t, got.ExpiresAt)
	assert.NotEqual(t, original.CreatedAt, got.CreatedAt)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Second)
}

func TestFileStore_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")

	good := shortener.NewEntry("exampledotcom", "abc123", "alice")
	content := strings.Join([]string{
		"complete garbage",
		good.MarshalLine(),
		"missing:fields,only",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := newFileStore(t, path)

	got, err := s.Get(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "exampledotcom", got.LongURL)

	_, err = s.Get(context.Background(), "complete garbage")
	assert.ErrorIs(t, err, shortener.ErrNotFound)
}

func TestFileStore_Get(t *testing.T) {
	t.Run("is served from the cache, never the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store")
		s := newFileStore(t, path)

		_, err := s.Insert(context.Background(), "abc123",
			shortener.NewEntry("exampledotcom", "abc123", "alice"))
		require.NoError(t, err)

		// Deleting the backing file must not affect reads.
		require.NoError(t, os.Remove(path))

		got, err := s.Get(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "exampledotcom", got.LongURL)
	})

	t.Run("returns ErrNotFound on a miss", func(t *testing.T) {
		s := newFileStore(t, filepath.Join(t.TempDir(), "store"))

		_, err := s.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestFileStore_Remove(t *testing.T) {
	t.Run("deletes from cache and file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store")
		s := newFileStore(t, path)

		_, err := s.Insert(context.Background(), "abc123",
			shortener.NewEntry("exampledotcom", "abc123", "alice"))
		require.NoError(t, err)

		removed, err := s.Remove(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "exampledotcom", removed.LongURL)

		_, err = s.Get(context.Background(), "abc123")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		// The removal survives a restart.
		reloaded := newFileStore(t, path)
		_, err = reloaded.Get(context.Background(), "abc123")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("matches the exact record key, not substrings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store")
		s := newFileStore(t, path)

		// "ab" is a prefix of the key "abc" and a substring of zz9's long
		// URL; removing "ab" must leave both untouched.
		for code, long := range map[string]string{
			"ab":  "exampledotcom",
			"abc": "otherdotcom",
			"zz9": "helloabworld",
		} {
			_, err := s.Insert(context.Background(), code,
				shortener.NewEntry(long, code, "alice"))
			require.NoError(t, err)
		}

		_, err := s.Remove(context.Background(), "ab")
		require.NoError(t, err)

		reloaded := newFileStore(t, path)

		_, err = reloaded.Get(context.Background(), "ab")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		got, err := reloaded.Get(context.Background(), "abc")
		require.NoError(t, err)
		assert.Equal(t, "otherdotcom", got.LongURL)

		got, err = reloaded.Get(context.Background(), "zz9")
		require.NoError(t, err)
		assert.Equal(t, "helloabworld", got.LongURL)
	})

	t.Run("keeps the trailing newline so later appends stay line-oriented", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store")
		s := newFileStore(t, path)

		for _, code := range []string{"aa1", "bb2"} {
			_, err := s.Insert(context.Background(), code,
				shortener.NewEntry("exampledotcom", code, "alice"))
			require.NoError(t, err)
		}

		_, err := s.Remove(context.Background(), "aa1")
		require.NoError(t, err)

		_, err = s.Insert(context.Background(), "cc3",
			shortener.NewEntry("otherdotcom", "cc3", "alice"))
		require.NoError(t, err)

		reloaded := newFileStore(t, path)

		for _, code := range []string{"bb2", "cc3"} {
			_, err := reloaded.Get(context.Background(), code)
			assert.NoError(t, err, "entry %s must survive the rewrite-then-append cycle", code)
		}
	})

	t.Run("returns ErrNotFound on a miss", func(t *testing.T) {
		s := newFileStore(t, filepath.Join(t.TempDir(), "store"))

		_, err := s.Remove(context.Background(), "missing")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestFileStore_Contains(t *testing.T) {
	s := newFileStore(t, filepath.Join(t.TempDir(), "store"))

	ok, err := s.Contains(context.Background(), "abc123")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _ = s.Insert(context.Background(), "abc123",
		shortener.NewEntry("exampledotcom", "abc123", "alice"))

	ok, err = s.Contains(context.Background(), "abc123")
	require.NoError(t, err)
	assert.True(t, ok)
}
