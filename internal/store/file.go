package store

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tinifier/tinifier/internal/shortener"
	"go.uber.org/zap"
)

// FileStore mirrors an append-only line file with an in-memory read cache.
// Reads are served from the cache only; the file is read once at startup
// and rewritten only on Remove. The store assumes exclusive single-process
// access to its backing file — there is no file locking, and a second
// process sharing the path can interleave appends or race the rewrite.
type FileStore struct {
	mu     sync.Mutex
	path   string
	cache  map[string]shortener.Entry
	logger *zap.Logger
}

// NewFileStore opens (or lazily creates on first write) the backing file at
// path and loads every parseable line into the cache. Malformed lines are
// skipped, counted, and reported through the log rather than aborting the
// load.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		cache:  make(map[string]shortener.Entry),
		logger: logger,
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}

		return nil, fmt.Errorf("open store file %s: %w", path, err)
	}
	defer file.Close()

	skipped := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		e, err := shortener.ParseLine(line)
		if err != nil {
			skipped++

			s.logger.Debug("skipping malformed entry line", zap.Error(err))

			continue
		}

		s.cache[e.ShortURL] = e
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read store file %s: %w", path, err)
	}

	if skipped > 0 {
		s.logger.Warn("skipped malformed entry lines during load",
			zap.String("path", path),
			zap.Int("skipped", skipped),
			zap.Int("loaded", len(s.cache)),
		)
	}

	return s, nil
}

// Insert is write-through: the cache is updated first, then the serialized
// line is appended to the file. A failed append rolls the cache back and is
// returned to the caller, so "already exists" and "write failed" stay
// distinguishable.
func (s *FileStore) Insert(_ context.Context, code string, e shortener.Entry) (*shortener.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache[code]; ok {
		return nil, shortener.ErrExists
	}

	s.cache[code] = e

	if err := s.appendLine(e); err != nil {
		delete(s.cache, code)

		return nil, fmt.Errorf("append entry to %s: %w", s.path, err)
	}

	return &e, nil
}

// Get is served entirely from the cache; the file is never re-read.
func (s *FileStore) Get(_ context.Context, code string) (*shortener.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &e, nil
}

// Remove rewrites the file without the record stored under code, then drops
// it from the cache. Lines are matched on the exact record key (the text
// before the first ':'), never by substring, so a code that happens to
// appear inside another record does not take that record with it. The
// rewrite goes through a temp file and rename so a crash mid-write cannot
// truncate the store.
func (s *FileStore) Remove(_ context.Context, code string) (*shortener.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.cache[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	if err := s.rewriteWithout(code); err != nil {
		return nil, fmt.Errorf("remove entry from %s: %w", s.path, err)
	}

	delete(s.cache, code)

	return &e, nil
}

func (s *FileStore) Contains(_ context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.cache[code]

	return ok, nil
}

func (s *FileStore) appendLine(e shortener.Entry) error {
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := file.WriteString(e.MarshalLine() + "\n"); err != nil {
		file.Close()

		return err
	}

	return file.Close()
}

func (s *FileStore) rewriteWithout(code string) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	var kept []string

	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}

		key, _, found := strings.Cut(line, ":")
		if found && key == code {
			continue
		}

		kept = append(kept, line)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp")
	if err != nil {
		return err
	}

	var content string
	if len(kept) > 0 {
		content = strings.Join(kept, "\n") + "\n"
	}

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

// Compile-time check.
var _ shortener.Store = (*FileStore)(nil)
