package repository

import (
	"context"
	"fmt"
	"sync"

	"academic-records/internal/infrastructure/flatfile"
	"academic-records/pkg/apperror"
	"academic-records/pkg/logger"
	"academic-records/pkg/validator"

	"github.com/sirupsen/logrus"
)

// UniqueField is a secondary column that must not repeat across records.
type UniqueField[T any] struct {
	Name  string
	Value func(T) string
}

// StoreOptions configures a FileStore for one entity type.
type StoreOptions[T any, K comparable] struct {
	Name     string
	Path     string
	Capacity int
	Codec    flatfile.Codec[T]
	Key      func(T) K

	// ID and SetID enable NextID and Create.
	ID     func(T) int
	SetID  func(*T, int)
	IDBase int

	// Deactivate turns Delete into a soft delete.
	Deactivate func(*T)
	Normalize  func(*T)
	Unique     []UniqueField[T]
}

// FileStore keeps one entity collection in a flat file. Every call reloads
// the file and every mutation rewrites it, all while holding the lock for
// that file.
type FileStore[T any, K comparable] struct {
	opts StoreOptions[T, K]
	mu   *sync.Mutex
}

var (
	fileLocksMu sync.Mutex
	fileLocks   = map[string]*sync.Mutex{}
)

// lockFor returns the mutex shared by every store backed by path.
func lockFor(path string) *sync.Mutex {
	fileLocksMu.Lock()
	defer fileLocksMu.Unlock()

	mu, ok := fileLocks[path]
	if !ok {
		mu = &sync.Mutex{}
		fileLocks[path] = mu
	}
	return mu
}

// NewFileStore creates a store over opts.Path.
func NewFileStore[T any, K comparable](opts StoreOptions[T, K]) *FileStore[T, K] {
	if opts.IDBase < 1 {
		opts.IDBase = 1
	}
	return &FileStore[T, K]{
		opts: opts,
		mu:   lockFor(opts.Path),
	}
}

func (s *FileStore[T, K]) Name() string { return s.opts.Name }
func (s *FileStore[T, K]) Path() string { return s.opts.Path }

func (s *FileStore[T, K]) load() (flatfile.DecodeResult[T], error) {
	result, err := flatfile.ReadFile(s.opts.Path, s.opts.Codec, s.opts.Capacity)
	if err != nil {
		return result, fmt.Errorf("failed to load %s: %w", s.opts.Name, err)
	}
	return result, nil
}

// save rewrites the file. retained carries the rows the last load could not
// read, so they survive the rewrite unchanged.
func (s *FileStore[T, K]) save(records []T, retained []string) error {
	if err := flatfile.WriteFile(s.opts.Path, s.opts.Codec, records, retained); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.opts.Name, err)
	}
	return nil
}

func (s *FileStore[T, K]) prepare(rec *T) error {
	if s.opts.Normalize != nil {
		s.opts.Normalize(rec)
	}
	return validator.Check(rec)
}

func (s *FileStore[T, K]) indexOf(records []T, key K) int {
	for i := range records {
		if s.opts.Key(records[i]) == key {
			return i
		}
	}
	return -1
}

// checkUnique reports a secondary-key collision with any record other than skip.
func (s *FileStore[T, K]) checkUnique(records []T, rec T, skip int) error {
	for _, u := range s.opts.Unique {
		want := u.Value(rec)
		for i := range records {
			if i == skip {
				continue
			}
			if u.Value(records[i]) == want {
				return fmt.Errorf("%w: %s %s %q already exists", apperror.ErrDuplicateKey, s.opts.Name, u.Name, want)
			}
		}
	}
	return nil
}

func (s *FileStore[T, K]) full(n int) bool {
	return s.opts.Capacity > 0 && n >= s.opts.Capacity
}

func (s *FileStore[T, K]) insertLocked(loaded flatfile.DecodeResult[T], rec T) error {
	records := loaded.Records
	if idx := s.indexOf(records, s.opts.Key(rec)); idx >= 0 {
		return fmt.Errorf("%w: %s %v already exists", apperror.ErrDuplicateKey, s.opts.Name, s.opts.Key(rec))
	}
	if err := s.checkUnique(records, rec, -1); err != nil {
		return err
	}
	if s.full(len(records)) {
		return fmt.Errorf("%w: %s holds %d records", apperror.ErrCapacityExceeded, s.opts.Name, s.opts.Capacity)
	}

	if err := s.save(append(records, rec), loaded.Retained); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"store": s.opts.Name,
		"key":   s.opts.Key(rec),
	}).Debug("Record inserted")
	return nil
}

// Insert adds rec unless its key, or any unique field, is already taken.
func (s *FileStore[T, K]) Insert(ctx context.Context, rec *T) error {
	if rec == nil {
		return fmt.Errorf("%w: %s record is nil", apperror.ErrInvalidArgument, s.opts.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	candidate := *rec
	if err := s.prepare(&candidate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return err
	}

	if err := s.insertLocked(result, candidate); err != nil {
		return err
	}
	*rec = candidate
	return nil
}

// Create assigns the next free id to rec and inserts it under one lock, so
// concurrent callers never receive the same id.
func (s *FileStore[T, K]) Create(ctx context.Context, rec *T) (int, error) {
	if rec == nil {
		return 0, fmt.Errorf("%w: %s record is nil", apperror.ErrInvalidArgument, s.opts.Name)
	}
	if s.opts.ID == nil || s.opts.SetID == nil {
		return 0, fmt.Errorf("%s does not generate ids", s.opts.Name)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return 0, err
	}

	candidate := *rec
	id := s.nextID(result.Records)
	s.opts.SetID(&candidate, id)
	if err := s.prepare(&candidate); err != nil {
		return 0, err
	}

	if err := s.insertLocked(result, candidate); err != nil {
		return 0, err
	}
	*rec = candidate
	return id, nil
}

// FindByKey returns a copy of the record; changes must go through Update.
func (s *FileStore[T, K]) FindByKey(ctx context.Context, key K) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return zero, err
	}

	idx := s.indexOf(result.Records, key)
	if idx < 0 {
		return zero, fmt.Errorf("%w: %s %v", apperror.ErrNotFound, s.opts.Name, key)
	}
	return result.Records[idx], nil
}

// List returns up to limit records in file order.
func (s *FileStore[T, K]) List(ctx context.Context, limit int) ([]T, error) {
	return s.Filter(ctx, nil, limit)
}

// Filter returns up to limit records matching match, in file order.
// A nil match selects everything.
func (s *FileStore[T, K]) Filter(ctx context.Context, match func(T) bool, limit int) ([]T, error) {
	if limit <= 0 {
		return []T{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]T, 0)
	for _, rec := range result.Records {
		if len(out) >= limit {
			break
		}
		if match == nil || match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Count returns how many records satisfy match.
func (s *FileStore[T, K]) Count(ctx context.Context, match func(T) bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, rec := range result.Records {
		if match == nil || match(rec) {
			n++
		}
	}
	return n, nil
}

// Update replaces every field of the stored record with the same key.
func (s *FileStore[T, K]) Update(ctx context.Context, rec *T) error {
	if rec == nil {
		return fmt.Errorf("%w: %s record is nil", apperror.ErrInvalidArgument, s.opts.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	candidate := *rec
	if err := s.prepare(&candidate); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return err
	}

	key := s.opts.Key(candidate)
	idx := s.indexOf(result.Records, key)
	if idx < 0 {
		return fmt.Errorf("%w: %s %v", apperror.ErrNotFound, s.opts.Name, key)
	}
	if err := s.checkUnique(result.Records, candidate, idx); err != nil {
		return err
	}

	result.Records[idx] = candidate
	if err := s.save(result.Records, result.Retained); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{"store": s.opts.Name, "key": key}).Debug("Record updated")
	*rec = candidate
	return nil
}

// Delete deactivates the record when the store uses soft deletes, otherwise
// removes it and keeps the remaining records in order.
func (s *FileStore[T, K]) Delete(ctx context.Context, key K) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return err
	}

	idx := s.indexOf(result.Records, key)
	if idx < 0 {
		return fmt.Errorf("%w: %s %v", apperror.ErrNotFound, s.opts.Name, key)
	}

	records := result.Records
	mode := "hard"
	if s.opts.Deactivate != nil {
		s.opts.Deactivate(&records[idx])
		mode = "soft"
	} else {
		records = append(records[:idx], records[idx+1:]...)
	}

	if err := s.save(records, result.Retained); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"store": s.opts.Name,
		"key":   key,
		"mode":  mode,
	}).Debug("Record deleted")
	return nil
}

// NextID returns one past the highest stored id, or IDBase when that is
// larger. Ids of deleted records are never handed out again while a higher
// id remains.
func (s *FileStore[T, K]) NextID(ctx context.Context) (int, error) {
	if s.opts.ID == nil {
		return 0, fmt.Errorf("%s does not generate ids", s.opts.Name)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return 0, err
	}
	return s.nextID(result.Records), nil
}

func (s *FileStore[T, K]) nextID(records []T) int {
	highest := 0
	for _, rec := range records {
		if id := s.opts.ID(rec); id > highest {
			highest = id
		}
	}
	if highest+1 < s.opts.IDBase {
		return s.opts.IDBase
	}
	return highest + 1
}

// Stats reloads the file and reports its shape.
func (s *FileStore[T, K]) Stats(ctx context.Context) (flatfile.Stats, error) {
	stats := flatfile.Stats{Name: s.opts.Name, Path: s.opts.Path, Capacity: s.opts.Capacity}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.load()
	if err != nil {
		return stats, err
	}
	stats.Records = len(result.Records)
	stats.Skipped = result.Skipped
	stats.Truncated = result.Truncated
	return stats, nil
}

// Touch writes a header-only file when none exists yet.
func (s *FileStore[T, K]) Touch(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := flatfile.Exists(s.opts.Path)
	if err != nil || exists {
		return false, err
	}
	if err := s.save(nil, nil); err != nil {
		return false, err
	}
	return true, nil
}
