package bookstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tc "github.com/unkn0wn-root/throughcache"
)

// FanOutMode decides what a cross-store write does after one store fails.
// Neither mode compensates stores that were already written.
type FanOutMode int

const (
	// FanOutFailFast stops at the first failing store.
	FanOutFailFast FanOutMode = iota
	// FanOutBestEffort tries every store and reports all failures.
	FanOutBestEffort
)

const (
	storeRelational = "relational"
	storeDocument   = "document"
)

// StoreFailure is one store's part of a FanOutError.
type StoreFailure struct {
	Store string
	Err   error
}

// FanOutError reports the stores a cross-store write or remove did not reach.
// Stores not listed were written, or were skipped under FanOutFailFast.
type FanOutError struct {
	Key      string
	Failures []StoreFailure
	Skipped  []string
}

func (e *FanOutError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "bookstore: %s:", e.Key)
	for i, f := range e.Failures {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, " %s: %v", f.Store, f.Err)
	}
	if len(e.Skipped) > 0 {
		fmt.Fprintf(&b, " (skipped %s)", strings.Join(e.Skipped, ", "))
	}
	return b.String()
}

func (e *FanOutError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

type ServiceConfig struct {
	Cache      tc.Cache[string, Book]
	Relational tc.Repository[string, Book]
	Document   tc.Repository[string, Book]
	FanOut     FanOutMode
	Logger     tc.Logger
}

// Service is the bookstore's read and write path. Reads go through the
// relational store; writes and removes go to both stores in order,
// relational first.
type Service struct {
	cache  tc.Cache[string, Book]
	rel    tc.Repository[string, Book]
	stores []namedStore
	mode   FanOutMode
	log    tc.Logger
}

type namedStore struct {
	name string
	repo tc.Repository[string, Book]
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Cache == nil || cfg.Relational == nil || cfg.Document == nil {
		return nil, errors.New("bookstore: cache and both repositories are required")
	}
	if cfg.FanOut != FanOutFailFast && cfg.FanOut != FanOutBestEffort {
		return nil, fmt.Errorf("bookstore: unknown fan-out mode %d", cfg.FanOut)
	}
	stores := []namedStore{
		{name: storeRelational, repo: cfg.Relational},
		{name: storeDocument, repo: cfg.Document},
	}
	s := &Service{
		cache:  cfg.Cache,
		rel:    cfg.Relational,
		stores: stores,
		mode:   cfg.FanOut,
		log:    cfg.Logger,
	}
	if s.log == nil {
		s.log = tc.NopLogger{}
	}
	return s, nil
}

// GetOrThrough returns the book with id from the cache, loading it from the
// relational store on a miss. Absent books are tc.ErrNotFound.
func (s *Service) GetOrThrough(ctx context.Context, id string) (Book, error) {
	b, ok, err := s.cache.Get(ctx, s.rel, id)
	if err != nil {
		return Book{}, err
	}
	if !ok {
		return Book{}, fmt.Errorf("bookstore: book %s: %w", id, tc.ErrNotFound)
	}
	return b, nil
}

// PutAndSync derives the book's id and writes it through the cache to the
// relational store, then the document store. The returned book carries the
// id even when a store failed; the cache always holds it.
func (s *Service) PutAndSync(ctx context.Context, b Book) (Book, error) {
	b, err := b.withID()
	if err != nil {
		return Book{}, err
	}
	err = s.fanOut(ctx, "put", b.ID, func(repo tc.Repository[string, Book]) error {
		_, err := s.cache.Put(ctx, repo, b.ID, b)
		return err
	})
	return b, err
}

// Remove drops id from the cache and from both stores. Missing books are not
// an error.
func (s *Service) Remove(ctx context.Context, id string) error {
	return s.fanOut(ctx, "remove", id, func(repo tc.Repository[string, Book]) error {
		return s.cache.Remove(ctx, repo, id)
	})
}

// ComputeAndPersist derives the book's id and runs fn under the key lock
// with the relational store. fn is responsible for persisting its result.
func (s *Service) ComputeAndPersist(ctx context.Context, b Book, fn tc.TransformFunc[string, Book]) (Book, error) {
	b, err := b.withID()
	if err != nil {
		return Book{}, err
	}
	return s.cache.Execute(ctx, s.rel, b.ID, b, fn)
}

// CalculatePrice applies AdjustPrice to b and persists the result.
func (s *Service) CalculatePrice(ctx context.Context, b Book) (Book, error) {
	return s.ComputeAndPersist(ctx, b, AdjustPrice)
}

// CacheSize is the number of books held in memory.
func (s *Service) CacheSize() int { return s.cache.Len() }

// ClearCache empties the cache. Stores keep their data.
func (s *Service) ClearCache() { s.cache.Clear() }

func (s *Service) fanOut(ctx context.Context, op, id string, write func(tc.Repository[string, Book]) error) error {
	var fe *FanOutError
	for i, st := range s.stores {
		err := write(st.repo)
		if err == nil {
			continue
		}
		if fe == nil {
			fe = &FanOutError{Key: id}
		}
		fe.Failures = append(fe.Failures, StoreFailure{Store: st.name, Err: err})
		// nothing else is worth trying once ctx is gone
		if s.mode == FanOutFailFast || ctx.Err() != nil {
			for _, rest := range s.stores[i+1:] {
				fe.Skipped = append(fe.Skipped, rest.name)
			}
			break
		}
	}
	if fe == nil {
		return nil
	}
	s.log.Warn("cross-store write incomplete", tc.Fields{
		"op":      op,
		"id":      id,
		"failed":  len(fe.Failures),
		"skipped": fe.Skipped,
		"err":     fe,
	})
	return fe
}
