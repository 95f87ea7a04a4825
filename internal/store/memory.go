package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store used by tests and local experiments. It
// mirrors Mongo's matching semantics (case-insensitive substring on movie
// name, exact sentiment).
type Memory struct {
	mu      sync.RWMutex
	results []Result
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) InsertResults(_ context.Context, batch []Result) (int, error) {
	if len(batch) == 0 {
		return 0, ErrNoResults
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, batch...)
	return len(batch), nil
}

func (m *Memory) FetchResults(_ context.Context) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Result, len(m.results))
	copy(out, m.results)
	return out, nil
}

func (m *Memory) Search(_ context.Context, q Query) ([]Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Result{}
	for _, r := range m.results {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r Result, q Query) bool {
	if q.MovieName != "" && !strings.Contains(strings.ToLower(r.MovieName), strings.ToLower(q.MovieName)) {
		return false
	}
	if q.Sentiment != "" && r.Sentiment != q.Sentiment {
		return false
	}
	return true
}

func (m *Memory) UniqueMovies(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]struct{}{}
	movies := []string{}
	for _, r := range m.results {
		if _, ok := seen[r.MovieName]; ok {
			continue
		}
		seen[r.MovieName] = struct{}{}
		movies = append(movies, r.MovieName)
	}
	sort.Strings(movies)
	return movies, nil
}

func (m *Memory) Summary(_ context.Context, movieName string) ([]MovieSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type acc struct {
		pos, neg, total int
		confSum         float64
	}
	byMovie := map[string]*acc{}
	for _, r := range m.results {
		if movieName != "" && !strings.Contains(strings.ToLower(r.MovieName), strings.ToLower(movieName)) {
			continue
		}
		a := byMovie[r.MovieName]
		if a == nil {
			a = &acc{}
			byMovie[r.MovieName] = a
		}
		switch r.Sentiment {
		case SentimentPositive:
			a.pos++
		case SentimentNegative:
			a.neg++
		}
		a.total++
		a.confSum += r.Confidence
	}

	names := make([]string, 0, len(byMovie))
	for name := range byMovie {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]MovieSummary, 0, len(names))
	for _, name := range names {
		a := byMovie[name]
		out = append(out, MovieSummary{
			MovieName:     name,
			Positive:      a.pos,
			Negative:      a.neg,
			Total:         a.total,
			AvgConfidence: a.confSum / float64(a.total),
		})
	}
	return out, nil
}

func (m *Memory) Clear(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.results))
	m.results = nil
	return n, nil
}

func (m *Memory) Stats(ctx context.Context) Stats {
	movies, _ := m.UniqueMovies(ctx)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Status:         "connected",
		TotalDocuments: int64(len(m.results)),
		UniqueMovies:   len(movies),
	}
}

func (m *Memory) Ping(context.Context) error { return nil }

var _ Store = (*Memory)(nil)
var _ Store = (*Mongo)(nil)
