// Package store persists scored review results and answers the query
// endpoints. Mongo is the production backend; Memory backs tests.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNoResults is returned by write paths handed an empty batch.
	ErrNoResults = errors.New("no results to store")
)

// Sentiment labels as produced by the ML service.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
)

// Result is one scored review. Timestamp and BatchID are stamped by the
// ingest path; ProcessedLocally is always true for results this service
// stored itself.
type Result struct {
	Text             string  `json:"text" bson:"text"`
	MovieName        string  `json:"movie_name" bson:"movie_name"`
	Sentiment        string  `json:"sentiment" bson:"sentiment"`
	Confidence       float64 `json:"confidence" bson:"confidence"`
	Timestamp        string  `json:"timestamp" bson:"timestamp"`
	ProcessedLocally bool    `json:"processed_locally" bson:"processed_locally"`
	BatchID          string  `json:"batch_id,omitempty" bson:"batch_id,omitempty"`
}

// Stats mirrors the database_stats block of the health payload.
type Stats struct {
	Status         string `json:"status"`
	TotalDocuments int64  `json:"total_documents"`
	UniqueMovies   int    `json:"unique_movies"`
	Error          string `json:"error,omitempty"`
}

// MovieSummary aggregates sentiment counts for a single movie.
type MovieSummary struct {
	MovieName     string  `json:"movie_name"`
	Positive      int     `json:"positive"`
	Negative      int     `json:"negative"`
	Total         int     `json:"total"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Query narrows Search results. Empty fields match anything; MovieName is a
// case-insensitive substring match, Sentiment an exact label match.
type Query struct {
	MovieName string
	Sentiment string
}

// Store is the persistence surface used by the HTTP handlers.
type Store interface {
	// InsertResults stores a batch and reports how many documents landed.
	InsertResults(ctx context.Context, batch []Result) (int, error)
	// FetchResults returns every stored result, oldest first.
	FetchResults(ctx context.Context) ([]Result, error)
	// Search returns results matching q.
	Search(ctx context.Context, q Query) ([]Result, error)
	// UniqueMovies returns the sorted set of distinct movie names.
	UniqueMovies(ctx context.Context) ([]string, error)
	// Summary aggregates per-movie sentiment counts, optionally narrowed to
	// one movie (case-insensitive substring, same as Search).
	Summary(ctx context.Context, movieName string) ([]MovieSummary, error)
	// Clear deletes everything and reports the number removed.
	Clear(ctx context.Context) (int64, error)
	// Stats never returns an error: failures are folded into Stats.Status so
	// the health endpoint can always render the block.
	Stats(ctx context.Context) Stats
	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error
}
