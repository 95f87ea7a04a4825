package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	databaseName   = "sentiment_db"
	collectionName = "results"

	connectTimeout = 10 * time.Second
)

// Mongo implements Store against a MongoDB collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and binds the sentiment_db/results collection.
func NewMongo(ctx context.Context, uri string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return &Mongo{
		client: client,
		coll:   client.Database(databaseName).Collection(collectionName),
	}, nil
}

// Close releases the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) InsertResults(ctx context.Context, batch []Result) (int, error) {
	if len(batch) == 0 {
		return 0, ErrNoResults
	}
	docs := make([]interface{}, len(batch))
	for i, r := range batch {
		docs[i] = r
	}
	res, err := m.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert results: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// noIDProjection strips the Mongo _id so results round-trip as plain JSON.
var noIDProjection = options.Find().SetProjection(bson.D{{Key: "_id", Value: 0}})

func (m *Mongo) FetchResults(ctx context.Context) ([]Result, error) {
	return m.find(ctx, bson.D{})
}

func (m *Mongo) Search(ctx context.Context, q Query) ([]Result, error) {
	return m.find(ctx, searchFilter(q))
}

func (m *Mongo) find(ctx context.Context, filter bson.D) ([]Result, error) {
	cur, err := m.coll.Find(ctx, filter, noIDProjection)
	if err != nil {
		return nil, fmt.Errorf("find results: %w", err)
	}
	results := []Result{}
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return results, nil
}

func searchFilter(q Query) bson.D {
	filter := bson.D{}
	if q.MovieName != "" {
		filter = append(filter, bson.E{Key: "movie_name", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(q.MovieName),
			Options: "i",
		}})
	}
	if q.Sentiment != "" {
		filter = append(filter, bson.E{Key: "sentiment", Value: q.Sentiment})
	}
	return filter
}

func (m *Mongo) UniqueMovies(ctx context.Context) ([]string, error) {
	raw, err := m.coll.Distinct(ctx, "movie_name", bson.D{})
	if err != nil {
		return nil, fmt.Errorf("distinct movies: %w", err)
	}
	movies := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			movies = append(movies, s)
		}
	}
	sort.Strings(movies)
	return movies, nil
}

func (m *Mongo) Summary(ctx context.Context, movieName string) ([]MovieSummary, error) {
	match := bson.D{}
	if movieName != "" {
		match = append(match, bson.E{Key: "movie_name", Value: primitive.Regex{
			Pattern: regexp.QuoteMeta(movieName),
			Options: "i",
		}})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$movie_name"},
			{Key: "positive", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$sentiment", SentimentPositive}}}, 1, 0,
			}}}}}},
			{Key: "negative", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$sentiment", SentimentNegative}}}, 1, 0,
			}}}}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_confidence", Value: bson.D{{Key: "$avg", Value: "$confidence"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate summary: %w", err)
	}
	var rows []struct {
		MovieName     string  `bson:"_id"`
		Positive      int     `bson:"positive"`
		Negative      int     `bson:"negative"`
		Total         int     `bson:"total"`
		AvgConfidence float64 `bson:"avg_confidence"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	out := make([]MovieSummary, len(rows))
	for i, r := range rows {
		out[i] = MovieSummary{
			MovieName:     r.MovieName,
			Positive:      r.Positive,
			Negative:      r.Negative,
			Total:         r.Total,
			AvgConfidence: r.AvgConfidence,
		}
	}
	return out, nil
}

func (m *Mongo) Clear(ctx context.Context) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("clear results: %w", err)
	}
	return res.DeletedCount, nil
}

func (m *Mongo) Stats(ctx context.Context) Stats {
	total, err := m.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return Stats{Status: "error", Error: err.Error()}
	}
	movies, err := m.UniqueMovies(ctx)
	if err != nil {
		return Stats{Status: "error", Error: err.Error()}
	}
	return Stats{
		Status:         "connected",
		TotalDocuments: total,
		UniqueMovies:   len(movies),
	}
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}
