package server

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/reelsense/sentiment-api/internal/ingest"
	"github.com/reelsense/sentiment-api/internal/mlclient"
	"github.com/reelsense/sentiment-api/internal/store"
)

// multipartMemLimit is how much of an upload stays in memory before the
// multipart reader spools to disk.
const multipartMemLimit = 32 << 20

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	mlStatus := "connected"
	if err := a.ml.Health(ctx); err != nil {
		mlStatus = "disconnected"
	}

	writeJSON(w, http.StatusOK, body{
		"status":            "API service running",
		"timestamp":         time.Now().Format(time.RFC3339),
		"ml_service_status": mlStatus,
		"ml_service_url":    a.ml.BaseURL(),
		"database_stats":    a.store.Stats(ctx),
		"environment":       a.cfg.Environment,
		"upload_folder":     a.cfg.UploadDir,
		"max_file_size_mb":  a.cfg.MaxUploadMB(),
		"system":            systemInfo(),
	})
}

func systemInfo() body {
	info := body{}
	if vm, err := mem.VirtualMemory(); err == nil {
		info["memory_used_percent"] = math.Round(vm.UsedPercent*10) / 10
	}
	if up, err := host.Uptime(); err == nil {
		info["uptime_seconds"] = up
	}
	return info
}

func (a *App) handleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	stats := a.store.Stats(r.Context())
	if stats.Status == "error" {
		writeJSON(w, http.StatusInternalServerError, body{
			"error":   fmt.Sprintf("Failed to get database stats: %s", stats.Error),
			"success": false,
		})
		return
	}
	writeJSON(w, http.StatusOK, body{
		"database_stats": stats,
		"success":        true,
	})
}

func (a *App) handleAnalyzeCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(multipartMemLimit); err != nil {
		writeError(w, http.StatusBadRequest, "No CSV file provided")
		return
	}
	file, hdr, err := r.FormFile("csv_file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No CSV file provided")
		return
	}
	defer file.Close()

	if hdr.Filename == "" || !strings.HasSuffix(strings.ToLower(hdr.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Please select a valid CSV file")
		return
	}

	if hdr.Size > a.cfg.MaxUploadBytes {
		writeError(w, http.StatusBadRequest, fmt.Sprintf(
			"File too large. Maximum size: %.1fMB. Your file: %.1fMB",
			a.cfg.MaxUploadMB(), float64(hdr.Size)/1024/1024))
		return
	}

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(file); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read CSV file: %v", err))
		return
	}

	batch, err := ingest.ParseCSV(bytes.NewReader(raw.Bytes()))
	if err != nil {
		a.writeIngestError(w, err)
		return
	}

	a.log.Infow("CSV loaded",
		"rows", batch.TotalRows, "cleaned", batch.CleanedRows, "batch_id", batch.ID)
	if dropped := batch.TotalRows - batch.CleanedRows; dropped > 0 {
		a.log.Infow("removed rows with missing data", "dropped", dropped, "batch_id", batch.ID)
	}

	reviews := make([]mlclient.Review, len(batch.Rows))
	for i, row := range batch.Rows {
		reviews[i] = mlclient.Review{Text: row.Review, MovieName: row.Title}
	}

	a.log.Infow("sending reviews to ml service",
		"count", len(reviews), "url", a.ml.BaseURL(), "batch_id", batch.ID)

	scored, err := a.ml.ProcessBatch(ctx, reviews)
	if err != nil {
		a.writeMLError(w, err)
		return
	}
	if len(scored) == 0 {
		writeError(w, http.StatusInternalServerError, "ML service returned no results")
		return
	}

	timestamp := time.Now().Format(time.RFC3339)
	results := make([]store.Result, len(scored))
	for i, s := range scored {
		results[i] = store.Result{
			Text:             s.Text,
			MovieName:        s.MovieName,
			Sentiment:        s.Sentiment,
			Confidence:       s.Confidence,
			Timestamp:        timestamp,
			ProcessedLocally: true,
			BatchID:          batch.ID,
		}
	}

	a.archiveUpload(batch.ID, raw.Bytes())

	stored, err := a.store.InsertResults(ctx, results)
	if err != nil {
		a.log.Errorw("database error", "error", err, "batch_id", batch.ID)
		writeJSON(w, http.StatusInternalServerError, body{
			"error":   "Results processed but failed to save to database",
			"details": err.Error(),
			"help":    "Please check your MongoDB connection",
		})
		return
	}

	writeJSON(w, http.StatusOK, body{
		"message":         "CSV processed successfully!",
		"processed_count": len(scored),
		"total_rows":      batch.TotalRows,
		"cleaned_rows":    batch.CleanedRows,
		"stored_count":    stored,
		"batch_id":        batch.ID,
		"success":         true,
	})
}

func (a *App) writeIngestError(w http.ResponseWriter, err error) {
	var missing *ingest.MissingColumnsError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, body{
			"error":            fmt.Sprintf("Missing required columns: %v", missing.Missing),
			"found_columns":    missing.Found,
			"required_columns": ingest.RequiredColumns,
			"help":             "Please ensure your CSV has 'title' and 'review' columns",
		})
	case errors.Is(err, ingest.ErrNoValidRows):
		writeJSON(w, http.StatusBadRequest, body{
			"error": "No valid data found after removing empty rows",
			"help":  "Please check that your CSV has data in both 'title' and 'review' columns",
		})
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read CSV file: %v", err))
	}
}

func (a *App) writeMLError(w http.ResponseWriter, err error) {
	var statusErr *mlclient.StatusError
	switch {
	case errors.Is(err, mlclient.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout,
			"ML service timeout. Please try with a smaller file or check if ML service is running.")
	case errors.Is(err, mlclient.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf(
			"Cannot connect to ML service at %s. Please check if it's running.", a.ml.BaseURL()))
	case errors.As(err, &statusErr):
		a.log.Errorw("ml service error", "status", statusErr.StatusCode, "body", statusErr.Body)
		writeJSON(w, http.StatusInternalServerError, body{
			"error":   fmt.Sprintf("ML service returned error: %d", statusErr.StatusCode),
			"details": statusErr.Body,
			"help":    "Please check if your ML service is running and accessible",
		})
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal server error: %v", err))
	}
}

// archiveUpload keeps a copy of the accepted CSV under the upload folder.
// Best effort: a full disk must not fail the request.
func (a *App) archiveUpload(batchID string, raw []byte) {
	if a.cfg.UploadDir == "" {
		return
	}
	if err := os.MkdirAll(a.cfg.UploadDir, 0o755); err != nil {
		a.log.Warnw("failed to create upload folder", "dir", a.cfg.UploadDir, "error", err)
		return
	}
	path := filepath.Join(a.cfg.UploadDir, batchID+".csv")
	if err := renameio.WriteFile(path, raw, 0o644); err != nil {
		a.log.Warnw("failed to archive upload", "path", path, "error", err)
	}
}

func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	movieName := strings.TrimSpace(r.URL.Query().Get("movie_name"))
	sentiment := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sentiment")))

	if sentiment != "" && sentiment != store.SentimentPositive && sentiment != store.SentimentNegative {
		writeJSON(w, http.StatusBadRequest, body{
			"error":    "Invalid sentiment. Must be 'positive' or 'negative'",
			"received": sentiment,
		})
		return
	}

	results, err := a.store.Search(r.Context(), store.Query{MovieName: movieName, Sentiment: sentiment})
	if err != nil {
		a.log.Errorw("search failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Search failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, body{
		"results":     results,
		"total_count": len(results),
		"search_criteria": body{
			"movie_name": orAny(movieName),
			"sentiment":  orAny(sentiment),
		},
		"success": true,
	})
}

func orAny(s string) string {
	if s == "" {
		return "Any"
	}
	return s
}

func (a *App) handleMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := a.store.UniqueMovies(r.Context())
	if err != nil {
		a.log.Errorw("failed to list movies", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get movies: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, body{
		"movies":  movies,
		"count":   len(movies),
		"success": true,
	})
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	movieName := strings.TrimSpace(r.URL.Query().Get("movie_name"))

	summary, err := a.store.Summary(r.Context(), movieName)
	if err != nil {
		a.log.Errorw("failed to build summary", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get summary: %v", err))
		return
	}

	echoed := movieName
	if echoed == "" {
		echoed = "All movies"
	}
	writeJSON(w, http.StatusOK, body{
		"summary":    summary,
		"movie_name": echoed,
		"success":    true,
	})
}

func (a *App) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.store.FetchResults(r.Context())
	if err != nil {
		a.log.Errorw("failed to fetch results", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve results: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, body{
		"results":     results,
		"total_count": len(results),
		"success":     true,
	})
}

func (a *App) handleClearResults(w http.ResponseWriter, r *http.Request) {
	count, err := a.store.Clear(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.log.Infow("cleared results", "count", count, "remote", remoteIP(r))
	writeJSON(w, http.StatusOK, body{
		"message": fmt.Sprintf("Cleared %d results from local database", count),
		"success": true,
	})
}
