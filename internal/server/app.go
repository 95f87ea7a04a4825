package server

import (
	_ "embed"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/reelsense/sentiment-api/internal/auth"
	"github.com/reelsense/sentiment-api/internal/config"
	"github.com/reelsense/sentiment-api/internal/mlclient"
	"github.com/reelsense/sentiment-api/internal/store"
)

//go:embed docs.md
var docsMarkdown string

// availableEndpoints is the catalogue served by the 404 handler and the docs
// page footer.
var availableEndpoints = []string{
	"GET /api/test",
	"POST /api/analyze-csv",
	"GET /api/search",
	"GET /api/movies",
	"GET /api/summary",
	"GET /api/results",
	"DELETE /api/results/clear",
}

type App struct {
	cfg    config.Config
	store  store.Store
	ml     *mlclient.Client
	secret []byte
	log    *zap.SugaredLogger

	docsHTML []byte
}

func NewApp(cfg config.Config, st store.Store, ml *mlclient.Client) *App {
	a := &App{
		cfg:   cfg,
		store: st,
		ml:    ml,
		log:   zap.S(),
	}
	if cfg.AdminSecret != "" {
		a.secret = auth.DecodeSecret(cfg.AdminSecret)
	}
	a.docsHTML = renderDocsPage(docsMarkdown)
	return a
}

// Routes assembles the handler chain. Method-qualified patterns give wrong
// methods a 405 for free; everything else falls through to the JSON 404.
func (a *App) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/test", a.handleHealth)
	mux.HandleFunc("GET /api/database/stats", a.handleDatabaseStats)
	mux.HandleFunc("POST /api/analyze-csv", a.handleAnalyzeCSV)
	mux.HandleFunc("GET /api/search", a.handleSearch)
	mux.HandleFunc("GET /api/movies", a.handleMovies)
	mux.HandleFunc("GET /api/summary", a.handleSummary)
	mux.HandleFunc("GET /api/results", a.handleResults)
	mux.HandleFunc("DELETE /api/results/clear", a.requireAdmin(a.handleClearResults))

	mux.HandleFunc("GET /{$}", a.handleDocs)
	mux.HandleFunc("/", a.handleNotFound)

	return withRecover(withCORS(withRequestLog(mux)))
}

func (a *App) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.docsHTML)
}

func (a *App) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, body{
		"error":               "Endpoint not found",
		"available_endpoints": availableEndpoints,
	})
}

func renderDocsPage(md string) []byte {
	rendered := renderMarkdown(md)
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Sentiment API</title></head>
<body>
%s
</body>
</html>
`, rendered)
	return []byte(page)
}
