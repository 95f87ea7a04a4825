package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/reelsense/sentiment-api/internal/store"
)

const checkTimeout = 10 * time.Second

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingRight(1)
)

func newCheckDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkdb",
		Short: "Verify the MongoDB connection and print collection stats",
		Run:   runCheckDB,
	}
	cmd.Flags().Bool("write", false, "Also insert two sample results as a write probe")
	return cmd
}

func runCheckDB(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		os.Exit(1)
	}

	out := cmd.OutOrStdout()
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("uri"), cfg.MongoURI)

	st, err := store.NewMongo(ctx, cfg.MongoURI)
	if err != nil {
		fail(out, "connect", err)
		os.Exit(1)
	}
	defer st.Close(context.Background()) //nolint:errcheck

	if err := st.Ping(ctx); err != nil {
		fail(out, "ping", err)
		fmt.Fprintln(out, "\nCheck that MongoDB is running and MONGO_URI is correct.")
		os.Exit(1)
	}
	ok(out, "ping")

	if write, _ := cmd.Flags().GetBool("write"); write {
		if err := writeProbe(ctx, st, out); err != nil {
			os.Exit(1)
		}
	}

	stats := st.Stats(ctx)
	if stats.Status != "connected" {
		fail(out, "stats", fmt.Errorf("%s", stats.Error))
		os.Exit(1)
	}
	ok(out, "stats")
	fmt.Fprintf(out, "%s %d\n", labelStyle.Render("documents"), stats.TotalDocuments)
	fmt.Fprintf(out, "%s %d\n", labelStyle.Render("movies"), stats.UniqueMovies)
}

func writeProbe(ctx context.Context, st *store.Mongo, out io.Writer) error {
	now := time.Now().Format(time.RFC3339)
	probe := []store.Result{
		{
			Text:             "This is a test review",
			MovieName:        "Test Movie",
			Sentiment:        store.SentimentPositive,
			Confidence:       0.85,
			Timestamp:        now,
			ProcessedLocally: true,
			BatchID:          "checkdb-probe",
		},
		{
			Text:             "Another test review",
			MovieName:        "Test Movie 2",
			Sentiment:        store.SentimentNegative,
			Confidence:       0.72,
			Timestamp:        now,
			ProcessedLocally: true,
			BatchID:          "checkdb-probe",
		},
	}

	n, err := st.InsertResults(ctx, probe)
	if err != nil {
		fail(out, "insert", err)
		return err
	}
	ok(out, fmt.Sprintf("insert (%d sample results, batch_id=checkdb-probe)", n))

	results, err := st.FetchResults(ctx)
	if err != nil {
		fail(out, "fetch", err)
		return err
	}
	ok(out, fmt.Sprintf("fetch (%d results total)", len(results)))
	return nil
}

func ok(out io.Writer, step string) {
	fmt.Fprintf(out, "%s %s\n", okStyle.Render("✓"), step)
}

func fail(out io.Writer, step string, err error) {
	fmt.Fprintf(out, "%s %s: %v\n", failStyle.Render("✗"), step, err)
}
