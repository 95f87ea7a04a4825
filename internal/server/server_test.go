package server_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/reelsense/sentiment-api/internal/server"
)

func TestServerStopsOnContextCancel(t *testing.T) {
	srv := server.New("127.0.0.1:0", http.NewServeMux())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	// let the listener come up before cancelling
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerReportsListenFailure(t *testing.T) {
	srv := server.New("256.256.256.256:0", http.NewServeMux())
	require.Error(t, srv.Run(context.Background()))
}
