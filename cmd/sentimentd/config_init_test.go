package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reelsense/sentiment-api/internal/config"
)

func TestConfigInitWritesLoadableFile(t *testing.T) {
	t.Setenv("SENTIMENT_CONFIG", "")
	t.Setenv("MONGO_URI", "mongodb://configinit:27017/")
	t.Setenv("ML_SERVICE_URL", "")
	t.Setenv("SENTIMENT_LISTEN", "")
	t.Setenv("SENTIMENT_UPLOAD_DIR", "")
	t.Setenv("SENTIMENT_ENV", "")
	t.Setenv("SENTIMENT_ADMIN_SECRET", "")
	t.Setenv("SENTIMENT_MAX_UPLOAD_BYTES", "")

	path := filepath.Join(t.TempDir(), "config.yaml")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"config", "init", path})
	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), path)

	// Re-load without the env override so the value must come from the file.
	t.Setenv("MONGO_URI", "")
	got, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "mongodb://configinit:27017/", got.MongoURI)
	require.Equal(t, config.Default().ListenAddr, got.ListenAddr)
}
