package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestSetupFromFile(t *testing.T) {
	path := writeEnv(t, "SERVER_PORT=9090\nMONGO_DATABASE=archive\nLOCAL_CORS=true\nPAGE_LIMIT_KIFUS=5\nDEFAULT_CHARSET=gb18030\n")

	cfg, err := Setup(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "archive", cfg.MongoDatabase)
	assert.True(t, cfg.IsLocalCors)
	assert.Equal(t, 5, cfg.PageLimitKifus)
	assert.Equal(t, "gb18030", cfg.DefaultCharset)
	// not in the file
	assert.Equal(t, 3600, cfg.CacheTTLSeconds)
	assert.Equal(t, 8, cfg.CollectorWorker)
}

func TestSetupEnvOverridesFile(t *testing.T) {
	path := writeEnv(t, "SERVER_PORT=9090\n")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("KIFU_DIR", "/data/kifu")

	cfg, err := Setup(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ServerPort)
	assert.Equal(t, "/data/kifu", cfg.KifuDir)
}

func TestSetupMissingFile(t *testing.T) {
	cfg, err := Setup(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "kifudb", cfg.MongoDatabase)
}

func TestSetupRejectsBadPageLimit(t *testing.T) {
	_, err := Setup(writeEnv(t, "PAGE_LIMIT_KIFUS=0\n"))
	assert.Error(t, err)
}
