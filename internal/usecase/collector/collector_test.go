package collector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	errs "kifudb/internal/errors"
)

type fakeImporter struct {
	calls   atomic.Int32
	charset atomic.Value
}

func (f *fakeImporter) Import(_ context.Context, raw []byte, charset string) (string, error) {
	f.calls.Add(1)
	f.charset.Store(charset)
	switch text := string(raw); {
	case strings.HasPrefix(text, "dup"):
		return "old", errors.Wrap(errs.ErrKifuExists, "kifu old")
	case strings.HasPrefix(text, "bad"):
		return "", errors.Wrap(errs.ErrMalformedRecord, "sgf: unclosed game tree")
	default:
		return "id-" + text, nil
	}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, body := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return root
}

func TestFindRecords(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"b.sgf":       "",
		"a.SGF":       "",
		"notes.txt":   "",
		"1998/c.sgf":  "",
		"1998/readme": "",
	})

	paths, err := FindRecords(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "1998/c.sgf"),
		filepath.Join(root, "a.SGF"),
		filepath.Join(root, "b.sgf"),
	}, paths)

	_, err = FindRecords(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestImportDir(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"one.sgf":       "1",
		"two.sgf":       "2",
		"again.sgf":     "dup",
		"broken.sgf":    "bad",
		"deep/x/y.sgf":  "3",
		"deep/zz.sgf":   "bad too",
		"deep/skip.txt": "bad",
	})
	imp := &fakeImporter{}
	c := NewCollector(imp, zap.NewNop().Sugar(), 3, "gb18030")

	report, err := c.ImportDir(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 6, report.Files)
	assert.EqualValues(t, 6, imp.calls.Load())
	assert.Equal(t, "gb18030", imp.charset.Load())
	assert.ElementsMatch(t, []string{"id-1", "id-2", "id-3"}, report.Imported)
	assert.Equal(t, 1, report.Duplicates)
	require.Len(t, report.Failed, 2)
	assert.Equal(t, filepath.Join(root, "broken.sgf"), report.Failed[0].Path)
	assert.Contains(t, report.Failed[0].Error, "unclosed")
	assert.Equal(t, filepath.Join(root, "deep/zz.sgf"), report.Failed[1].Path)
}

func TestImportDirCancelled(t *testing.T) {
	root := writeFiles(t, map[string]string{"one.sgf": "1", "two.sgf": "2"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	imp := &fakeImporter{}
	_, err := NewCollector(imp, zap.NewNop().Sugar(), 1, "").ImportDir(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, imp.calls.Load())
}
