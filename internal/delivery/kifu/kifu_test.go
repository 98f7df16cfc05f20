package kifu

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kifudb/internal/bootstrap"
	"kifudb/internal/domain/archive"
	"kifudb/internal/domain/board"
	"kifudb/internal/domain/kifu"
	errs "kifudb/internal/errors"
	kifuuc "kifudb/internal/usecase/kifu"
)

// mapStore keeps entries in a map and has no cache: every redis call misses.
type mapStore struct {
	entries map[string]archive.Entry
}

func (m *mapStore) PutKifu(_ context.Context, e archive.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mapStore) GetKifuByID(_ context.Context, id string) (archive.Entry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return archive.Entry{}, errs.ErrKifuNotFound
}

func (m *mapStore) GetKifuByHash(_ context.Context, hash string) (archive.Entry, error) {
	for _, e := range m.entries {
		if e.Hash == hash {
			return e, nil
		}
	}
	return archive.Entry{}, errs.ErrKifuNotFound
}

func (m *mapStore) GetKifusByPlayer(_ context.Context, name string, pageNum int) (*archive.Page, error) {
	page := &archive.Page{PageNum: pageNum}
	for _, e := range m.entries {
		if e.Info.Black.Name == name || e.Info.White.Name == name {
			page.Kifus = append(page.Kifus, e)
		}
	}
	return page, nil
}

func (m *mapStore) GetKifusByYear(_ context.Context, year int, pageNum int) (*archive.Page, error) {
	page := &archive.Page{PageNum: pageNum}
	for _, e := range m.entries {
		if e.Year == year {
			page.Kifus = append(page.Kifus, e)
		}
	}
	return page, nil
}

func (m *mapStore) SaveSGFToRedis(context.Context, string, string) error { return nil }
func (m *mapStore) LoadSGFFromRedis(context.Context, string) (string, error) {
	return "", errs.ErrKifuNotFound
}
func (m *mapStore) SaveHeaderToRedis(context.Context, string, kifu.GameInfo) error { return nil }
func (m *mapStore) LoadHeaderFromRedis(context.Context, string) (kifu.GameInfo, error) {
	return kifu.GameInfo{}, errs.ErrKifuNotFound
}

const record = "(;GM[1]SZ[9]PB[Shusaku]PW[Gennan]DT[1846-09-11]RE[B+2];B[ee];W[cc])"

func newServer(t *testing.T) (*httptest.Server, *mapStore) {
	t.Helper()
	store := &mapStore{entries: make(map[string]archive.Entry)}
	log := zap.NewNop().Sugar()
	h := NewKifuHandler(bootstrap.Config{PageLimitKifus: 20}, log, kifuuc.NewKifuUseCase(store, log, ""))

	r := chi.NewRouter()
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

type envelope struct {
	Status int             `json:"Status"`
	Body   json.RawMessage `json:"Body"`
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeBody(t *testing.T, data []byte, dst any) int {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	require.NoError(t, json.Unmarshal(env.Body, dst))
	return env.Status
}

func importRecord(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, data := do(t, http.MethodPost, srv.URL+"/kifu", record)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
	var out ImportResponse
	decodeBody(t, data, &out)
	require.NotEmpty(t, out.ID)
	assert.False(t, out.Duplicate)
	return out.ID
}

func TestImportAndFetch(t *testing.T) {
	srv, _ := newServer(t)
	id := importRecord(t, srv)

	resp, data := do(t, http.MethodPost, srv.URL+"/kifu", record)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dup ImportResponse
	decodeBody(t, data, &dup)
	assert.Equal(t, ImportResponse{ID: id, Duplicate: true}, dup)

	resp, data = do(t, http.MethodGet, srv.URL+"/kifu/"+id+"/sgf", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sgfContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, "(;GM[1]FF[4]CA[UTF-8]SZ[9]PB[Shusaku]PW[Gennan]RE[B+2]DT[1846-09-11];B[ee];W[cc])", string(data))

	resp, data = do(t, http.MethodGet, srv.URL+"/kifu/"+id, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec kifu.GameRecord
	assert.Equal(t, http.StatusOK, decodeBody(t, data, &rec))
	assert.Equal(t, "Gennan", rec.Info.White.Name)
	require.Len(t, rec.Root.Moves, 2)
	assert.Equal(t, 2, rec.Root.Moves[1].Number)

	resp, data = do(t, http.MethodGet, srv.URL+"/kifu/"+id+"/header", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info kifu.GameInfo
	decodeBody(t, data, &info)
	assert.Equal(t, kifu.Result{Type: kifu.ResultNormal, Winner: board.Black, Score: 2}, info.Result)
}

func TestNotFound(t *testing.T) {
	srv, _ := newServer(t)
	for _, path := range []string{"/kifu/nope", "/kifu/nope/sgf", "/kifu/nope/header"} {
		resp, data := do(t, http.MethodGet, srv.URL+path, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		var e struct{ ErrorDescription string }
		decodeBody(t, data, &e)
		assert.Contains(t, e.ErrorDescription, "not found")
	}
}

func TestImportErrors(t *testing.T) {
	srv, store := newServer(t)

	cases := []struct {
		name, url, body string
		status          int
	}{
		{"malformed", "/kifu", "(;GM[1];B[aa]", http.StatusBadRequest},
		{"not go", "/kifu", "(;GM[2])", http.StatusBadRequest},
		{"bad size", "/kifu", "(;GM[1]SZ[18])", http.StatusBadRequest},
		{"bad charset", "/kifu?charset=nonsense", record, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, _ := do(t, http.MethodPost, srv.URL+tc.url, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
	assert.Empty(t, store.entries)
}

func TestArchive(t *testing.T) {
	srv, _ := newServer(t)
	importRecord(t, srv)

	resp, data := do(t, http.MethodGet, srv.URL+"/archive?player=Shusaku", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page archive.Page
	decodeBody(t, data, &page)
	assert.Equal(t, 1, page.PageNum)
	require.Len(t, page.Kifus, 1)
	assert.Equal(t, 1846, page.Kifus[0].Year)

	resp, data = do(t, http.MethodGet, srv.URL+"/archive?year=1846&page=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, data, &page)
	assert.Equal(t, 2, page.PageNum)

	for _, q := range []string{"", "?page=0&player=x", "?year=soon"} {
		resp, _ = do(t, http.MethodGet, srv.URL+"/archive"+q, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestDecodeHeaderAndNormalize(t *testing.T) {
	srv, store := newServer(t)

	resp, data := do(t, http.MethodPost, srv.URL+"/kifu/header", "(;GM[1]SZ[13]PB[a]BR[3d];B[zz")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info kifu.GameInfo
	decodeBody(t, data, &info)
	assert.Equal(t, 13, info.BoardSize)
	assert.Equal(t, kifu.Rank{Value: 3, Type: kifu.Dan}, info.Black.Rank)

	resp, data = do(t, http.MethodPost, srv.URL+"/kifu/normalize", "(;SZ[9]BR[三段];B[ee]C[hi])")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "(;GM[1]FF[4]CA[UTF-8]SZ[9]BR[3d];B[ee]C[hi])", string(data))

	resp, _ = do(t, http.MethodPost, srv.URL+"/kifu/normalize", "garbage")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, store.entries)
}
