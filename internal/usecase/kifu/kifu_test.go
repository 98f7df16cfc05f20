package kifu

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"

	"kifudb/internal/domain/archive"
	"kifudb/internal/domain/kifu"
	errs "kifudb/internal/errors"
)

// memoryStore is an in-memory KifuStore. redisDown makes every cache call
// fail the way an unreachable redis would.
type memoryStore struct {
	mu        sync.Mutex
	entries   map[string]archive.Entry
	sgf       map[string]string
	headers   map[string]kifu.GameInfo
	redisDown bool
	mongoHits int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries: make(map[string]archive.Entry),
		sgf:     make(map[string]string),
		headers: make(map[string]kifu.GameInfo),
	}
}

var errRedisDown = errors.New("dial tcp: connection refused")

func (m *memoryStore) PutKifu(_ context.Context, e archive.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, old := range m.entries {
		if old.Hash == e.Hash {
			return errs.ErrKifuExists
		}
	}
	m.entries[e.ID] = e
	return nil
}

func (m *memoryStore) GetKifuByID(_ context.Context, id string) (archive.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mongoHits++
	e, ok := m.entries[id]
	if !ok {
		return archive.Entry{}, errs.ErrKifuNotFound
	}
	return e, nil
}

func (m *memoryStore) GetKifuByHash(_ context.Context, hash string) (archive.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Hash == hash {
			return e, nil
		}
	}
	return archive.Entry{}, errs.ErrKifuNotFound
}

func (m *memoryStore) list(match func(archive.Entry) bool, pageNum int) *archive.Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	page := &archive.Page{PageNum: pageNum}
	for _, e := range m.entries {
		if match(e) {
			page.Kifus = append(page.Kifus, e)
		}
	}
	page.Total = int64(len(page.Kifus))
	page.TotalPages = archive.TotalPages(page.Total, 20)
	return page
}

func (m *memoryStore) GetKifusByPlayer(_ context.Context, name string, pageNum int) (*archive.Page, error) {
	return m.list(func(e archive.Entry) bool {
		return e.Info.Black.Name == name || e.Info.White.Name == name
	}, pageNum), nil
}

func (m *memoryStore) GetKifusByYear(_ context.Context, year int, pageNum int) (*archive.Page, error) {
	return m.list(func(e archive.Entry) bool { return e.Year == year }, pageNum), nil
}

func (m *memoryStore) SaveSGFToRedis(_ context.Context, id string, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redisDown {
		return errRedisDown
	}
	m.sgf[id] = text
	return nil
}

func (m *memoryStore) LoadSGFFromRedis(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redisDown {
		return "", errRedisDown
	}
	text, ok := m.sgf[id]
	if !ok {
		return "", errs.ErrKifuNotFound
	}
	return text, nil
}

func (m *memoryStore) SaveHeaderToRedis(_ context.Context, id string, info kifu.GameInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redisDown {
		return errRedisDown
	}
	m.headers[id] = info
	return nil
}

func (m *memoryStore) LoadHeaderFromRedis(_ context.Context, id string) (kifu.GameInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redisDown {
		return kifu.GameInfo{}, errRedisDown
	}
	info, ok := m.headers[id]
	if !ok {
		return kifu.GameInfo{}, errs.ErrKifuNotFound
	}
	return info, nil
}

const sample = "(;GM[1]SZ[9]PB[古力]PW[常昊]DT[2004-03-01]RE[B+R];B[ee];W[cc];B[gc])"

func newUseCase(store *memoryStore) *KifuUseCase {
	uc := NewKifuUseCase(store, zap.NewNop().Sugar(), "")
	uc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return uc
}

func TestImport(t *testing.T) {
	store := newMemoryStore()
	uc := newUseCase(store)
	ctx := context.Background()

	id, err := uc.Import(ctx, []byte(sample), "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	e := store.entries[id]
	assert.Equal(t, 2004, e.Year)
	assert.Equal(t, 3, e.MoveCount)
	assert.Equal(t, "古力", e.Info.Black.Name)
	assert.Equal(t, kifu.ResultResign, e.Info.Result.Type)
	assert.Equal(t, archive.Hash(e.SGF), e.Hash)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), e.CreatedAt)
	assert.Equal(t, e.SGF, store.sgf[id])
	assert.Equal(t, e.Info, store.headers[id])

	// the same game in another encoding is a duplicate
	gbk, err := simplifiedchinese.GBK.NewEncoder().String(sample)
	require.NoError(t, err)
	again, err := uc.Import(ctx, []byte(gbk), "gbk")
	assert.ErrorIs(t, err, errs.ErrKifuExists)
	assert.Equal(t, id, again)
	assert.Len(t, store.entries, 1)
}

func TestImportRejectsBadRecords(t *testing.T) {
	uc := newUseCase(newMemoryStore())
	ctx := context.Background()

	_, err := uc.Import(ctx, []byte("(;GM[1]SZ[9];B[ee]"), "")
	assert.ErrorIs(t, err, errs.ErrMalformedRecord)

	_, err = uc.Import(ctx, []byte("(;GM[3])"), "")
	assert.ErrorIs(t, err, errs.ErrUnsupportedGameType)

	_, err = uc.Import(ctx, []byte(sample), "ebcdic-martian")
	assert.ErrorIs(t, err, errs.ErrUnknownCharset)
}

func TestImportSurvivesCacheFailure(t *testing.T) {
	store := newMemoryStore()
	store.redisDown = true
	uc := newUseCase(store)
	ctx := context.Background()

	id, err := uc.Import(ctx, []byte(sample), "")
	require.NoError(t, err)

	text, err := uc.GetSGF(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, store.entries[id].SGF, text)
}

func TestGetSGFFallsBackToMongo(t *testing.T) {
	store := newMemoryStore()
	uc := newUseCase(store)
	ctx := context.Background()

	id, err := uc.Import(ctx, []byte(sample), "")
	require.NoError(t, err)

	_, err = uc.GetSGF(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, store.mongoHits)

	delete(store.sgf, id)
	text, err := uc.GetSGF(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, store.mongoHits)
	// cached again
	assert.Equal(t, text, store.sgf[id])

	_, err = uc.GetSGF(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrKifuNotFound)
}

func TestGetRecordAndHeader(t *testing.T) {
	store := newMemoryStore()
	uc := newUseCase(store)
	ctx := context.Background()

	id, err := uc.Import(ctx, []byte(sample), "")
	require.NoError(t, err)

	r, err := uc.GetRecord(ctx, id)
	require.NoError(t, err)
	assert.Len(t, r.MainLine(), 3)

	delete(store.headers, id)
	info, err := uc.GetHeader(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "常昊", info.White.Name)
	assert.Equal(t, 1, store.mongoHits)
	assert.Contains(t, store.headers, id)
}

func TestLists(t *testing.T) {
	store := newMemoryStore()
	uc := newUseCase(store)
	ctx := context.Background()

	_, err := uc.Import(ctx, []byte(sample), "")
	require.NoError(t, err)
	_, err = uc.Import(ctx, []byte("(;GM[1]SZ[9]PB[常昊]PW[Lee]DT[2005];B[ee])"), "")
	require.NoError(t, err)

	page, err := uc.ListByPlayer(ctx, " 常昊 ", 1)
	require.NoError(t, err)
	assert.Len(t, page.Kifus, 2)

	page, err = uc.ListByYear(ctx, 2005, 1)
	require.NoError(t, err)
	require.Len(t, page.Kifus, 1)
	assert.Equal(t, "Lee", page.Kifus[0].Info.White.Name)
}

func TestNormalize(t *testing.T) {
	uc := newUseCase(newMemoryStore())

	raw, err := simplifiedchinese.GB18030.NewEncoder().String("(;GM[1]CA[GB2312]SZ[9]PB[古力];B[ee])")
	require.NoError(t, err)

	out, err := uc.Normalize([]byte(raw), "")
	require.NoError(t, err)
	assert.Equal(t, "(;GM[1]FF[4]CA[UTF-8]SZ[9]PB[古力];B[ee])", out)

	info, err := uc.DecodeHeader([]byte(raw), "")
	require.NoError(t, err)
	assert.Equal(t, "古力", info.Black.Name)
}

func TestDefaultCharset(t *testing.T) {
	uc := NewKifuUseCase(newMemoryStore(), zap.NewNop().Sugar(), "gbk")

	raw, err := simplifiedchinese.GBK.NewEncoder().String("(;GM[1]SZ[9]PW[常昊])")
	require.NoError(t, err)

	info, err := uc.DecodeHeader([]byte(raw), "")
	require.NoError(t, err)
	assert.Equal(t, "常昊", info.White.Name)
}
