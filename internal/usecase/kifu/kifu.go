package kifu

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"kifudb/internal/charset"
	"kifudb/internal/domain/archive"
	"kifudb/internal/domain/kifu"
	errs "kifudb/internal/errors"
)

type KifuStore interface {
	PutKifu(ctx context.Context, entry archive.Entry) error
	GetKifuByID(ctx context.Context, id string) (archive.Entry, error)
	GetKifuByHash(ctx context.Context, hash string) (archive.Entry, error)
	GetKifusByPlayer(ctx context.Context, name string, pageNum int) (*archive.Page, error)
	GetKifusByYear(ctx context.Context, year int, pageNum int) (*archive.Page, error)

	SaveSGFToRedis(ctx context.Context, id string, sgfText string) error
	LoadSGFFromRedis(ctx context.Context, id string) (string, error)
	SaveHeaderToRedis(ctx context.Context, id string, info kifu.GameInfo) error
	LoadHeaderFromRedis(ctx context.Context, id string) (kifu.GameInfo, error)
}

type KifuUseCase struct {
	store          KifuStore
	log            *zap.SugaredLogger
	defaultCharset string
	now            func() time.Time
}

func NewKifuUseCase(store KifuStore, log *zap.SugaredLogger, defaultCharset string) *KifuUseCase {
	return &KifuUseCase{
		store:          store,
		log:            log,
		defaultCharset: defaultCharset,
		now:            time.Now,
	}
}

func (k *KifuUseCase) decodeText(raw []byte, cs string) (string, error) {
	if strings.TrimSpace(cs) == "" {
		cs = k.defaultCharset
	}
	return charset.Decode(raw, cs)
}

// Import разбирает запись, нормализует её и кладёт в архив. Если такая партия
// уже есть, возвращается её id вместе с ErrKifuExists.
func (k *KifuUseCase) Import(ctx context.Context, raw []byte, cs string) (string, error) {
	text, err := k.decodeText(raw, cs)
	if err != nil {
		return "", err
	}
	record, err := kifu.Decode(text)
	if err != nil {
		return "", err
	}
	normalized, err := kifu.Encode(record)
	if err != nil {
		return "", err
	}

	hash := archive.Hash(normalized)
	existing, err := k.store.GetKifuByHash(ctx, hash)
	switch {
	case err == nil:
		return existing.ID, errors.Wrapf(errs.ErrKifuExists, "kifu %s", existing.ID)
	case !errors.Is(err, errs.ErrKifuNotFound):
		return "", err
	}

	entry := archive.Entry{
		ID:        uuid.New().String(),
		Hash:      hash,
		Info:      record.Info,
		Year:      archive.YearOf(record.Info.Date),
		MoveCount: len(record.MainLine()),
		SGF:       normalized,
		CreatedAt: k.now(),
	}
	if err := k.store.PutKifu(ctx, entry); err != nil {
		if errors.Is(err, errs.ErrKifuExists) {
			// параллельный импорт той же партии
			if existing, findErr := k.store.GetKifuByHash(ctx, hash); findErr == nil {
				return existing.ID, err
			}
		}
		return "", err
	}

	k.cache(ctx, entry.ID, entry.SGF, entry.Info)
	k.log.Infow("kifu imported", "id", entry.ID, "name", entry.Info.DisplayName(), "moves", entry.MoveCount)
	return entry.ID, nil
}

// cache ошибки кэша не мешают работе, только логируются
func (k *KifuUseCase) cache(ctx context.Context, id, text string, info kifu.GameInfo) {
	if err := k.store.SaveSGFToRedis(ctx, id, text); err != nil {
		k.log.Warnw("failed to cache sgf", "id", id, "error", err)
	}
	if err := k.store.SaveHeaderToRedis(ctx, id, info); err != nil {
		k.log.Warnw("failed to cache header", "id", id, "error", err)
	}
}

// GetSGF сначала смотрит в redis, потом в mongo, и кладёт найденное обратно в кэш.
func (k *KifuUseCase) GetSGF(ctx context.Context, id string) (string, error) {
	text, err := k.store.LoadSGFFromRedis(ctx, id)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, errs.ErrKifuNotFound) {
		k.log.Warnw("redis lookup failed", "id", id, "error", err)
	}

	entry, err := k.store.GetKifuByID(ctx, id)
	if err != nil {
		return "", err
	}
	k.cache(ctx, id, entry.SGF, entry.Info)
	return entry.SGF, nil
}

func (k *KifuUseCase) GetRecord(ctx context.Context, id string) (*kifu.GameRecord, error) {
	text, err := k.GetSGF(ctx, id)
	if err != nil {
		return nil, err
	}
	record, err := kifu.Decode(text)
	if err != nil {
		k.log.Errorw("archived kifu does not decode", "id", id, "error", err)
		return nil, errors.Wrapf(errs.ErrInternal, "kifu %s: %v", id, err)
	}
	return record, nil
}

func (k *KifuUseCase) GetHeader(ctx context.Context, id string) (kifu.GameInfo, error) {
	info, err := k.store.LoadHeaderFromRedis(ctx, id)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, errs.ErrKifuNotFound) {
		k.log.Warnw("redis lookup failed", "id", id, "error", err)
	}

	entry, err := k.store.GetKifuByID(ctx, id)
	if err != nil {
		return kifu.GameInfo{}, err
	}
	k.cache(ctx, id, entry.SGF, entry.Info)
	return entry.Info, nil
}

func (k *KifuUseCase) ListByPlayer(ctx context.Context, name string, pageNum int) (*archive.Page, error) {
	return k.store.GetKifusByPlayer(ctx, strings.TrimSpace(name), pageNum)
}

func (k *KifuUseCase) ListByYear(ctx context.Context, year int, pageNum int) (*archive.Page, error) {
	return k.store.GetKifusByYear(ctx, year, pageNum)
}

// Normalize переписывает запись в UTF-8 SGF без обращения к хранилищу.
func (k *KifuUseCase) Normalize(raw []byte, cs string) (string, error) {
	text, err := k.decodeText(raw, cs)
	if err != nil {
		return "", err
	}
	record, err := kifu.Decode(text)
	if err != nil {
		return "", err
	}
	return kifu.Encode(record)
}

// DecodeHeader читает только корневой узел записи.
func (k *KifuUseCase) DecodeHeader(raw []byte, cs string) (kifu.GameInfo, error) {
	text, err := k.decodeText(raw, cs)
	if err != nil {
		return kifu.GameInfo{}, err
	}
	return kifu.DecodeHeader(text)
}
