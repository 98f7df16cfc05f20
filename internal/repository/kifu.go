package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"kifudb/internal/bootstrap"
	"kifudb/internal/domain/archive"
	"kifudb/internal/domain/kifu"
	errs "kifudb/internal/errors"
)

const kifuCollection = "kifus"

type KifuRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewKifuRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *KifuRepository {
	return &KifuRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func sgfKey(id string) string    { return "kifu:sgf:" + id }
func headerKey(id string) string { return "kifu:header:" + id }

func (k *KifuRepository) cacheTTL() time.Duration {
	return time.Duration(k.cfg.CacheTTLSeconds) * time.Second
}

// EnsureIndexes создаёт индексы коллекции; hash уникален, по нему ищутся дубликаты.
func (k *KifuRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "hash", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "info.black.name", Value: 1}}},
		{Keys: bson.D{{Key: "info.white.name", Value: 1}}},
		{Keys: bson.D{{Key: "year", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := k.mongo.Collection(kifuCollection).Indexes().CreateMany(ctx, models)
	if err != nil {
		return errors.Wrap(err, "create kifu indexes")
	}
	return nil
}

func (k *KifuRepository) PutKifu(ctx context.Context, entry archive.Entry) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := k.mongo.Collection(kifuCollection).InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(errs.ErrKifuExists, "hash %s", entry.Hash)
	}
	if err != nil {
		k.log.Errorf("failed to insert kifu to database: %v", err)
		return errors.Wrap(err, "insert kifu")
	}

	k.log.Infof("kifu inserted successfully with id: %s", entry.ID)
	return nil
}

func (k *KifuRepository) findOne(ctx context.Context, filter bson.M) (archive.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var entry archive.Entry
	err := k.mongo.Collection(kifuCollection).FindOne(ctx, filter).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return archive.Entry{}, errs.ErrKifuNotFound
	}
	if err != nil {
		k.log.Error(err)
		return archive.Entry{}, errors.Wrap(err, "find kifu")
	}
	return entry, nil
}

func (k *KifuRepository) GetKifuByID(ctx context.Context, id string) (archive.Entry, error) {
	return k.findOne(ctx, bson.M{"_id": id})
}

func (k *KifuRepository) GetKifuByHash(ctx context.Context, hash string) (archive.Entry, error) {
	return k.findOne(ctx, bson.M{"hash": hash})
}

func (k *KifuRepository) GetKifusByPlayer(ctx context.Context, name string, pageNum int) (*archive.Page, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"info.black.name": name},
			{"info.white.name": name},
		},
	}
	return k.page(ctx, filter, pageNum)
}

func (k *KifuRepository) GetKifusByYear(ctx context.Context, year int, pageNum int) (*archive.Page, error) {
	return k.page(ctx, bson.M{"year": year}, pageNum)
}

// page отдаёт одну страницу выборки без текста SGF, он нужен только при открытии партии.
func (k *KifuRepository) page(ctx context.Context, filter bson.M, pageNum int) (*archive.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if pageNum < 1 {
		pageNum = 1
	}
	limit := k.cfg.PageLimitKifus
	collection := k.mongo.Collection(kifuCollection)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		k.log.Error(err)
		return nil, errors.Wrap(err, "count kifus")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((pageNum - 1) * limit)).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"sgf": 0})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		k.log.Error(err)
		return nil, errors.Wrap(err, "find kifus")
	}
	defer cursor.Close(ctx)

	kifus := make([]archive.Entry, 0, limit)
	if err := cursor.All(ctx, &kifus); err != nil {
		return nil, errors.Wrap(err, "decode kifus")
	}

	return &archive.Page{
		PageNum:    pageNum,
		TotalPages: archive.TotalPages(total, limit),
		Total:      total,
		Kifus:      kifus,
	}, nil
}

func (k *KifuRepository) SaveSGFToRedis(ctx context.Context, id string, sgfText string) error {
	return k.redis.Set(ctx, sgfKey(id), sgfText, k.cacheTTL()).Err()
}

func (k *KifuRepository) LoadSGFFromRedis(ctx context.Context, id string) (string, error) {
	text, err := k.redis.Get(ctx, sgfKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errs.ErrKifuNotFound
	}
	return text, err
}

func (k *KifuRepository) SaveHeaderToRedis(ctx context.Context, id string, info kifu.GameInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}
	return k.redis.Set(ctx, headerKey(id), data, k.cacheTTL()).Err()
}

func (k *KifuRepository) LoadHeaderFromRedis(ctx context.Context, id string) (kifu.GameInfo, error) {
	data, err := k.redis.Get(ctx, headerKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return kifu.GameInfo{}, errs.ErrKifuNotFound
	}
	if err != nil {
		return kifu.GameInfo{}, err
	}
	var info kifu.GameInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return kifu.GameInfo{}, errors.Wrap(err, "unmarshal header")
	}
	return info, nil
}
