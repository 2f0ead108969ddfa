package videos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/airtime-feed/backend/internal/models"
)

// HashKey is the Redis hash holding video records (field = id, value = JSON).
const HashKey = "videos"

// RedisRepository stores videos in a single Redis hash.
type RedisRepository struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisRepository creates a repository over the videos hash.
func NewRedisRepository(client *redis.Client, logger *zap.Logger) *RedisRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRepository{client: client, key: HashKey, logger: logger}
}

// List returns every record ordered by upload time.
func (r *RedisRepository) List(ctx context.Context) ([]models.Video, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", r.key, err)
	}
	return decodeHash(fields, r.logger), nil
}

// Create writes the record under its id.
func (r *RedisRepository) Create(ctx context.Context, v *models.Video) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode video: %w", err)
	}
	if err := r.client.HSet(ctx, r.key, v.ID, body).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", r.key, err)
	}
	return nil
}

// decodeHash converts hash values to records, skipping entries that do not decode.
func decodeHash(fields map[string]string, logger *zap.Logger) []models.Video {
	list := make([]models.Video, 0, len(fields))
	for field, raw := range fields {
		var v models.Video
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			logger.Warn("skipping malformed video record", zap.String("field", field), zap.Error(err))
			continue
		}
		if v.ID == "" {
			v.ID = field
		}
		list = append(list, v)
	}
	sortByUpload(list)
	return list
}
