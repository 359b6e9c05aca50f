package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore хранит документы в Redis без срока жизни.
// Ключи получают общий префикс, чтобы не пересекаться с другими данными в той же базе.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore создаёт RedisStore с заданными опциями подключения
func NewRedisStore(opts *redis.Options, prefix string) *RedisStore {
	return &RedisStore{client: redis.NewClient(opts), prefix: prefix}
}

// NewRedisStoreFromClient оборачивает уже созданный клиент
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

// Get читает документ; при отсутствии ключа (redis.Nil) возвращает ErrKeyNotFound
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

// Put сохраняет документ; нулевой expiration означает хранение без срока
func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete удаляет документ; отсутствие ключа ошибкой не считается
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping проверяет доступность Redis (используется в /readyz)
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close закрывает клиент
func (r *RedisStore) Close() error {
	return r.client.Close()
}
