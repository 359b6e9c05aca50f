// Пакет kvstore хранит именованные JSON-документы (blob) по строковым ключам.
// Запись сразу долговременная: без буферизации и без TTL.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound возвращается, когда под ключом ничего не сохранено
var ErrKeyNotFound = errors.New("key not found")

// Store — порт хранилища документов
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
