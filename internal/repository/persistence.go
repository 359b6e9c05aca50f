package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"SchedulerApp/internal/model"
	"SchedulerApp/pkg/kvstore"
	"SchedulerApp/pkg/metrics"
)

// Ключи документов в хранилище
const (
	KeyProjects      = "projects"
	KeyTaskTemplates = "taskTemplates"
	KeyUser          = "user"
	KeyGlobalNotes   = "globalNotes"
	KeyAPIKey        = "openai_api_key"
)

// Persistence — порт загрузки и сохранения всей коллекции проектов
type Persistence interface {
	Load(ctx context.Context) ([]model.Project, error)
	Save(ctx context.Context, projects []model.Project) error
}

// BlobPersistence хранит коллекцию проектов одним JSON-массивом под ключом projects
type BlobPersistence struct {
	store  kvstore.Store
	logger *zap.Logger
}

// NewBlobPersistence создаёт порт поверх хранилища документов
func NewBlobPersistence(store kvstore.Store, logger *zap.Logger) *BlobPersistence {
	return &BlobPersistence{store: store, logger: logger}
}

// Load читает коллекцию. Отсутствующий ключ и повреждённый документ дают пустую коллекцию,
// ошибки самого хранилища возвращаются
func (b *BlobPersistence) Load(ctx context.Context) ([]model.Project, error) {
	projects, _, err := loadDocument[[]model.Project](ctx, b.store, b.logger, KeyProjects)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []model.Project{}
	}
	return projects, nil
}

// Save сериализует и записывает всю коллекцию
func (b *BlobPersistence) Save(ctx context.Context, projects []model.Project) error {
	if projects == nil {
		projects = []model.Project{}
	}
	return saveDocument(ctx, b.store, KeyProjects, projects)
}

// loadDocument читает JSON-документ. found=false, если ключа нет или документ не разобрался;
// во втором случае возвращается нулевое значение, а в лог пишется предупреждение
func loadDocument[T any](ctx context.Context, store kvstore.Store, logger *zap.Logger, key string) (T, bool, error) {
	var zero T
	data, err := store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("load %s: %w", key, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("malformed document, using empty value",
			zap.String("key", key), zap.Error(err))
		return zero, false, nil
	}
	return v, true, nil
}

// saveDocument сериализует v и записывает под ключом, замеряя длительность записи
func saveDocument(ctx context.Context, store kvstore.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	start := time.Now()
	err = store.Put(ctx, key, data)
	metrics.RecordStoreSave(key, err, time.Since(start))
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
