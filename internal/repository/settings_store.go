package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"SchedulerApp/internal/model"
	"SchedulerApp/pkg/kvstore"
)

// SettingsStore читает и пишет одиночные документы: профиль, общие заметки и ключ ассистента.
// Кэша нет, каждое обращение идёт в хранилище.
type SettingsStore struct {
	store  kvstore.Store
	logger *zap.Logger
}

// NewSettingsStore создаёт хранилище настроек
func NewSettingsStore(store kvstore.Store, logger *zap.Logger) *SettingsStore {
	return &SettingsStore{store: store, logger: logger}
}

// User возвращает профиль; found=false, если профиль не сохранён
func (s *SettingsStore) User(ctx context.Context) (model.User, bool, error) {
	return loadDocument[model.User](ctx, s.store, s.logger, KeyUser)
}

// SaveUser сохраняет профиль как есть
func (s *SettingsStore) SaveUser(ctx context.Context, u model.User) error {
	return saveDocument(ctx, s.store, KeyUser, u)
}

// DeleteUser удаляет профиль (выход из приложения)
func (s *SettingsStore) DeleteUser(ctx context.Context) error {
	return s.store.Delete(ctx, KeyUser)
}

// GlobalNotes возвращает общие заметки; пустая строка, если их нет
func (s *SettingsStore) GlobalNotes(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyGlobalNotes)
}

// SaveGlobalNotes сохраняет общие заметки
func (s *SettingsStore) SaveGlobalNotes(ctx context.Context, notes string) error {
	return saveDocument(ctx, s.store, KeyGlobalNotes, notes)
}

// APIKey возвращает ключ ассистента; пустая строка, если он не задан
func (s *SettingsStore) APIKey(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyAPIKey)
}

// SaveAPIKey сохраняет ключ ассистента
func (s *SettingsStore) SaveAPIKey(ctx context.Context, key string) error {
	return saveDocument(ctx, s.store, KeyAPIKey, key)
}

// DeleteAPIKey удаляет ключ ассистента
func (s *SettingsStore) DeleteAPIKey(ctx context.Context) error {
	return s.store.Delete(ctx, KeyAPIKey)
}

// getString читает строковый документ. Строки пишутся как JSON, но старые данные
// хранили их без кавычек, поэтому неразобранное содержимое возвращается как есть
func (s *SettingsStore) getString(ctx context.Context, key string) (string, error) {
	data, err := s.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data), nil
	}
	return v, nil
}
