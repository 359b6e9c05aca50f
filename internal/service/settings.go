package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"SchedulerApp/internal/model"
)

// SettingsRepo определяет интерфейс хранения настроек
type SettingsRepo interface {
	User(ctx context.Context) (model.User, bool, error)
	SaveUser(ctx context.Context, u model.User) error
	DeleteUser(ctx context.Context) error
	GlobalNotes(ctx context.Context) (string, error)
	SaveGlobalNotes(ctx context.Context, notes string) error
	APIKey(ctx context.Context) (string, error)
	SaveAPIKey(ctx context.Context, key string) error
	DeleteAPIKey(ctx context.Context) error
}

// SettingsService управляет профилем, общими заметками и ключом ассистента
type SettingsService struct {
	repo   SettingsRepo
	logger *zap.Logger
	now    func() time.Time
}

// NewSettingsService создаёт сервис настроек
func NewSettingsService(repo SettingsRepo, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: logger, now: time.Now}
}

// Profile возвращает сохранённый профиль или ErrNotFound
func (s *SettingsService) Profile(ctx context.Context) (model.User, error) {
	u, found, err := s.repo.User(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !found {
		return model.User{}, fmt.Errorf("%w: user profile", model.ErrNotFound)
	}
	return u, nil
}

// SaveProfile сохраняет профиль; email обязателен, время входа проставляется, если не задано
func (s *SettingsService) SaveProfile(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return model.User{}, fmt.Errorf("%w: email is required", model.ErrValidation)
	}
	if u.LoginTime == "" {
		u.LoginTime = s.now().UTC().Format(time.RFC3339)
	}
	if err := s.repo.SaveUser(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Logout удаляет профиль
func (s *SettingsService) Logout(ctx context.Context) error {
	return s.repo.DeleteUser(ctx)
}

// Notes возвращает общие заметки
func (s *SettingsService) Notes(ctx context.Context) (string, error) {
	return s.repo.GlobalNotes(ctx)
}

// SaveNotes сохраняет общие заметки
func (s *SettingsService) SaveNotes(ctx context.Context, notes string) error {
	return s.repo.SaveGlobalNotes(ctx, notes)
}

// APIKeyStatus сообщает, задан ли ключ ассистента, и возвращает его в замаскированном виде
func (s *SettingsService) APIKeyStatus(ctx context.Context) (bool, string, error) {
	key, err := s.repo.APIKey(ctx)
	if err != nil {
		return false, "", err
	}
	if key == "" {
		return false, "", nil
	}
	return true, MaskKey(key), nil
}

// SaveAPIKey сохраняет ключ ассистента
func (s *SettingsService) SaveAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: api key is empty", model.ErrValidation)
	}
	if err := s.repo.SaveAPIKey(ctx, key); err != nil {
		return err
	}
	s.logger.Info("assistant api key updated")
	return nil
}

// DeleteAPIKey удаляет ключ ассистента
func (s *SettingsService) DeleteAPIKey(ctx context.Context) error {
	return s.repo.DeleteAPIKey(ctx)
}

// MaskKey оставляет видимыми только последние 4 символа
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
