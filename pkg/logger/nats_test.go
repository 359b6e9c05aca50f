// Пакет logger содержит unit-тесты для проверки работы NATSClient и создания zap-логгера
package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

// mockConn реализует интерфейс Conn и позволяет перехватывать вызовы Publish
// Мы сохраняем переданный subject и данные для проверки в тестах
type mockConn struct {
	publishedSubject string // тема, переданная в Publish
	publishedData    []byte // данные, переданные в Publish
	returnErr        error  // ошибка, которую вернет Publish
}

// Publish сохраняет параметры вызова в полях mockConn и возвращает заранее заданную ошибку
func (m *mockConn) Publish(subject string, data []byte) error {
	m.publishedSubject = subject
	m.publishedData = data
	return m.returnErr
}

// TestPublishLog_Success проверяет, что PublishLog вызывает Publish с тем же subject и данными
func TestPublishLog_Success(t *testing.T) {
	subject := "projects.events"
	data := []byte("payload")
	mock := &mockConn{}
	client := NewClient(mock, subject)

	if err := client.PublishLog(data); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if mock.publishedSubject != subject {
		t.Errorf("expected subject %s, got %s", subject, mock.publishedSubject)
	}
	if !bytes.Equal(mock.publishedData, data) {
		t.Errorf("expected data %s, got %s", data, mock.publishedData)
	}
	if client.Subject() != subject {
		t.Errorf("expected Subject() %s, got %s", subject, client.Subject())
	}
}

// TestPublishLog_Error проверяет прокидку ошибки из Conn.Publish
func TestPublishLog_Error(t *testing.T) {
	expErr := errors.New("publish failed")
	client := NewClient(&mockConn{returnErr: expErr}, "subj")

	if err := client.PublishLog([]byte("x")); !errors.Is(err, expErr) {
		t.Errorf("expected error %v, got %v", expErr, err)
	}
}

// TestPublishJSON_Success проверяет, что событие публикуется в виде JSON
func TestPublishJSON_Success(t *testing.T) {
	mock := &mockConn{}
	client := NewClient(mock, "projects.events")
	event := map[string]any{"type": "project.created", "taskCount": 3}

	if err := client.PublishJSON(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(mock.publishedData, &got); err != nil {
		t.Fatalf("published data is not JSON: %v", err)
	}
	if got["type"] != "project.created" {
		t.Errorf("expected type project.created, got %v", got["type"])
	}
}

// TestPublishJSON_Errors проверяет ошибки сериализации и публикации
func TestPublishJSON_Errors(t *testing.T) {
	mock := &mockConn{}
	client := NewClient(mock, "subj")
	// канал не сериализуется в JSON
	if err := client.PublishJSON(make(chan int)); err == nil {
		t.Error("expected marshal error")
	}
	if mock.publishedData != nil {
		t.Error("nothing should be published on marshal error")
	}

	expErr := errors.New("connection closed")
	client = NewClient(&mockConn{returnErr: expErr}, "subj")
	if err := client.PublishJSON(struct{}{}); !errors.Is(err, expErr) {
		t.Errorf("expected wrapped %v, got %v", expErr, err)
	}
}

// TestNew проверяет создание логгеров для разных окружений
func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production", ""} {
		l, err := New(env)
		if err != nil {
			t.Fatalf("New(%q) error: %v", env, err)
		}
		if l == nil {
			t.Fatalf("New(%q) returned nil logger", env)
		}
	}
	if Must("development") == nil {
		t.Error("Must returned nil logger")
	}
}
