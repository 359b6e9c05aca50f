package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID — непрозрачный идентификатор сущности.
// Старые записи хранили id как число (метка времени создания), поэтому при чтении
// принимаются и строки, и числа.
type ID string

// NewID генерирует новый уникальный идентификатор
func NewID() ID {
	return ID(uuid.NewString())
}

// String возвращает строковое представление идентификатора
func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON принимает строку или число
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", string(data), err)
	}
	*id = ID(n.String())
	return nil
}
