package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout — формат календарной даты в сохранённом состоянии
const DateLayout = "2006-01-02"

// Date — календарная дата без времени суток. Хранится как полночь UTC,
// поэтому разница между датами всегда кратна суткам.
type Date struct {
	t time.Time
}

// NewDate создаёт дату из года, месяца и дня
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf отбрасывает время суток у t, сохраняя календарный день в его часовом поясе
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today возвращает текущий календарный день по локальному времени
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate разбирает YYYY-MM-DD, а также полную метку RFC3339 (берётся её календарный день)
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
}

// MustParseDate как ParseDate, но паникует при ошибке; только для констант и тестов
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time возвращает дату как полночь UTC
func (d Date) Time() time.Time { return d.t }

// IsZero сообщает, что дата не задана
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before сообщает, что d раньше other
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After сообщает, что d позже other
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal сообщает, что даты совпадают
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// AddDays сдвигает дату на n дней
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// SubtractYear возвращает ту же дату годом ранее; 29 февраля превращается в 28 февраля
func (d Date) SubtractYear() Date {
	y, m, day := d.t.Date()
	prev := NewDate(y-1, m, day)
	if prev.t.Month() != m {
		// день не существует в прошлом году, берём последний день того же месяца
		prev = NewDate(y-1, m+1, 0)
	}
	return prev
}

// DaysUntil возвращает количество дней от d до other (отрицательное, если other раньше)
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// String форматирует дату как YYYY-MM-DD
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalJSON пишет дату строкой YYYY-MM-DD, незаданную как null
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON принимает YYYY-MM-DD, RFC3339, пустую строку и null
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s: %w", string(data), err)
	}
	if strings.TrimSpace(s) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
