package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Status — состояние жизненного цикла проекта
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusTrash     Status = "trash"
)

// Valid сообщает, что статус известен
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusTrash:
		return true
	}
	return false
}

// Mode определяет, ведутся ли по проекту реальные финансы
type Mode string

const (
	// ModeStudy — черновик/оценка без финансов
	ModeStudy Mode = "study"
	// ModeAwarded — выигранный проект с бюджетом и оплатами
	ModeAwarded Mode = "awarded"
)

// Valid сообщает, что режим известен
func (m Mode) Valid() bool {
	return m == ModeStudy || m == ModeAwarded
}

// Project представляет проект (ключ projects в хранилище)
type Project struct {
	ID            ID         `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Deadline      Date       `json:"deadline"`
	CreatedDate   time.Time  `json:"createdDate"`
	ProjectMode   Mode       `json:"projectMode"`
	Status        Status     `json:"status"`
	TotalBudget   float64    `json:"totalBudget"`
	MyProfit      float64    `json:"myProfit"`
	Notes         string     `json:"notes"`
	SubTasks      []Task     `json:"subTasks"`
	CompletedDate *time.Time `json:"completedDate"`
	DeletedDate   *time.Time `json:"deletedDate"`
}

// Task — этап проекта со своим сроком и долей оплаты
type Task struct {
	ID                  ID         `json:"id"`
	Name                string     `json:"name"`
	Deadline            Date       `json:"deadline"`
	Percentage          float64    `json:"percentage"`
	Completed           bool       `json:"completed"`
	CompletedDate       *time.Time `json:"completedDate"`
	PaymentReceived     bool       `json:"paymentReceived"`
	PaymentReceivedDate *time.Time `json:"paymentReceivedDate"`
	Notes               string     `json:"notes"`
	Expenses            []Expense  `json:"expenses"`
}

// Expense — статья расходов задачи
type Expense struct {
	ID          ID      `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Template — переиспользуемый список названий задач без дат и процентов
type Template struct {
	ID          ID             `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Tasks       []TemplateTask `json:"tasks" yaml:"tasks"`
}

// TemplateTask — элемент шаблона
type TemplateTask struct {
	ID   ID     `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// User — профиль пользователя (ключ user), ядро его только сохраняет и читает
type User struct {
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
	LoginTime   string `json:"loginTime"`
	Name        string `json:"name,omitempty"`
	Password    string `json:"password,omitempty"`
}

// FindTask возвращает индекс задачи по id или -1
func (p *Project) FindTask(id ID) int {
	for i := range p.SubTasks {
		if p.SubTasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone возвращает глубокую копию проекта
func (p Project) Clone() Project {
	out := p
	out.CompletedDate = cloneTime(p.CompletedDate)
	out.DeletedDate = cloneTime(p.DeletedDate)
	out.SubTasks = make([]Task, len(p.SubTasks))
	for i, t := range p.SubTasks {
		out.SubTasks[i] = t.Clone()
	}
	return out
}

// Clone возвращает глубокую копию задачи
func (t Task) Clone() Task {
	out := t
	out.CompletedDate = cloneTime(t.CompletedDate)
	out.PaymentReceivedDate = cloneTime(t.PaymentReceivedDate)
	out.Expenses = make([]Expense, len(t.Expenses))
	copy(out.Expenses, t.Expenses)
	return out
}

// Clone возвращает глубокую копию шаблона
func (t Template) Clone() Template {
	out := t
	out.Tasks = make([]TemplateTask, len(t.Tasks))
	copy(out.Tasks, t.Tasks)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// UnmarshalJSON читает проект терпимо к старым данным: суммы могут быть строками,
// subTasks может отсутствовать или не быть массивом
func (p *Project) UnmarshalJSON(data []byte) error {
	type alias Project
	aux := struct {
		*alias
		TotalBudget Amount          `json:"totalBudget"`
		MyProfit    Amount          `json:"myProfit"`
		SubTasks    json.RawMessage `json:"subTasks"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.TotalBudget = float64(aux.TotalBudget)
	p.MyProfit = float64(aux.MyProfit)
	p.SubTasks = []Task{}
	if isJSONArray(aux.SubTasks) {
		if err := json.Unmarshal(aux.SubTasks, &p.SubTasks); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON читает задачу; expenses, не являющийся массивом, считается пустым
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	aux := struct {
		*alias
		Percentage Amount          `json:"percentage"`
		Expenses   json.RawMessage `json:"expenses"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Percentage = float64(aux.Percentage)
	t.Expenses = []Expense{}
	if isJSONArray(aux.Expenses) {
		if err := json.Unmarshal(aux.Expenses, &t.Expenses); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON читает расход; сумма может быть строкой
func (e *Expense) UnmarshalJSON(data []byte) error {
	type alias Expense
	aux := struct {
		*alias
		Amount Amount `json:"amount"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.Amount = float64(aux.Amount)
	return nil
}

// UnmarshalJSON читает шаблон; tasks по умолчанию пустой
func (t *Template) UnmarshalJSON(data []byte) error {
	type alias Template
	aux := struct {
		*alias
		Tasks json.RawMessage `json:"tasks"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Tasks = []TemplateTask{}
	if isJSONArray(aux.Tasks) {
		if err := json.Unmarshal(aux.Tasks, &t.Tasks); err != nil {
			return err
		}
	}
	return nil
}

// Amount — денежная сумма или процент, терпимый к формату: принимает число,
// числовую строку (в том числе с разделителями тысяч), пустую строку и null
type Amount float64

// UnmarshalJSON разбирает сумму в любом из допустимых форматов
func (f *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// нечисловая строка в старых данных трактуется как 0
			*f = 0
			return nil
		}
		*f = Amount(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Amount(v)
	return nil
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
