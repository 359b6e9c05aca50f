package model

import "time"

// EventType — тип события в журнале изменений проектов
type EventType string

const (
	EventProjectCreated   EventType = "project.created"
	EventProjectUpdated   EventType = "project.updated"
	EventProjectCompleted EventType = "project.completed"
	EventProjectReopened  EventType = "project.reopened"
	EventProjectTrashed   EventType = "project.trashed"
	EventProjectRestored  EventType = "project.restored"
	EventProjectPurged    EventType = "project.purged"
	EventTasksReplaced    EventType = "project.tasks_replaced"
)

// Event — запись журнала, публикуемая в NATS и сохраняемая пакетами в ClickHouse
type Event struct {
	Type       EventType `json:"type"`
	ProjectID  ID        `json:"projectId"`
	Name       string    `json:"name"`
	Status     Status    `json:"status"`
	TaskCount  int       `json:"taskCount"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewEvent снимает с проекта поля, попадающие в журнал
func NewEvent(typ EventType, p Project, at time.Time) Event {
	return Event{
		Type:       typ,
		ProjectID:  p.ID,
		Name:       p.Name,
		Status:     p.Status,
		TaskCount:  len(p.SubTasks),
		OccurredAt: at,
	}
}
