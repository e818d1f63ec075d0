package models

import "time"

const (
	EventCreate = "create"
	EventUpdate = "update"
	EventDelete = "delete"
)

type TaskEvent struct {
	Type       string    `json:"type"`
	TaskId     int64     `json:"task_id"`
	UserId     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Title      string    `json:"title"`
	OldTitle   string    `json:"old_title,omitempty"`
	Completed  bool      `json:"completed"`
	OccurredAt time.Time `json:"occurred_at"`
}
