package events

import "time"

// TaskEvent is the payload of every task lifecycle event.
type TaskEvent struct {
	TaskID   string    `json:"task_id"`
	Kind     string    `json:"kind"`
	BaseName string    `json:"base_name"`
	State    string    `json:"state,omitempty"`
	Reason   string    `json:"reason,omitempty"`
	Nuggets  int       `json:"nuggets,omitempty"`
	Time     time.Time `json:"time"`
}
