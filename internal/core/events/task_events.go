package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTaskStatusChanged = "task.status_changed"
)

type TaskStatusChangedEvent struct {
	BaseEvent
	TaskID         int64  `json:"task_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
	ChangedBy      int64  `json:"changed_by"`
	Comment        string `json:"comment"`
}

func NewTaskStatusChangedEvent(taskID int64, previousStatus, newStatus string, changedBy int64, comment string) *TaskStatusChangedEvent {
	return &TaskStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTaskStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"task_id":         taskID,
				"previous_status": previousStatus,
				"new_status":      newStatus,
				"changed_by":      changedBy,
				"comment":         comment,
			},
		},
		TaskID:         taskID,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
		ChangedBy:      changedBy,
		Comment:        comment,
	}
}
