package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/task-management/internal/core/events"
)

type HistoryWriter interface {
	CreateHistory(ctx context.Context, h *History) error
}

// HistoryRecorder persists a TaskHistory row for every status change.
type HistoryRecorder struct {
	writer HistoryWriter
	logger *slog.Logger
}

func NewHistoryRecorder(writer HistoryWriter, logger *slog.Logger) *HistoryRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryRecorder{writer: writer, logger: logger}
}

func (h *HistoryRecorder) HandleStatusChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*events.TaskStatusChangedEvent)
	if !ok {
		h.logger.Error("invalid event type for status change handler", "event_type", event.EventType())
		return fmt.Errorf("expected TaskStatusChangedEvent, got %T", event)
	}

	changedBy := changed.ChangedBy
	entry := &History{
		TaskID:         changed.TaskID,
		ChangedByID:    &changedBy,
		PreviousStatus: changed.PreviousStatus,
		NewStatus:      changed.NewStatus,
		Comment:        changed.Comment,
	}
	if err := h.writer.CreateHistory(ctx, entry); err != nil {
		return fmt.Errorf("record history for task %d: %w", changed.TaskID, err)
	}

	h.logger.Info("task status change recorded",
		"task_id", changed.TaskID,
		"previous_status", changed.PreviousStatus,
		"new_status", changed.NewStatus,
		"event_id", changed.EventID())
	return nil
}

func (h *HistoryRecorder) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeTaskStatusChanged, h.HandleStatusChanged)
}
