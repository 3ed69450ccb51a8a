package agent

import (
	"fmt"
	"time"
)

// NewTask builds a pending task ready for dispatch.
func NewTask(kind TaskKind, description string, payload map[string]any) *Task {
	now := time.Now().UTC()
	if payload == nil {
		payload = map[string]any{}
	}
	return &Task{
		ID:          NewTaskID(),
		Kind:        kind,
		Description: description,
		Payload:     payload,
		Status:      TaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ParseKind validates an externally supplied kind string.
func ParseKind(s string) (TaskKind, error) {
	switch TaskKind(s) {
	case KindPlanning, KindFile, KindTerminal, KindDebug:
		return TaskKind(s), nil
	default:
		return "", fmt.Errorf("unknown task kind: %q", s)
	}
}

// requireString fetches a required payload key. All agents report missing
// keys through this helper so the error format stays uniform.
func requireString(task *Task, key string) (string, error) {
	v, ok := task.Payload[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("task %s: required payload key %q missing or not a string", task.ID, key)
	}
	return v, nil
}

// optionalString fetches a payload key, returning def when absent.
func optionalString(task *Task, key, def string) string {
	if v, ok := task.Payload[key].(string); ok && v != "" {
		return v
	}
	return def
}
