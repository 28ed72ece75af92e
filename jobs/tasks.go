package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogReindex rebuilds the in-memory reference index and the
	// Redis snapshot from the live tables.
	TaskCatalogReindex = "catalog:reindex"
)

// CatalogReindexPayload describes one reindex request.
type CatalogReindexPayload struct {
	Reason string `json:"reason"`
}

// NewCatalogReindexTask builds a reindex task.
func NewCatalogReindexTask(reason string) (*asynq.Task, error) {
	body, err := json.Marshal(CatalogReindexPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogReindex, body, asynq.Queue(QueueDefault)), nil
}
