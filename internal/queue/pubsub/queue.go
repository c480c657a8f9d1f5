// Package pubsub implements the task queue on Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/tactipus/courtlistener/internal/logging"

	"go.uber.org/zap"
)

// taskMessage is the wire payload handed to the processing workers.
type taskMessage struct {
	Task     string `json:"task"`
	RecordID string `json:"record_id"`

	// NotBefore carries the jitter delay. Pub/Sub has no native delayed
	// delivery; workers requeue messages that arrive early.
	NotBefore time.Time `json:"not_before"`
}

// Queue publishes processing tasks to a Pub/Sub topic.
type Queue struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// New creates a Pub/Sub client and verifies the topic exists, failing
// fast on bad configuration. Authentication uses Application Default
// Credentials.
func New(ctx context.Context, projectID, topicID string) (*Queue, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.L.Warn("Failed to close pubsub client after topic check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !exists {
		if closeErr := client.Close(); closeErr != nil {
			logging.L.Warn("Failed to close pubsub client after topic check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}

	return &Queue{client: client, topic: topic}, nil
}

// Enqueue publishes the task fire-and-forget. The Pub/Sub client batches
// and retries in the background; the pipeline never waits on delivery.
func (q *Queue) Enqueue(ctx context.Context, task, recordID string, delay time.Duration) error {
	payload, err := json.Marshal(taskMessage{
		Task:      task,
		RecordID:  recordID,
		NotBefore: time.Now().UTC().Add(delay),
	})
	if err != nil {
		return fmt.Errorf("marshal task payload: %w", err)
	}

	result := q.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"task": task,
		},
	})
	_ = result // fire-and-forget

	return nil
}

// Close stops the topic's publisher, flushing pending messages, and
// closes the client.
func (q *Queue) Close() error {
	q.topic.Stop()
	if err := q.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
