package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/dugouthq/dugout/shared/middleware"
	"github.com/dugouthq/dugout/shared/models"
	"github.com/dugouthq/dugout/shared/utils"
)

// AuditProducer publishes audit events to Kafka through a worker pool.
// Enqueue never blocks the request path: a full queue drops the event with a
// log line instead of failing the mutation.
type AuditProducer struct {
	writer       *kafka.Writer
	topic        string
	eventChan    chan models.AuditEvent
	workerCount  int
	shutdownChan chan struct{}
	breaker      *utils.CircuitBreaker
	wg           sync.WaitGroup
}

// NewAuditProducer creates a producer and starts its workers.
func NewAuditProducer(broker, topic string) *AuditProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	ap := &AuditProducer{
		writer:       writer,
		topic:        topic,
		eventChan:    make(chan models.AuditEvent, 1000),
		workerCount:  4,
		shutdownChan: make(chan struct{}),
		breaker:      utils.NewCircuitBreaker(5, 30*time.Second),
	}

	for i := 0; i < ap.workerCount; i++ {
		ap.wg.Add(1)
		go ap.worker(i)
	}

	return ap
}

func (ap *AuditProducer) worker(id int) {
	defer ap.wg.Done()

	for {
		select {
		case event := <-ap.eventChan:
			if err := ap.publish(event); err != nil {
				logrus.WithError(err).Warnf("audit worker %d: failed to publish event %s", id, event.ID)
			}
		case <-ap.shutdownChan:
			return
		}
	}
}

// Enqueue queues an event without blocking. The only error is a full queue.
func (ap *AuditProducer) Enqueue(event models.AuditEvent) error {
	select {
	case ap.eventChan <- event:
		return nil
	default:
		return fmt.Errorf("audit event queue full, event dropped")
	}
}

func (ap *AuditProducer) publish(event models.AuditEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	msg := kafka.Message{
		Topic: ap.topic,
		Key:   []byte(event.TeamID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "resource", Value: []byte(event.Resource)},
		},
	}

	return ap.breaker.Call(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return ap.writer.WriteMessages(ctx, msg)
	})
}

// Close drains the workers and closes the writer.
func (ap *AuditProducer) Close() error {
	close(ap.shutdownChan)
	ap.wg.Wait()

	if err := ap.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	return nil
}

// recordAudit builds an event from the request context and enqueues it.
// Mutations never fail because auditing did.
func recordAudit(c *gin.Context, audit *AuditProducer, action, resource string, resourceID uuid.UUID) {
	if audit == nil {
		return
	}

	info, err := middleware.GetUserInfoFromContext(c)
	if err != nil {
		return
	}

	event := models.AuditEvent{
		ID:         uuid.New().String(),
		TeamID:     info.TeamID,
		UserID:     info.UserID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OccurredAt: time.Now(),
	}

	if err := audit.Enqueue(event); err != nil {
		logrus.WithError(err).Warn("audit event dropped")
	}
}
