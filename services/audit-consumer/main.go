package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/dugouthq/dugout/shared/config"
	"github.com/dugouthq/dugout/shared/models"
)

// AuditConsumer drains audit events from Kafka into the audit_logs table.
// Writes that fail land in failed_audit_events, which the retry loop replays
// with exponential backoff until they stick or run out of retries.
type AuditConsumer struct {
	db            *gorm.DB
	reader        *kafka.Reader
	maxRetries    int
	batchSize     int
	checkInterval time.Duration
}

func NewAuditConsumer(db *gorm.DB, broker, topic, groupID string) *AuditConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})

	return &AuditConsumer{
		db:            db,
		reader:        reader,
		maxRetries:    8,
		batchSize:     100,
		checkInterval: 30 * time.Second,
	}
}

// Consume reads events until the context is cancelled.
func (ac *AuditConsumer) Consume(ctx context.Context) {
	logrus.Info("Audit consumer started")

	for {
		msg, err := ac.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).Error("failed to read audit message")
			time.Sleep(time.Second)
			continue
		}

		var event models.AuditEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logrus.WithError(err).Warn("discarding malformed audit message")
			continue
		}

		if err := ac.persist(event); err != nil {
			logrus.WithError(err).Warnf("failed to persist audit event %s, queued for retry", event.ID)
			ac.recordFailure(event, msg.Value, err)
		}
	}
}

// persist writes one audit log row. The unique event_id index makes replays
// of already-persisted events a no-op instead of a duplicate.
func (ac *AuditConsumer) persist(event models.AuditEvent) error {
	entry := models.AuditLog{
		EventID:    event.ID,
		TeamID:     event.TeamID,
		UserID:     event.UserID,
		Action:     event.Action,
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		OccurredAt: event.OccurredAt,
	}

	err := ac.db.Create(&entry).Error
	if err != nil && isDuplicateKey(err) {
		return nil
	}
	return err
}

func isDuplicateKey(err error) bool {
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "23505")
}

func (ac *AuditConsumer) recordFailure(event models.AuditEvent, payload []byte, cause error) {
	nextRetry := time.Now().Add(time.Minute)
	failed := models.FailedAuditEvent{
		EventID:      event.ID,
		Payload:      string(payload),
		ErrorMessage: cause.Error(),
		Status:       "pending",
		NextRetryAt:  &nextRetry,
	}
	if err := ac.db.Create(&failed).Error; err != nil {
		logrus.WithError(err).Errorf("failed to record failed audit event %s", event.ID)
	}
}

// ProcessFailedEvents replays pending failures on a fixed interval.
func (ac *AuditConsumer) ProcessFailedEvents(ctx context.Context) {
	ticker := time.NewTicker(ac.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ac.retryBatch()
		}
	}
}

func (ac *AuditConsumer) retryBatch() {
	var pending []models.FailedAuditEvent
	err := ac.db.Where("status = ? AND next_retry_at <= ?", "pending", time.Now()).
		Order("created_at ASC").
		Limit(ac.batchSize).
		Find(&pending).Error
	if err != nil {
		logrus.WithError(err).Error("failed to fetch pending audit events")
		return
	}

	if len(pending) == 0 {
		return
	}

	logrus.Infof("Retrying %d failed audit events", len(pending))
	for _, failed := range pending {
		if err := ac.retryFailedEvent(failed); err != nil {
			logrus.WithError(err).Warnf("retry failed for audit event %s", failed.EventID)
		}
	}
}

func (ac *AuditConsumer) retryFailedEvent(failed models.FailedAuditEvent) error {
	var event models.AuditEvent
	if err := json.Unmarshal([]byte(failed.Payload), &event); err != nil {
		return ac.markAbandoned(failed, fmt.Sprintf("unparseable payload: %s", err))
	}

	if err := ac.persist(event); err != nil {
		return ac.updateRetryStatus(failed, err)
	}
	return ac.markResolved(failed)
}

func (ac *AuditConsumer) updateRetryStatus(failed models.FailedAuditEvent, cause error) error {
	failed.RetryCount++
	failed.UpdatedAt = time.Now()

	if failed.RetryCount >= ac.maxRetries {
		failed.Status = "abandoned"
		now := time.Now()
		failed.ResolvedAt = &now
		failed.ErrorMessage = fmt.Sprintf("max retries reached: %s", cause.Error())
	} else {
		// Exponential backoff: 1m, 2m, 4m, 8m, ...
		delay := time.Minute * time.Duration(1<<(failed.RetryCount-1))
		nextRetry := time.Now().Add(delay)
		failed.NextRetryAt = &nextRetry
		failed.ErrorMessage = cause.Error()
	}

	return ac.db.Save(&failed).Error
}

func (ac *AuditConsumer) markResolved(failed models.FailedAuditEvent) error {
	now := time.Now()
	failed.Status = "resolved"
	failed.UpdatedAt = now
	failed.ResolvedAt = &now
	return ac.db.Save(&failed).Error
}

func (ac *AuditConsumer) markAbandoned(failed models.FailedAuditEvent, reason string) error {
	now := time.Now()
	failed.Status = "abandoned"
	failed.UpdatedAt = now
	failed.ResolvedAt = &now
	failed.ErrorMessage = reason
	return ac.db.Save(&failed).Error
}

// Stats reports counts per failure status alongside the retry configuration.
func (ac *AuditConsumer) Stats() map[string]interface{} {
	var stats struct {
		Logged    int64 `json:"logged"`
		Pending   int64 `json:"pending"`
		Resolved  int64 `json:"resolved"`
		Abandoned int64 `json:"abandoned"`
	}

	ac.db.Model(&models.AuditLog{}).Count(&stats.Logged)
	ac.db.Model(&models.FailedAuditEvent{}).Where("status = ?", "pending").Count(&stats.Pending)
	ac.db.Model(&models.FailedAuditEvent{}).Where("status = ?", "resolved").Count(&stats.Resolved)
	ac.db.Model(&models.FailedAuditEvent{}).Where("status = ?", "abandoned").Count(&stats.Abandoned)

	return map[string]interface{}{
		"audit_stats": stats,
		"config": map[string]interface{}{
			"max_retries":    ac.maxRetries,
			"batch_size":     ac.batchSize,
			"check_interval": ac.checkInterval.String(),
		},
	}
}

func (ac *AuditConsumer) Close() error {
	return ac.reader.Close()
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}, &models.FailedAuditEvent{}); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		broker = "localhost:9092"
	}
	topic := os.Getenv("AUDIT_TOPIC")
	if topic == "" {
		topic = "audit-events"
	}

	consumer := NewAuditConsumer(db, broker, topic, "audit-consumer")
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.Consume(ctx)
	go consumer.ProcessFailedEvents(ctx)

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "audit-consumer",
		})
	})

	router.GET("/stats", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"success": true,
			"data":    consumer.Stats(),
		})
	})

	port := os.Getenv("AUDIT_CONSUMER_PORT")
	if port == "" {
		port = "8081"
	}

	logrus.Infof("Audit consumer starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start audit consumer:", err)
	}
}
