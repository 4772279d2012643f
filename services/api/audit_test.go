package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dugouthq/dugout/shared/models"
)

func newEvent() models.AuditEvent {
	return models.AuditEvent{
		ID:         uuid.New().String(),
		TeamID:     uuid.New(),
		UserID:     uuid.New(),
		Action:     "create",
		Resource:   "player",
		ResourceID: uuid.New(),
		OccurredAt: time.Now(),
	}
}

func TestEnqueue_NeverBlocks(t *testing.T) {
	// No workers drain the channel here; a full queue must fail fast instead
	// of stalling the request path.
	ap := &AuditProducer{eventChan: make(chan models.AuditEvent, 2)}

	assert.NoError(t, ap.Enqueue(newEvent()))
	assert.NoError(t, ap.Enqueue(newEvent()))

	err := ap.Enqueue(newEvent())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "queue full")
}

func TestEnqueue_PreservesEventFields(t *testing.T) {
	ap := &AuditProducer{eventChan: make(chan models.AuditEvent, 1)}

	event := newEvent()
	assert.NoError(t, ap.Enqueue(event))

	got := <-ap.eventChan
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.TeamID, got.TeamID)
	assert.Equal(t, event.Action, got.Action)
	assert.Equal(t, event.Resource, got.Resource)
}
