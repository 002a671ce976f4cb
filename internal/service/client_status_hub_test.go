package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-offline-keeper/models"
)

func TestStatusHub_KeepsLatest(t *testing.T) {
	hub := NewStatusHub()
	updates, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	hub.Publish(models.SyncStatus{PendingCount: 1})
	hub.Publish(models.SyncStatus{PendingCount: 2})
	hub.Publish(models.SyncStatus{PendingCount: 3})

	assert.Equal(t, 3, (<-updates).PendingCount)
	select {
	case s := <-updates:
		t.Fatalf("unexpected extra status %+v", s)
	default:
	}
}

func TestStatusHub_Unsubscribe(t *testing.T) {
	hub := NewStatusHub()
	updates, unsubscribe := hub.Subscribe()
	assert.Equal(t, 1, hub.Subscribers())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.Subscribers())

	_, open := <-updates
	assert.False(t, open)

	hub.Publish(models.SyncStatus{})
}

func TestStatusHub_FanOut(t *testing.T) {
	hub := NewStatusHub()
	a, unsubA := hub.Subscribe()
	defer unsubA()
	b, unsubB := hub.Subscribe()
	defer unsubB()

	hub.Publish(models.SyncStatus{FailedCount: 4})

	assert.Equal(t, 4, (<-a).FailedCount)
	assert.Equal(t, 4, (<-b).FailedCount)
}
