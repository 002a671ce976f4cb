package service

import (
	"sync"

	"github.com/MKhiriev/go-offline-keeper/models"
)

// StatusHub fans sync status updates out to subscribers. Each subscriber
// holds at most the latest status; a slow reader misses intermediate ones
// and never blocks the publisher.
type StatusHub struct {
	mu     sync.Mutex
	subs   map[int]chan models.SyncStatus
	nextID int
}

func NewStatusHub() *StatusHub {
	return &StatusHub{subs: make(map[int]chan models.SyncStatus)}
}

// Subscribe returns a channel of status updates and a function that
// unsubscribes and closes it.
func (h *StatusHub) Subscribe() (<-chan models.SyncStatus, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan models.SyncStatus, 1)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish delivers status to every subscriber, replacing an unread one.
func (h *StatusHub) Publish(status models.SyncStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- status:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- status:
			default:
			}
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (h *StatusHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
