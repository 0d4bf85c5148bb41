// Package widget holds the card controllers: each one polls a data source
// for a widget's batch payload, tracks the loading/data/refreshing/error
// state machine, and serves snapshots to the HTTP layer. Zoomed detail
// views run as sessions with their own period-scoped fetches.
package widget

import (
	"sync"

	"pingboard/internal/models"
)

// Update is one fresh payload delivered to hub subscribers.
type Update struct {
	WidgetID string
	Payload  *models.WidgetPayload
}

// Hub fans fresh widget payloads out to subscribers. Every successful
// controller poll publishes here; websocket clients and any export hooks
// subscribe per widget.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Update]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Update]struct{})}
}

// Subscribe registers for a widget's payload updates. The returned cancel
// function removes the subscription and must be called.
func (h *Hub) Subscribe(widgetID string) (<-chan Update, func()) {
	ch := make(chan Update, 4)

	h.mu.Lock()
	if h.subs[widgetID] == nil {
		h.subs[widgetID] = make(map[chan Update]struct{})
	}
	h.subs[widgetID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs[widgetID], ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a payload to the widget's subscribers. Slow subscribers
// miss updates instead of blocking the publisher.
func (h *Hub) Publish(widgetID string, payload *models.WidgetPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[widgetID] {
		select {
		case ch <- Update{WidgetID: widgetID, Payload: payload}:
		default:
		}
	}
}
