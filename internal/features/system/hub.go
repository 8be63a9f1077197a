package system

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const listenerBuffer = 32

// listener is one websocket connection subscribed to a tenant's run events
type listener struct {
	send chan []byte
}

// Hub fans schedule run events out to the live connections of each tenant.
// Slow listeners lose events rather than stall the publisher.
type Hub struct {
	mu      sync.RWMutex
	tenants map[string]map[*listener]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		tenants: make(map[string]map[*listener]struct{}),
		logger:  logger,
	}
}

func (h *Hub) register(tenantID string) *listener {
	l := &listener{send: make(chan []byte, listenerBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tenants[tenantID] == nil {
		h.tenants[tenantID] = make(map[*listener]struct{})
	}
	h.tenants[tenantID][l] = struct{}{}
	return l
}

func (h *Hub) unregister(tenantID string, l *listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.tenants[tenantID]
	if _, ok := set[l]; !ok {
		return
	}
	delete(set, l)
	close(l.send)
	if len(set) == 0 {
		delete(h.tenants, tenantID)
	}
}

// Listeners returns how many connections are subscribed for tenantID
func (h *Hub) Listeners(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tenants[tenantID])
}

// Publish sends event as JSON to every listener of tenantID
func (h *Hub) Publish(tenantID string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to encode live event", zap.String("tenant_id", tenantID), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for l := range h.tenants[tenantID] {
		select {
		case l.send <- payload:
		default:
			h.logger.Debug("live listener lagging, event dropped", zap.String("tenant_id", tenantID))
		}
	}
}
