package ws

import (
	"encoding/json"
	"sync"

	"bithra/internal/logger"
)

// Room holds the live connections of one negotiation.
type Room struct {
	NegotiationID uint
	mu            sync.RWMutex
	clients       map[*Client]struct{}
}

func (r *Room) snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

// NegotiationHub keeps one room per negotiation id.
type NegotiationHub struct {
	mu    sync.Mutex
	rooms map[uint]*Room
}

func NewNegotiationHub() *NegotiationHub {
	return &NegotiationHub{rooms: make(map[uint]*Room)}
}

func (h *NegotiationHub) Join(negotiationID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[negotiationID]
	if !ok {
		r = &Room{NegotiationID: negotiationID, clients: make(map[*Client]struct{})}
		h.rooms[negotiationID] = r
	}
	r.mu.Lock()
	r.clients[c] = struct{}{}
	r.mu.Unlock()
}

// Leave removes the client and drops the room once it is empty.
func (h *NegotiationHub) Leave(negotiationID uint, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[negotiationID]
	if !ok {
		return
	}
	r.mu.Lock()
	delete(r.clients, c)
	empty := len(r.clients) == 0
	r.mu.Unlock()
	if empty {
		delete(h.rooms, negotiationID)
	}
}

func (h *NegotiationHub) RoomSize(negotiationID uint) int {
	h.mu.Lock()
	r, ok := h.rooms[negotiationID]
	h.mu.Unlock()
	if !ok {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// BroadcastNegotiation sends an event to every member of the room, the sender included.
func (h *NegotiationHub) BroadcastNegotiation(negotiationID uint, event string, payload interface{}) {
	h.mu.Lock()
	r, ok := h.rooms[negotiationID]
	h.mu.Unlock()
	if !ok {
		return
	}
	data, err := json.Marshal(Event{Type: event, NegotiationID: negotiationID, Data: payload})
	if err != nil {
		logger.Component("ws").WithError(err).Warn("encode event failed")
		return
	}
	for _, c := range r.snapshot() {
		if !c.deliver(data) {
			logger.Component("ws").WithField("user_id", c.UserID).Debug("dropped frame for slow client")
		}
	}
}
