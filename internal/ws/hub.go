package ws

import (
	"encoding/json"
	"sync"
)

const sendBuffer = 64

// Client is one WebSocket connection joined to a negotiation room.
type Client struct {
	UserID uint
	Send   chan []byte
	mu     sync.Mutex
	closed bool
}

func NewClient(userID uint) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, sendBuffer)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// deliver drops the frame when the client is closed or its buffer is full.
func (c *Client) deliver(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		return false
	}
}

// Push queues a JSON frame for this client only.
func (c *Client) Push(v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return c.deliver(data)
}

// Event is the frame written to room members.
type Event struct {
	Type          string      `json:"type"`
	NegotiationID uint        `json:"negotiation_id"`
	Data          interface{} `json:"data,omitempty"`
	Error         string      `json:"error,omitempty"`
}
