package dto

import "encoding/json"

// MessagesResponse is the body of GET /esp32/messages. Elements stay raw so a
// single malformed entry cannot fail the whole batch.
type MessagesResponse struct {
	Messages []json.RawMessage `json:"messages"`
}

// StatusResponse is the body of GET /esp32/status.
type StatusResponse struct {
	Connected bool   `json:"connected"`
	Phone     string `json:"phone"`
	QueueSize int    `json:"queueSize"`
}
