package entities

// Message is one incoming WhatsApp message as served by the gateway queue.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Text      string `json:"text"`
	Timestamp uint64 `json:"timestamp"`
}

// ListSection groups the row labels shown under one heading of a list message.
type ListSection struct {
	Title string   `json:"title"`
	Rows  []string `json:"rows"`
}
