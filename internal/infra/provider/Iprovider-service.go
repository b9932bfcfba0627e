package provider

import (
	"time"
	"whatsapp-gateway-client/internal/domain/dto"
	"whatsapp-gateway-client/internal/domain/entities"
)

type IGatewayProvider interface {
	Begin()
	Loop()
	SetPollInterval(intervalMs int)
	PollInterval() time.Duration

	Status() (dto.StatusResponse, error)
	IsConnected() bool
	GetPhoneNumber() string
	GetQueueSize() int

	GetMessages(messages []entities.Message) int
	FetchMessages(limit int) ([]entities.Message, error)

	Send(payload interface{}) error
	SendText(to, text string) bool
	SendTextToGroup(groupID, text string) bool
	SendButtons(to, text string, buttons []string) bool
	SendList(to, text, title, buttonText string, sections []entities.ListSection) bool
	SendLocation(to string, latitude, longitude float64) bool
}

var _ IGatewayProvider = (*GatewayClient)(nil)
