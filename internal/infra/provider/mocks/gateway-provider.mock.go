package mocks

import (
	"time"
	"whatsapp-gateway-client/internal/domain/dto"
	"whatsapp-gateway-client/internal/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockGatewayProvider is a testify mock of provider.IGatewayProvider.
type MockGatewayProvider struct {
	mock.Mock
}

func (m *MockGatewayProvider) Begin() { m.Called() }

func (m *MockGatewayProvider) Loop() { m.Called() }

func (m *MockGatewayProvider) SetPollInterval(intervalMs int) { m.Called(intervalMs) }

func (m *MockGatewayProvider) PollInterval() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func (m *MockGatewayProvider) Status() (dto.StatusResponse, error) {
	args := m.Called()
	return args.Get(0).(dto.StatusResponse), args.Error(1)
}

func (m *MockGatewayProvider) IsConnected() bool {
	return m.Called().Bool(0)
}

func (m *MockGatewayProvider) GetPhoneNumber() string {
	return m.Called().String(0)
}

func (m *MockGatewayProvider) GetQueueSize() int {
	return m.Called().Int(0)
}

// GetMessages copies the []entities.Message given as the first return value
// into the caller's buffer and returns the copied count.
func (m *MockGatewayProvider) GetMessages(messages []entities.Message) int {
	args := m.Called(messages)
	batch, _ := args.Get(0).([]entities.Message)
	return copy(messages, batch)
}

func (m *MockGatewayProvider) FetchMessages(limit int) ([]entities.Message, error) {
	args := m.Called(limit)
	batch, _ := args.Get(0).([]entities.Message)
	return batch, args.Error(1)
}

func (m *MockGatewayProvider) Send(payload interface{}) error {
	return m.Called(payload).Error(0)
}

func (m *MockGatewayProvider) SendText(to, text string) bool {
	return m.Called(to, text).Bool(0)
}

func (m *MockGatewayProvider) SendTextToGroup(groupID, text string) bool {
	return m.Called(groupID, text).Bool(0)
}

func (m *MockGatewayProvider) SendButtons(to, text string, buttons []string) bool {
	return m.Called(to, text, buttons).Bool(0)
}

func (m *MockGatewayProvider) SendList(to, text, title, buttonText string, sections []entities.ListSection) bool {
	return m.Called(to, text, title, buttonText, sections).Bool(0)
}

func (m *MockGatewayProvider) SendLocation(to string, latitude, longitude float64) bool {
	return m.Called(to, latitude, longitude).Bool(0)
}
