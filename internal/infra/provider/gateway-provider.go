package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"whatsapp-gateway-client/internal/domain/dto"
	"whatsapp-gateway-client/internal/domain/entities"
	"whatsapp-gateway-client/internal/infra/logger"
	"whatsapp-gateway-client/internal/util"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	Version             = "1.0.0"
	DefaultPollInterval = 5000
	MaxMessages         = 10
	RequestTimeout      = 10 * time.Second
	APIKeyHeader        = "X-API-Key"

	// MaxResponseBytes bounds how much of a gateway answer is read. A full
	// batch of MaxMessages fits well within it.
	MaxResponseBytes = 64 << 10

	statusEndpoint   = "/esp32/status"
	messagesEndpoint = "/esp32/messages"
	sendEndpoint     = "/esp32/send"
)

// GatewayClient talks to the WhatsApp gateway over its /esp32 HTTP API.
// Each public call performs at most one blocking round trip bounded by
// RequestTimeout. There are no retries.
type GatewayClient struct {
	Logger     *logger.Logger
	HttpClient *http.Client

	apiURL      string
	apiKey      string
	instanceKey string

	mu           sync.RWMutex
	pollInterval int
}

// NewGatewayClient builds a client for one gateway instance. A nil httpClient
// gets a private client with RequestTimeout.
func NewGatewayClient(logger *logger.Logger, httpClient *http.Client, apiURL, apiKey, instanceKey string) *GatewayClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}

	return &GatewayClient{
		Logger:       logger,
		HttpClient:   httpClient,
		apiURL:       strings.TrimRight(apiURL, "/"),
		apiKey:       apiKey,
		instanceKey:  instanceKey,
		pollInterval: DefaultPollInterval,
	}
}

// SetPollInterval stores the cadence, in milliseconds, callers should poll at.
// The client itself never polls.
func (th *GatewayClient) SetPollInterval(intervalMs int) {
	th.mu.Lock()
	defer th.mu.Unlock()
	th.pollInterval = intervalMs
}

func (th *GatewayClient) PollInterval() time.Duration {
	th.mu.RLock()
	defer th.mu.RUnlock()
	return time.Duration(th.pollInterval) * time.Millisecond
}

func (th *GatewayClient) Begin() {
	th.Logger.Info("[WhatsApp] Library initialized", logrus.Fields{
		"version":  Version,
		"api_url":  th.apiURL,
		"instance": th.instanceKey,
	})
}

// Loop is kept for callers that drive the client from a main loop. Polling is
// up to the caller, see PollInterval.
func (th *GatewayClient) Loop() {}

// ==================== TRANSPORT ====================

// do performs one HTTP call against apiURL + endpoint.
//
// Parameters:
//   - method: http.MethodGet or http.MethodPost. Anything else fails before any I/O.
//   - endpoint: path plus query, appended verbatim to the base URL.
//   - payload: JSON body, ignored for GET.
//
// Returns:
//   - string: the raw response body when the gateway answered 200.
//   - error: a *GatewayError. Non-200 answers are KindRejected and carry the
//     status and body, which are also logged. A body over MaxResponseBytes is
//     KindDecode.
func (th *GatewayClient) do(method, endpoint, payload string) (string, error) {
	logFields := logrus.Fields{
		"request_id": uuid.NewString(),
		"method":     method,
		"endpoint":   endpoint,
	}

	var body io.Reader
	switch method {
	case http.MethodGet:
	case http.MethodPost:
		body = strings.NewReader(payload)
	default:
		th.Logger.Error(fmt.Sprintf("[WhatsApp] Unsupported HTTP method %s", method), logFields)
		return "", newGatewayError(KindUnsupportedMethod, nil, fmt.Sprintf("unsupported method %q", method))
	}

	ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, th.apiURL+endpoint, body)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("[WhatsApp] Failed to create HTTP request %v", err), logFields)
		return "", newGatewayError(KindNetwork, err, "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, th.apiKey)

	res, err := th.HttpClient.Do(req)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("[WhatsApp] Connection failed: %v", err), logFields)
		return "", newGatewayError(KindNetwork, err, "HTTP request failed")
	}
	defer res.Body.Close()

	logFields["status"] = res.StatusCode

	raw, err := io.ReadAll(io.LimitReader(res.Body, MaxResponseBytes+1))
	if err != nil {
		th.Logger.Error(fmt.Sprintf("[WhatsApp] Failed to read response body %v", err), logFields)
		return "", newGatewayError(KindNetwork, err, "failed to read response body")
	}

	if res.StatusCode != http.StatusOK {
		th.Logger.Error(fmt.Sprintf("[WhatsApp] HTTP Error: %d response_body %s", res.StatusCode, string(raw)), logFields)
		return "", &GatewayError{
			Kind:       KindRejected,
			StatusCode: res.StatusCode,
			Body:       string(raw),
			cause:      errors.Errorf("unexpected HTTP status: %s", res.Status),
		}
	}

	if len(raw) > MaxResponseBytes {
		th.Logger.Error(fmt.Sprintf("[WhatsApp] Response body exceeds %d bytes", MaxResponseBytes), logFields)
		return "", newGatewayError(KindDecode, nil, fmt.Sprintf("response body exceeds %d bytes", MaxResponseBytes))
	}

	th.Logger.Debug("[WhatsApp] Request succeeded", logFields)
	return string(raw), nil
}

// httpRequest is do reduced to the boolean contract.
func (th *GatewayClient) httpRequest(method, endpoint, payload string) (string, bool) {
	response, err := th.do(method, endpoint, payload)
	return response, err == nil
}

// parseMessages decodes a {"messages": [...]} document into messages and
// returns how many records were written. It never writes past len(messages)
// or MaxMessages, whichever is smaller; extra elements are dropped.
func (th *GatewayClient) parseMessages(body string, messages []entities.Message) (int, error) {
	var doc dto.MessagesResponse
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		th.Logger.Error(fmt.Sprintf("[WhatsApp] JSON parse error: %v", err))
		return 0, newGatewayError(KindDecode, err, "failed to decode messages")
	}

	count := min(len(doc.Messages), len(messages), MaxMessages)
	for i := 0; i < count; i++ {
		messages[i] = decodeMessage(doc.Messages[i])
	}

	return count, nil
}

func (th *GatewayClient) endpoint(path string, extra url.Values) string {
	query := url.Values{}
	query.Set("key", th.instanceKey)
	for k, v := range extra {
		query[k] = v
	}
	return path + "?" + query.Encode()
}

// ==================== STATUS ====================

// Status fetches the instance status. The boolean helpers below read single
// fields of it and swallow the error.
func (th *GatewayClient) Status() (dto.StatusResponse, error) {
	response, err := th.do(http.MethodGet, th.endpoint(statusEndpoint, nil), "")
	if err != nil {
		return dto.StatusResponse{}, err
	}

	var probe json.RawMessage
	if err := json.Unmarshal([]byte(response), &probe); err != nil {
		th.Logger.Error(fmt.Sprintf("[WhatsApp] JSON parse error: %v", err))
		return dto.StatusResponse{}, newGatewayError(KindDecode, err, "failed to decode status")
	}

	f := decodeFields(probe)
	return dto.StatusResponse{
		Connected: f.Bool("connected"),
		Phone:     f.String("phone"),
		QueueSize: f.Int("queueSize"),
	}, nil
}

func (th *GatewayClient) IsConnected() bool {
	status, err := th.Status()
	if err != nil {
		return false
	}
	return status.Connected
}

func (th *GatewayClient) GetPhoneNumber() string {
	status, err := th.Status()
	if err != nil {
		return ""
	}
	return status.Phone
}

func (th *GatewayClient) GetQueueSize() int {
	status, err := th.Status()
	if err != nil {
		return 0
	}
	return status.QueueSize
}

// ==================== RECEIVE ====================

// GetMessages fills messages with the next batch from the gateway queue and
// returns how many entries were written. The batch size requested is
// min(len(messages), MaxMessages). Served messages are removed from the
// gateway queue, so a batch lost here is not redelivered.
func (th *GatewayClient) GetMessages(messages []entities.Message) int {
	limit := min(len(messages), MaxMessages)
	if limit <= 0 {
		return 0
	}

	response, ok := th.httpRequest(http.MethodGet, th.messagesEndpoint(limit), "")
	if !ok {
		return 0
	}

	count, _ := th.parseMessages(response, messages[:limit])
	return count
}

// FetchMessages is GetMessages with the error kept. limit is clamped to
// [1, MaxMessages].
func (th *GatewayClient) FetchMessages(limit int) ([]entities.Message, error) {
	limit = max(1, min(limit, MaxMessages))

	response, err := th.do(http.MethodGet, th.messagesEndpoint(limit), "")
	if err != nil {
		return nil, err
	}

	buf := make([]entities.Message, limit)
	count, err := th.parseMessages(response, buf)
	if err != nil {
		return nil, err
	}
	return buf[:count], nil
}

func (th *GatewayClient) messagesEndpoint(limit int) string {
	return th.endpoint(messagesEndpoint, url.Values{"limit": {strconv.Itoa(limit)}})
}

// ==================== SEND ====================

// Send serializes payload and posts it to the send endpoint.
func (th *GatewayClient) Send(payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		th.Logger.Error(fmt.Sprintf("[WhatsApp] Failed to marshal payload %v", err))
		return newGatewayError(KindEncode, err, "failed to marshal payload")
	}

	_, err = th.do(http.MethodPost, th.endpoint(sendEndpoint, nil), string(body))
	return err
}

func (th *GatewayClient) SendText(to, text string) bool {
	return th.Send(dto.NewTextPayload(to, text)) == nil
}

// SendTextToGroup sends text to a group, adding the @g.us suffix when missing.
func (th *GatewayClient) SendTextToGroup(groupID, text string) bool {
	return th.SendText(util.GroupJID(groupID), text)
}

func (th *GatewayClient) SendButtons(to, text string, buttons []string) bool {
	return th.Send(dto.NewButtonsPayload(to, text, buttons)) == nil
}

func (th *GatewayClient) SendList(to, text, title, buttonText string, sections []entities.ListSection) bool {
	return th.Send(dto.NewListPayload(to, text, title, buttonText, sections)) == nil
}

func (th *GatewayClient) SendLocation(to string, latitude, longitude float64) bool {
	return th.Send(dto.NewLocationPayload(to, latitude, longitude)) == nil
}
