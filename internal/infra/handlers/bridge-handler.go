package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"whatsapp-gateway-client/internal/domain/dto"
	"whatsapp-gateway-client/internal/domain/entities"
	"whatsapp-gateway-client/internal/infra/logger"
	"whatsapp-gateway-client/internal/infra/provider"
	"whatsapp-gateway-client/internal/util"
)

// BridgeHandlers exposes the gateway client over a local REST API so that
// other processes on the host can reuse one configured instance.
type BridgeHandlers struct {
	Logger   *logger.Logger
	Provider provider.IGatewayProvider
}

func NewBridgeHandlers(logger *logger.Logger, gatewayProvider provider.IGatewayProvider) *BridgeHandlers {
	return &BridgeHandlers{Logger: logger, Provider: gatewayProvider}
}

type sendTextRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type sendGroupRequest struct {
	GroupID string `json:"groupId"`
	Text    string `json:"text"`
}

type sendButtonsRequest struct {
	To      string   `json:"to"`
	Text    string   `json:"text"`
	Buttons []string `json:"buttons"`
}

type sendListRequest struct {
	To         string                 `json:"to"`
	Text       string                 `json:"text"`
	Title      string                 `json:"title"`
	ButtonText string                 `json:"buttonText"`
	Sections   []entities.ListSection `json:"sections"`
}

type sendLocationRequest struct {
	To  string   `json:"to"`
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

type messagesResponse struct {
	Count    int                `json:"count"`
	Messages []entities.Message `json:"messages"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Status proxies GET /esp32/status.
func (th *BridgeHandlers) Status(w http.ResponseWriter, r *http.Request) {
	status, err := th.Provider.Status()
	if err != nil {
		th.gatewayError(w, err)
		return
	}

	th.writeJSON(w, http.StatusOK, status)
}

// Messages fetches the next batch. Messages returned here are consumed on the
// gateway; the caller of this endpoint is their only recipient.
//
// Query Parameters:
//   - limit (int, optional): batch size, clamped to [1, provider.MaxMessages].
//     Defaults to provider.MaxMessages.
func (th *BridgeHandlers) Messages(w http.ResponseWriter, r *http.Request) {
	limit := provider.MaxMessages
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			th.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	messages, err := th.Provider.FetchMessages(limit)
	if err != nil {
		th.gatewayError(w, err)
		return
	}
	if messages == nil {
		messages = []entities.Message{}
	}

	th.writeJSON(w, http.StatusOK, messagesResponse{Count: len(messages), Messages: messages})
}

func (th *BridgeHandlers) SendText(w http.ResponseWriter, r *http.Request) {
	var req sendTextRequest
	if !th.decode(w, r, &req) {
		return
	}
	if req.To == "" || req.Text == "" {
		th.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to and text are required"})
		return
	}

	th.send(w, dto.NewTextPayload(req.To, req.Text))
}

func (th *BridgeHandlers) SendGroup(w http.ResponseWriter, r *http.Request) {
	var req sendGroupRequest
	if !th.decode(w, r, &req) {
		return
	}
	if req.GroupID == "" || req.Text == "" {
		th.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "groupId and text are required"})
		return
	}

	th.send(w, dto.NewTextPayload(util.GroupJID(req.GroupID), req.Text))
}

func (th *BridgeHandlers) SendButtons(w http.ResponseWriter, r *http.Request) {
	var req sendButtonsRequest
	if !th.decode(w, r, &req) {
		return
	}
	if req.To == "" || req.Text == "" {
		th.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to and text are required"})
		return
	}

	th.send(w, dto.NewButtonsPayload(req.To, req.Text, req.Buttons))
}

func (th *BridgeHandlers) SendList(w http.ResponseWriter, r *http.Request) {
	var req sendListRequest
	if !th.decode(w, r, &req) {
		return
	}
	if req.To == "" || req.Text == "" {
		th.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to and text are required"})
		return
	}

	th.send(w, dto.NewListPayload(req.To, req.Text, req.Title, req.ButtonText, req.Sections))
}

func (th *BridgeHandlers) SendLocation(w http.ResponseWriter, r *http.Request) {
	var req sendLocationRequest
	if !th.decode(w, r, &req) {
		return
	}
	if req.To == "" || req.Lat == nil || req.Lng == nil {
		th.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "to, lat and lng are required"})
		return
	}

	th.send(w, dto.NewLocationPayload(req.To, *req.Lat, *req.Lng))
}

func (th *BridgeHandlers) send(w http.ResponseWriter, payload interface{}) {
	if err := th.Provider.Send(payload); err != nil {
		th.gatewayError(w, err)
		return
	}

	th.writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (th *BridgeHandlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		th.Logger.Warn(fmt.Sprintf("Invalid JSON payload: %s", err.Error()))
		th.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

// gatewayError maps a provider error to 502, or 500 when the request never
// left the process.
func (th *BridgeHandlers) gatewayError(w http.ResponseWriter, err error) {
	kind := provider.KindOf(err)
	th.Logger.Error(fmt.Sprintf("Gateway call failed: %v", err))

	status := http.StatusBadGateway
	if kind == provider.KindEncode || kind == provider.KindUnsupportedMethod {
		status = http.StatusInternalServerError
	}

	th.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind.String()})
}

func (th *BridgeHandlers) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		th.Logger.Error(fmt.Sprintf("Failed to write response: %v", err))
	}
}
