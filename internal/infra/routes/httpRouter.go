package routes

import (
	"encoding/json"
	"net/http"
	"whatsapp-gateway-client/internal/infra/handlers"

	"github.com/gorilla/mux"
)

type Routes struct {
	Mux           *mux.Router
	BridgeHandler *handlers.BridgeHandlers

	// ServeMessages registers GET /messages. Turn it off when another consumer
	// (the background poller) owns the gateway queue.
	ServeMessages bool
}

func NewRoutes(mux *mux.Router, bridgeHandler *handlers.BridgeHandlers) *Routes {
	return &Routes{Mux: mux, BridgeHandler: bridgeHandler, ServeMessages: true}
}

func (r *Routes) Init() {
	r.Mux.HandleFunc("/status", r.BridgeHandler.Status).Methods(http.MethodGet)
	if r.ServeMessages {
		r.Mux.HandleFunc("/messages", r.BridgeHandler.Messages).Methods(http.MethodGet)
	}

	r.Mux.HandleFunc("/send/text", r.BridgeHandler.SendText).Methods(http.MethodPost)
	r.Mux.HandleFunc("/send/group", r.BridgeHandler.SendGroup).Methods(http.MethodPost)
	r.Mux.HandleFunc("/send/buttons", r.BridgeHandler.SendButtons).Methods(http.MethodPost)
	r.Mux.HandleFunc("/send/list", r.BridgeHandler.SendList).Methods(http.MethodPost)
	r.Mux.HandleFunc("/send/location", r.BridgeHandler.SendLocation).Methods(http.MethodPost)

	r.Mux.HandleFunc("/healthCheck", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods(http.MethodGet)
}
