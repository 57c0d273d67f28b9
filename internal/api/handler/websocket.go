package handler

import (
	"net/http"

	"github.com/pizza-nz/print-routing-service/internal/websockets"
)

// WebSocketHandler upgrades event stream connections
type WebSocketHandler struct {
	hub *websockets.Hub
}

func NewWebSocketHandler(hub *websockets.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	clientTypeStr := r.URL.Query().Get("client_type")
	if clientTypeStr == "" {
		http.Error(w, "client_type is required", http.StatusBadRequest)
		return
	}

	clientType := websockets.ClientType(clientTypeStr)

	switch clientType {
	case websockets.ClientTypePOS, websockets.ClientTypeAdmin, websockets.ClientTypeDashboard:
		// Valid client type
	default:
		http.Error(w, "invalid client_type", http.StatusBadRequest)
		return
	}

	// Upgrade the HTTP connection to a WebSocket connection
	conn, err := websockets.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// If upgrading fails, the upgrader has already written the error to the response
		return
	}

	websockets.ServeWs(h.hub, conn, userID, clientType)
}
