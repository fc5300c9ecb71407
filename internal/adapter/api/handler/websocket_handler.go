package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"scentswap/internal/infrastructure/firebase"
	ws "scentswap/internal/infrastructure/websocket"
	"scentswap/pkg/errors"
)

type WebSocketHandler struct {
	wsManager  *ws.Manager
	authClient *firebase.FirebaseAuthClient
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Restrict in production
	},
}

var webSocketHandler *WebSocketHandler

func NewWebSocketHandler(wsManager *ws.Manager, authClient *firebase.FirebaseAuthClient) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:  wsManager,
		authClient: authClient,
	}
}

func SetupWebSocketHandler(wsManager *ws.Manager, authClient *firebase.FirebaseAuthClient) {
	webSocketHandler = NewWebSocketHandler(wsManager, authClient)
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, _ := c.Get("uid").(string)

	// Browser WebSocket clients cannot set an Authorization header, so a
	// token query parameter is accepted as a fallback.
	if userID == "" {
		token := c.QueryParam("token")
		if token == "" {
			return errors.Unauthorized("Authentication required", nil)
		}

		uid, err := h.authClient.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return errors.Unauthorized("Invalid token", err)
		}
		userID = uid
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}
