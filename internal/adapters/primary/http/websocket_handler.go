package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	mw "github.com/VaughnVernon/SchemaMinder-sub003/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/VaughnVernon/SchemaMinder-sub003/internal/adapters/primary/websocket"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/auth"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/config"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
)

// WebSocketHandler handles WebSocket connection upgrades for registry rooms.
type WebSocketHandler struct {
	hub         *wsAdapter.Hub
	tm          *auth.TokenManager
	upgrader    websocket.Upgrader
	connLimiter *mw.RateLimitByKey
	logger      *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *wsAdapter.Hub,
	tm *auth.TokenManager,
	cfg *config.Config,
	logger *slog.Logger,
) *WebSocketHandler {
	handler := &WebSocketHandler{
		hub: hub,
		tm:  tm,
		// Browsers retry aggressively when a registry tab reconnects; limit
		// connection churn per user rather than per IP.
		connLimiter: mw.NewRateLimitByKey(1, 5),
		logger:      logger,
	}

	handler.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     handler.makeOriginChecker(cfg),
	}

	return handler
}

// makeOriginChecker creates an origin checking function based on configuration
func (h *WebSocketHandler) makeOriginChecker(cfg *config.Config) func(r *http.Request) bool {
	allowedOrigins := cfg.WebSocket.AllowedOrigins

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// In development mode, allow all origins (but log a warning)
		if cfg.IsDevelopment() {
			if origin != "" {
				h.logger.Warn("allowing websocket connection in development mode",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
				)
			}
			return true
		}

		// No origin header (same-origin request or non-browser client)
		if origin == "" {
			return true
		}

		// Check against allowed origins
		parsedOrigin, err := url.Parse(origin)
		if err != nil {
			h.logger.Warn("failed to parse websocket origin",
				"origin", origin,
				"error", err,
			)
			return false
		}

		originHost := parsedOrigin.Host

		for _, allowed := range allowedOrigins {
			// Support wildcard subdomains like "*.example.com"
			if strings.HasPrefix(allowed, "*.") {
				suffix := allowed[1:] // Remove the "*", keep ".example.com"
				if strings.HasSuffix(originHost, suffix) || originHost == allowed[2:] {
					return true
				}
			} else if originHost == allowed {
				return true
			}
		}

		h.logger.Warn("websocket connection rejected due to origin",
			"origin", origin,
			"remote_addr", r.RemoteAddr,
			"allowed_origins", allowedOrigins,
		)
		return false
	}
}

// ServeHTTP handles WebSocket connection requests. The browser WebSocket API
// cannot set headers, so the token rides in a query parameter; the registry ID
// does too, and combines with the token's tenant to form the room.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		h.logger.Warn("websocket connection rejected: missing token",
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
		)
		http.Error(w, "Missing authentication token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tm.ValidateToken(tokenString)
	if err != nil {
		h.logger.Warn("websocket connection rejected: invalid token",
			"request_id", requestID,
			"remote_addr", r.RemoteAddr,
			"error", err,
		)
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	registryID := r.URL.Query().Get("registryId")
	if registryID == "" {
		http.Error(w, "Missing registryId", http.StatusBadRequest)
		return
	}

	if !h.connLimiter.Allow(claims.UserID.String()) {
		h.logger.Warn("websocket connection rejected: rate limited",
			"request_id", requestID,
			"user_id", claims.UserID,
		)
		http.Error(w, "Too many connection attempts", http.StatusTooManyRequests)
		return
	}

	room := domain.RoomID(claims.TenantID.String(), registryID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket connection",
			"request_id", requestID,
			"user_id", claims.UserID,
			"error", err,
		)
		return
	}

	h.logger.Info("websocket connection established",
		"request_id", requestID,
		"user_id", claims.UserID,
		"room", room,
		"remote_addr", r.RemoteAddr,
	)

	client := wsAdapter.NewClient(h.hub, conn, claims.UserID.String(), room, h.logger)
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
