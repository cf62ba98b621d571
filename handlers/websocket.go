package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"asp-server/entities"
	"asp-server/services"
	"asp-server/usecases"
	"asp-server/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Device-side message envelopes.
type incomingMessage struct {
	Type string `json:"type"` // state_report | heartbeat
}

type stateReportPayload struct {
	Type  string `json:"type"`
	State string `json:"state"`
}

type statePushPayload struct {
	Type  string `json:"type"` // always "state"
	ASPID string `json:"asp_id"`
	State string `json:"state"`
}

// WSHandler owns the device push channel: ASP hardware connects here
// and receives state changes the moment an owner toggles them.
type WSHandler struct {
	mgr     *ws.Manager
	control *usecases.ControlUseCase
	tokens  *services.TokenService
	revoked services.TokenRevoker
}

func NewWSHandler(mgr *ws.Manager, control *usecases.ControlUseCase, tokens *services.TokenService, revoked services.TokenRevoker) *WSHandler {
	return &WSHandler{mgr: mgr, control: control, tokens: tokens, revoked: revoked}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// PushState satisfies usecases.StatePusher: a best-effort push of the
// new state to the device, dropped silently when it is offline.
func (h *WSHandler) PushState(asp *entities.ASP) {
	payload, err := json.Marshal(statePushPayload{Type: "state", ASPID: asp.ID, State: asp.State})
	if err != nil {
		return
	}
	if err := h.mgr.Send(asp.ID, payload); err != nil && err != ws.ErrNotConnected {
		log.Printf("push to ASP %s failed: %v", asp.ID, err)
	}
}

// HandleASPWS upgrades to websocket and reads messages from a device.
// GET /ws?id=<asp_id>&token=<jwt> — the token must belong to the owner
// of the ASP's room.
func (h *WSHandler) HandleASPWS(c *gin.Context) {
	aspID := c.Query("id")
	if aspID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing ASP id"})
		return
	}

	claims, err := h.tokens.Parse(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}
	if isRevoked, err := h.revoked.IsRevoked(claims.ID); err != nil || isRevoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
		return
	}

	asp, err := h.control.ResolveOwnedASP(claims.UserID, aspID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	h.mgr.Register(asp.ID, claims.UserID, conn)
	log.Printf("ASP connected: %s", asp.ID)

	defer func() {
		h.mgr.Unregister(asp.ID, conn)
		log.Printf("ASP disconnected: %s", asp.ID)
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ASP %s closed connection", asp.ID)
			} else {
				log.Printf("read error from %s: %v", asp.ID, err)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var base incomingMessage
		if err := json.Unmarshal(message, &base); err != nil {
			log.Printf("invalid json from %s: %v", asp.ID, err)
			continue
		}

		switch base.Type {
		case "state_report":
			var payload stateReportPayload
			if err := json.Unmarshal(message, &payload); err != nil {
				log.Printf("invalid state_report payload from %s: %v", asp.ID, err)
				continue
			}
			if _, err := h.control.ReportState(claims.UserID, asp.ID, payload.State); err != nil {
				log.Printf("state report from %s rejected: %v", asp.ID, err)
			}
		case "heartbeat":
			// No-op, the read itself proves liveness.
		default:
			log.Printf("unknown message type from %s: %s", asp.ID, base.Type)
		}
	}
}

// GetConnectedASPs GET /control/connected-asps/:userId
// Only the caller's own connections are listed.
func (h *WSHandler) GetConnectedASPs(c *gin.Context) {
	callerID := c.GetString("userID")
	if callerID == "" || callerID != c.Param("userId") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}
	ids := h.mgr.ConnectedOwned(callerID)
	c.JSON(http.StatusOK, gin.H{"asps": ids, "count": len(ids)})
}
