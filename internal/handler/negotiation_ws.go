package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"bithra/config"
	"bithra/internal/auth"
	"bithra/internal/logger"
	"bithra/internal/models"
	"bithra/internal/ws"

	"github.com/gin-gonic/gin"
)

type negotiationChat interface {
	Authorize(userID, id uint) error
	Send(userID, id uint, content string) (*models.NegotiationMessage, error)
}

type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// NegotiationWS joins the caller to a negotiation room. Query: token, negotiation_id.
// Inbound {"type":"message","content":"..."} frames are persisted through the
// service, which broadcasts them back to the room.
func NegotiationWS(cfg *config.JWTConfig, hub *ws.NegotiationHub, chat negotiationChat) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		idStr := c.Query("negotiation_id")
		if token == "" || idStr == "" {
			badRequest(c, "token and negotiation_id required")
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		id64, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil || id64 == 0 {
			badRequest(c, "invalid negotiation_id")
			return
		}
		negotiationID := uint(id64)
		if err := chat.Authorize(claims.UserID, negotiationID); err != nil {
			respondError(c, err, "could not join negotiation")
			return
		}

		conn, err := ws.Upgrade(c.Writer, c.Request)
		if err != nil {
			return
		}
		defer conn.Close()

		client := ws.NewClient(claims.UserID)
		hub.Join(negotiationID, client)
		defer func() {
			hub.Leave(negotiationID, client)
			client.Close()
		}()
		log := logger.Component("ws").WithField("negotiation_id", negotiationID).WithField("user_id", claims.UserID)
		log.Debug("joined negotiation room")

		go ws.WritePump(conn, client)
		ws.ReadPump(conn, func(raw []byte) {
			var in inboundFrame
			if json.Unmarshal(raw, &in) != nil || in.Type != "message" {
				return
			}
			if _, err := chat.Send(claims.UserID, negotiationID, in.Content); err != nil {
				msg := err.Error()
				if statusFor(err) == http.StatusInternalServerError {
					log.WithError(err).Error("persist message failed")
					msg = "could not send message"
				}
				client.Push(ws.Event{Type: "error", NegotiationID: negotiationID, Error: msg})
			}
		})
	}
}
