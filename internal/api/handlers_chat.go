package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ombrelle/switchboard/internal/autoreply"
	"github.com/ombrelle/switchboard/internal/conversation"
	"github.com/ombrelle/switchboard/internal/segment"
	"github.com/ombrelle/switchboard/internal/store"
	"gorm.io/gorm"
)

// handleChatList serves the cross-page chat listing, optionally filtered by
// department.
func handleChatList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		department := c.Query("department")

		customers, err := store.Customers(db)
		if err != nil {
			fail(c, err)
			return
		}
		sessions, err := store.AllSessions(db, department)
		if err != nil {
			fail(c, err)
			return
		}
		messages, err := store.AllMessages(db)
		if err != nil {
			fail(c, err)
			return
		}

		rows := conversation.Chats(customers, sessions, messages)
		if department != "" {
			filtered := rows[:0]
			for _, r := range rows {
				if r.Department == department {
					filtered = append(filtered, r)
				}
			}
			rows = filtered
		}
		c.JSON(http.StatusOK, gin.H{"chats": rows})
	}
}

// handleChatOverview serves a customer's session list plus the segmentation
// diagnostics (unassigned and ambiguous messages).
func handleChatOverview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Param("phone")

		customer, err := store.Customer(db, phone)
		if err != nil {
			fail(c, err)
			return
		}
		sessions, err := store.SessionsForPhone(db, phone)
		if err != nil {
			fail(c, err)
			return
		}
		messages, err := store.MessagesForPhone(db, phone)
		if err != nil {
			fail(c, err)
			return
		}

		c.JSON(http.StatusOK, conversation.BuildOverview(customer, sessions, messages))
	}
}

// handleSessionView serves the full message view of one session.
func handleSessionView(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Param("phone")
		ticket := c.Param("ticket")

		session, err := store.SessionByTicket(db, ticket)
		if err != nil {
			fail(c, err)
			return
		}
		if session.Phone != phone {
			c.JSON(http.StatusNotFound, gin.H{"error": "api: session not found for phone"})
			return
		}

		customer, err := store.Customer(db, phone)
		if err != nil {
			fail(c, err)
			return
		}
		sessions, err := store.SessionsForPhone(db, phone)
		if err != nil {
			fail(c, err)
			return
		}
		messages, err := store.MessagesForPhone(db, phone)
		if err != nil {
			fail(c, err)
			return
		}

		res := segment.Segment(messages, sessions)
		c.JSON(http.StatusOK, conversation.Build(customer, *session, res.Buckets[ticket]))
	}
}

// inboundRequest is the gateway delivery payload.
type inboundRequest struct {
	Phone        string `json:"phone" binding:"required"`
	Body         string `json:"body"`
	MediaURL     string `json:"media_url"`
	LocationJSON string `json:"location_json"`
	Timestamp    int64  `json:"timestamp"`
	Department   string `json:"department"`
}

// handleInbound records a delivered customer message, opening a session when
// none is active, and returns the applicable auto-reply (if any) for the
// gateway to send.
func handleInbound(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req inboundRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: " + err.Error()})
			return
		}
		if req.Timestamp == 0 {
			req.Timestamp = time.Now().UnixMilli()
		}

		msg, session, err := store.RecordInbound(db, req.Phone, req.Body, req.Timestamp, store.InboundOpts{
			MediaURL:     req.MediaURL,
			LocationJSON: req.LocationJSON,
			Department:   req.Department,
		})
		if err != nil {
			fail(c, err)
			return
		}

		rules, err := store.Rules(db, session.Department)
		if err != nil {
			fail(c, err)
			return
		}
		rule := autoreply.Match(rules, session.Department, time.UnixMilli(req.Timestamp))

		resp := gin.H{"message": msg, "session": session}
		if rule != nil {
			resp["auto_reply"] = rule.Reply
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// sendRequest is an agent's outbound send.
type sendRequest struct {
	Phone     string `json:"phone" binding:"required"`
	Body      string `json:"body"`
	MediaURL  string `json:"media_url"`
	Timestamp int64  `json:"timestamp"`
}

// handleSend records an outbound message. Clients refetch the conversation
// afterwards; recomputing the view from scratch always converges.
func handleSend(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "api: " + err.Error()})
			return
		}
		if req.Timestamp == 0 {
			req.Timestamp = time.Now().UnixMilli()
		}

		msg, err := store.RecordOutbound(db, req.Phone, req.Body, req.Timestamp, req.MediaURL)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": msg})
	}
}

// handleCloseSession closes a session at the given (or current) timestamp.
func handleCloseSession(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			EndTS int64 `json:"end_ts"`
		}
		// Body is optional; default to now.
		c.ShouldBindJSON(&req)
		if req.EndTS == 0 {
			req.EndTS = time.Now().UnixMilli()
		}

		if err := store.CloseSession(db, c.Param("ticket"), req.EndTS); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"closed": c.Param("ticket"), "end_ts": req.EndTS})
	}
}
