package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"hostel-complaint-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	streamPingInterval = 30 * time.Second
	streamWriteTimeout = 10 * time.Second
)

type NotificationController struct {
	store    services.NotificationStore
	hub      services.NotificationHub
	upgrader websocket.Upgrader
}

func NewNotificationController(store services.NotificationStore, hub services.NotificationHub, allowedOrigins []string) *NotificationController {
	return &NotificationController{
		store: store,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// List returns the caller's notifications newest-first. Supports ?limit, ?offset, ?unreadOnly.
func (ctl *NotificationController) List(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	opts := services.NotificationListOptions{
		Limit:      queryInt(c, "limit", 50, 1, 100),
		Offset:     queryInt(c, "offset", 0, 0, 1<<30),
		UnreadOnly: queryBool(c, "unreadOnly"),
	}
	items, total, err := ctl.store.ListForUser(c.Request.Context(), principal.ID, opts)
	if err != nil {
		respondError(c, err, "Failed to fetch notifications")
		return
	}
	unread, err := ctl.store.CountUnread(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        items,
		"total":       total,
		"unreadCount": unread,
	})
}

func (ctl *NotificationController) UnreadCount(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	n, err := ctl.store.CountUnread(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err, "Failed to count notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": n})
}

func (ctl *NotificationController) MarkRead(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	n, err := ctl.store.MarkRead(c.Request.Context(), principal.ID, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to update notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": n})
}

func (ctl *NotificationController) MarkAllRead(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	updated, err := ctl.store.MarkAllRead(c.Request.Context(), principal.ID)
	if err != nil {
		respondError(c, err, "Failed to update notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "All notifications marked as read", "updated": updated})
}

// Stream upgrades to a websocket and relays the caller's live notifications.
func (ctl *NotificationController) Stream(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	messages, unsubscribe, err := ctl.hub.Subscribe(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, services.ErrRealtimeDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Live notifications are not enabled"})
			return
		}
		respondError(c, err, "Failed to subscribe to notifications")
		return
	}
	defer unsubscribe()

	conn, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[notify] websocket upgrade for %s failed: %v", principal.ID, err)
		return
	}
	defer conn.Close()

	// Reader loop only watches for the client closing the socket.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()
	for {
		select {
		case payload, ok := <-messages:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
