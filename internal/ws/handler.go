package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// MessageSender is the slice of the message pipeline the socket needs for
// inbound NEW_MESSAGE events.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID, senderID, content string) error
}

type Handler struct {
	registry *Registry
	tracker  *Tracker
	router   *Router
	sender   MessageSender
	log      *zap.SugaredLogger
}

func NewHandler(registry *Registry, tracker *Tracker, router *Router, sender MessageSender, log *zap.SugaredLogger) *Handler {
	return &Handler{registry: registry, tracker: tracker, router: router, sender: sender, log: log}
}

// Upgrade gates the websocket route. Authentication has already run; a
// request without a user identity never reaches the socket.
func (h *Handler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if _, ok := c.Locals("userID").(string); !ok {
		return fiber.ErrUnauthorized
	}
	return c.Next()
}

// Serve runs one connection: register, pump, dispatch inbound events,
// clean up on disconnect.
func (h *Handler) Serve(conn *websocket.Conn) {
	userID, _ := conn.Locals("userID").(string)
	if userID == "" {
		_ = conn.Close()
		return
	}

	client := NewClient(userID, conn)
	h.registry.Register(userID, client)
	h.log.Infow("socket connected", "user", userID)

	go client.WritePump()
	defer h.disconnect(client)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue
		}
		h.dispatch(client, env)
	}
}

func (h *Handler) dispatch(client *Client, env inboundEnvelope) {
	switch env.Event {
	case EventNewMessage:
		var in newMessageIn
		if err := json.Unmarshal(env.Data, &in); err != nil {
			return
		}
		if err := h.sender.SendMessage(context.Background(), in.ChatID, client.UserID(), in.Message); err != nil {
			// Realtime path has no response channel.
			h.log.Warnw("send message failed", "chat", in.ChatID, "user", client.UserID(), "err", err)
		}

	case EventChatJoined:
		var in presenceIn
		if err := json.Unmarshal(env.Data, &in); err != nil {
			return
		}
		user := in.UserID
		if user == "" {
			user = client.UserID()
		}
		h.tracker.MarkOnline(user)
		h.router.Route(EventOnlineUsers, in.Members, h.tracker.Snapshot())

	case EventChatLeaved:
		var in presenceIn
		if err := json.Unmarshal(env.Data, &in); err != nil {
			return
		}
		user := in.UserID
		if user == "" {
			user = client.UserID()
		}
		h.tracker.MarkOffline(user)
		h.router.Route(EventOnlineUsers, in.Members, h.tracker.Snapshot())
	}
}

// disconnect runs once per connection. The user identity comes from the
// client captured at connect time, and the tracker is cleared even when no
// CHAT_LEAVED was received, covering client crashes and network drops.
func (h *Handler) disconnect(client *Client) {
	h.registry.Unregister(client.UserID(), client)
	h.tracker.MarkOffline(client.UserID())
	client.Close()
	h.router.Route(EventOnlineUsers, h.registry.Users(), h.tracker.Snapshot())
	h.log.Infow("socket disconnected", "user", client.UserID())
}
