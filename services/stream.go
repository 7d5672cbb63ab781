package services

import (
	"bufio"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// StreamService exposes the hub over SSE: one stream per connected session,
// subscribed under the authenticated user's channel.
type StreamService struct {
	Hub *Hub
}

func NewStreamService(hub *Hub) *StreamService {
	return &StreamService{Hub: hub}
}

// StreamRewardsSSE streams reward notifications for the authenticated user.
// Multiple devices each get their own session; a slow or dead connection only
// loses its own payloads.
func (s *StreamService) StreamRewardsSSE(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User ID not found in context"})
	}

	// SSE headers
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no") // nginx

	session := s.Hub.Subscribe(userID)
	ctx := c.Context()

	// Use fasthttp stream writer (THIS replaces Flush)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer s.Hub.Unsubscribe(session)

		keepalive := time.NewTicker(15 * time.Second)
		defer keepalive.Stop()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case n, ok := <-session.C:
				if !ok {
					return
				}
				payload, err := EncodeNotification(n)
				if err != nil {
					log.Printf("SSE encode error for user %s: %v", userID, err)
					continue
				}
				fmt.Fprintf(w, "event: reward\ndata: %s\n\n", payload)
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case <-keepalive.C:
				w.WriteString(":\n\n")
				if err := w.Flush(); err != nil {
					return
				}

			case <-ctx.Done():
				// Client closed connection
				return
			}
		}
	})

	return nil
}
