package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pingboard/internal/models"
	"pingboard/internal/widget"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// handleWidgetWS upgrades /ws/widget requests and streams every fresh
// payload for the requested widget to the client
func (s *Server) handleWidgetWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("widget")
	c := s.manager.Controller(id)
	if c == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown widget %q", id))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.serveWidgetConn(conn, id, c)
}

func (s *Server) serveWidgetConn(conn *websocket.Conn, widgetID string, c *widget.Controller) {
	defer conn.Close()

	updates, cancel := s.hub.Subscribe(widgetID)
	defer cancel()

	// Send the last known payload right away so a fresh client is not
	// blank until the next poll completes.
	if _, payload, _ := c.Snapshot(); payload != nil {
		if err := writePayload(conn, payload); err != nil {
			return
		}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update := <-updates:
			if err := writePayload(conn, update.Payload); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func writePayload(conn *websocket.Conn, payload *models.WidgetPayload) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(payload)
}
