// Package sse pushes live analysis and report updates to connected browsers.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vitelis_backend/platform/logger"
)

// EventType names the SSE event sent to the browser.
type EventType string

const (
	EventAnalysisFinished  EventType = "analysis_finished"
	EventAnalysisFailed    EventType = "analysis_failed"
	EventCreditsRefunded   EventType = "credits_refunded"
	EventStepStatusChanged EventType = "step_status_changed"
)

const clientBuffer = 32

// Event is the payload written to the stream.
type Event struct {
	Type    EventType   `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type client struct {
	userID uuid.UUID
	admin  bool
	events chan Event
}

// Service tracks open streams per user.
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client
	done    chan struct{}
	closed  bool
	log     *logger.Logger
}

func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		done:    make(chan struct{}),
		log:     log,
	}
}

func (s *Service) addClient(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c.userID] = append(s.clients[c.userID], c)
	return true
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.userID]) == 0 {
		delete(s.clients, c.userID)
	}
}

// Publish sends an event to every stream of one user. Slow streams drop
// events rather than block the publisher.
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.RLock()
	clients := append([]*client(nil), s.clients[userID]...)
	s.mu.RUnlock()

	for _, c := range clients {
		s.offer(c, event)
	}
}

// PublishToAdmins sends an event to every stream opened by an admin.
func (s *Service) PublishToAdmins(event Event) {
	s.mu.RLock()
	var admins []*client
	for _, clients := range s.clients {
		for _, c := range clients {
			if c.admin {
				admins = append(admins, c)
			}
		}
	}
	s.mu.RUnlock()

	for _, c := range admins {
		s.offer(c, event)
	}
}

func (s *Service) offer(c *client, event Event) {
	select {
	case c.events <- event:
	default:
		s.log.Warn("sse buffer full, event dropped", "userId", c.userID, "type", event.Type)
	}
}

// ClientCount reports the open streams of a user.
func (s *Service) ClientCount(userID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID])
}

// Handler serves the event stream for the identity resolved by identify.
func (s *Service) Handler(identify func(*gin.Context) (uuid.UUID, bool, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, admin, ok := identify(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		cl := &client{userID: userID, admin: admin, events: make(chan Event, clientBuffer)}
		if !s.addClient(cl) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shutting down"})
			return
		}
		defer s.removeClient(cl)

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		c.SSEvent("connected", gin.H{"userId": userID})
		c.Writer.Flush()
		s.log.Debug("sse client connected", "userId", userID)

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				s.log.Debug("sse client disconnected", "userId", userID)
				return
			case <-s.done:
				return
			case event := <-cl.events:
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close ends every open stream.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}
