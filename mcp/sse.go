package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/foomo/logseq-mcp/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSEEvent is one server-sent event on the notes stream.
type SSEEvent struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

func newEvent(name string, data interface{}) SSEEvent {
	return SSEEvent{
		ID:        fmt.Sprintf("%s_%d", name, time.Now().UnixNano()),
		Event:     name,
		Data:      data,
		Timestamp: time.Now(),
	}
}

type sseClient struct {
	id       string
	lastSeen time.Time
}

// SSEServerConfig holds tunables for the SSE endpoints.
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	ClientTimeout     time.Duration
}

func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		ClientTimeout:     60 * time.Second,
	}
}

// SSEServer streams notes query results to event-stream clients, next to
// the regular MCP transport. Each query request gets start, result (or
// error) and complete events on its own connection; the shared stream
// carries connection and keepalive events.
type SSEServer struct {
	logger  *zap.Logger
	service service.Service
	config  *SSEServerConfig

	mu      sync.RWMutex
	clients map[string]*sseClient
}

func NewSSEServer(logger *zap.Logger, serviceInstance service.Service, config *SSEServerConfig) *SSEServer {
	if config == nil {
		config = DefaultSSEServerConfig()
	}
	return &SSEServer{
		logger:  logger,
		service: serviceInstance,
		config:  config,
		clients: make(map[string]*sseClient),
	}
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, string(eventJSON))
	flusher.Flush()
	return nil
}

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// HandleSSE keeps a client connection open, sending keepalives until the
// client goes away.
func (s *SSEServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	sseHeaders(w)

	client := &sseClient{
		id:       uuid.NewString(),
		lastSeen: time.Now(),
	}

	s.mu.Lock()
	s.clients[client.id] = client
	s.mu.Unlock()
	s.logger.Info("SSE client connected", zap.String("clientID", client.id))

	defer func() {
		s.mu.Lock()
		delete(s.clients, client.id)
		s.mu.Unlock()
		s.logger.Info("SSE client disconnected", zap.String("clientID", client.id))
	}()

	if err := writeEvent(w, flusher, newEvent("connected", map[string]string{"clientID": client.id})); err != nil {
		return
	}

	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := writeEvent(w, flusher, newEvent("keepalive", map[string]interface{}{"timestamp": time.Now()})); err != nil {
				return
			}
			client.lastSeen = time.Now()
		}
	}
}

// HandleNotesSSE runs one personal notes query and streams its lifecycle.
func (s *SSEServer) HandleNotesSSE(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "Notes service not available", http.StatusServiceUnavailable)
		return
	}

	var request struct {
		Topics []string `json:"topics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}
	sseHeaders(w)

	_ = writeEvent(w, flusher, newEvent("notes_start", map[string]interface{}{"topics": request.Topics}))

	result, err := s.service.PersonalNotes(r.Context(), request.Topics)
	if err != nil {
		s.logger.Error("notes query failed", zap.Strings("topics", request.Topics), zap.Error(err))
		_ = writeEvent(w, flusher, newEvent("notes_error", map[string]string{"error": err.Error()}))
		return
	}

	_ = writeEvent(w, flusher, newEvent("notes_result", map[string]interface{}{
		"kind":     result.Kind,
		"markdown": string(result.Markdown),
	}))
	_ = writeEvent(w, flusher, newEvent("notes_complete", map[string]string{"status": "completed"}))
}

// GetConnectedClients returns information about connected clients.
func (s *SSEServer) GetConnectedClients() []map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]map[string]interface{}, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, map[string]interface{}{
			"id":        client.id,
			"lastSeen":  client.lastSeen,
			"connected": time.Since(client.lastSeen) < s.config.ClientTimeout,
		})
	}
	return clients
}

// GetStats returns server statistics.
func (s *SSEServer) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"connectedClients": len(s.clients),
		"serverVersion":    Version,
	}
}
