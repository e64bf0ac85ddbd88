package gateway

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/eleven-am/peergrade/internal/session"
)

// Hub is the single event surface for session mutations. Every inbound
// event and every background update (tunnel endpoints) funnels through the
// hub's mutex, so operations never interleave and clients observe state
// snapshots in mutation order.
type Hub struct {
	store    *session.Store
	registry *session.Registry
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[string]Client
}

func NewHub(store *session.Store, registry *session.Registry, logger *slog.Logger) *Hub {
	return &Hub{
		store:    store,
		registry: registry,
		logger:   logger.With("component", "hub"),
		clients:  make(map[string]Client),
	}
}

// Register adds a freshly connected client. It receives broadcasts right
// away but is not counted until it identifies.
func (h *Hub) Register(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID()] = c
}

// Unregister drops the client and, if it still held its device binding,
// republishes the reduced client count.
func (h *Hub) Unregister(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, c.ID())
	if deviceID, released := h.registry.Release(c.ID()); released {
		h.logger.Info("client disconnected", "device_id", deviceID, "connection_id", c.ID())
		h.store.SetConnectedClients(h.registry.Count())
		h.broadcastState()
	}
}

func (h *Hub) Dispatch(c Client, msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch msg.Event {
	case EventIdentify:
		h.handleIdentify(c, msg.Data)
	case EventCreateSession:
		h.handleCreateSession(c, msg.Data)
	case EventSelectEndpoint:
		h.handleSelectEndpoint(c, msg.Data)
	case EventUpdateStatus:
		h.handleUpdateStatus(c, msg.Data)
	case EventSubmitVote:
		h.handleSubmitVote(c, msg.Data)
	default:
		h.logger.Warn("unknown event", "event", msg.Event, "connection_id", c.ID())
	}
}

func (h *Hub) handleIdentify(c Client, data json.RawMessage) {
	var deviceID string
	if err := json.Unmarshal(data, &deviceID); err != nil {
		h.logger.Warn("malformed identify payload", "error", err, "connection_id", c.ID())
		return
	}
	if deviceID == "" {
		deviceID = "unknown-" + c.ID()
	}

	h.logger.Info("client identified", "device_id", deviceID, "address", c.RemoteAddr())

	if evicted, ok := h.registry.Identify(deviceID, c.ID()); ok {
		if old, live := h.clients[evicted]; live {
			h.sendEvent(old, EventForceDisconnect, "New connection from this device detected.")
			_ = old.Close()
			delete(h.clients, evicted)
		}
	}

	h.store.SetConnectedClients(h.registry.Count())
	h.sendState(c)
	h.broadcastState()
}

func (h *Hub) handleCreateSession(c Client, data json.RawMessage) {
	var req CreateSessionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		h.logger.Warn("malformed create-session payload", "error", err, "connection_id", c.ID())
		return
	}

	h.store.Create(req.Name, req.Categories)
	h.logger.Info("session created", "name", req.Name, "categories", len(req.Categories))
	h.broadcastState()
}

func (h *Hub) handleSelectEndpoint(c Client, data json.RawMessage) {
	var index int
	if err := json.Unmarshal(data, &index); err != nil {
		h.logger.Warn("malformed select-endpoint payload", "error", err, "connection_id", c.ID())
		return
	}

	// Out-of-range selection is ignored rather than failing the host.
	if h.store.SelectEndpoint(index) {
		h.broadcastState()
	}
}

func (h *Hub) handleUpdateStatus(c Client, data json.RawMessage) {
	var update session.StatusUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		h.logger.Warn("malformed status payload", "error", err, "connection_id", c.ID())
		return
	}

	h.store.UpdateStatus(update)
	h.broadcastState()
}

func (h *Hub) handleSubmitVote(c Client, data json.RawMessage) {
	var submission VoteSubmission
	if err := json.Unmarshal(data, &submission); err != nil {
		h.logger.Warn("malformed vote payload", "error", err, "connection_id", c.ID())
		return
	}

	deviceID, _ := h.registry.DeviceFor(c.ID())
	err := h.store.SubmitVote(deviceID, c.ID(), c.RemoteAddr(), submission.Items)
	switch {
	case errors.Is(err, session.ErrVotingClosed):
		h.logger.Debug("vote while voting closed", "connection_id", c.ID())
	case errors.Is(err, session.ErrNotIdentified):
		h.sendEvent(c, EventErrorMessage, "Identification error. Please refresh.")
	case errors.Is(err, session.ErrDuplicateVote):
		h.sendEvent(c, EventErrorMessage, "You have already voted for this subject!")
	case err == nil:
		h.broadcastState()
	}
}

// RecordEndpoints is the tunnel provider's mutation entry point.
func (h *Hub) RecordEndpoints(endpoints []session.Endpoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.store.RecordEndpoints(endpoints)
	h.broadcastState()
}

// ConnectionCount reports live sockets, identified or not.
func (h *Hub) ConnectionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcastState fans the full snapshot out to every connected client.
// Callers hold h.mu, which is what orders snapshots across clients.
func (h *Hub) broadcastState() {
	msg, err := NewMessage(EventStateUpdate, h.store.Snapshot())
	if err != nil {
		h.logger.Error("failed to marshal state", "error", err)
		return
	}
	for _, c := range h.clients {
		if err := c.Send(msg); err != nil {
			h.logger.Warn("broadcast failed", "connection_id", c.ID(), "error", err)
		}
	}
}

// sendState hydrates a single newly identified connection.
func (h *Hub) sendState(c Client) {
	msg, err := NewMessage(EventStateUpdate, h.store.Snapshot())
	if err != nil {
		h.logger.Error("failed to marshal state", "error", err)
		return
	}
	if err := c.Send(msg); err != nil {
		h.logger.Warn("initial state send failed", "connection_id", c.ID(), "error", err)
	}
}

func (h *Hub) sendEvent(c Client, event, text string) {
	msg, err := NewMessage(event, text)
	if err != nil {
		h.logger.Error("failed to marshal event", "event", event, "error", err)
		return
	}
	if err := c.Send(msg); err != nil {
		h.logger.Warn("send failed", "event", event, "connection_id", c.ID(), "error", err)
	}
}
