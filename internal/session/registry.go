package session

import "sync"

// Registry maps a stable device id to its single live connection. Identity
// lives in this side table rather than on the connection itself, which keeps
// the one-connection-per-device invariant independently testable.
type Registry struct {
	mu       sync.Mutex
	byDevice map[string]string
	byConn   map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byDevice: make(map[string]string),
		byConn:   make(map[string]string),
	}
}

// Identify binds deviceID to connID. If the device was already bound to a
// different connection, that connection id is returned so the caller can
// terminate it; the new binding always wins.
func (r *Registry) Identify(deviceID, connID string) (evicted string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, bound := r.byDevice[deviceID]; bound && old != connID {
		delete(r.byConn, old)
		evicted = old
		ok = true
	}

	// A connection re-identifying as a different device releases its old
	// binding first.
	if prev, bound := r.byConn[connID]; bound && prev != deviceID {
		if r.byDevice[prev] == connID {
			delete(r.byDevice, prev)
		}
	}

	r.byDevice[deviceID] = connID
	r.byConn[connID] = deviceID
	return evicted, ok
}

// Release removes the binding only if connID is still the device's live
// connection. A connection that was superseded releases nothing.
func (r *Registry) Release(connID string) (deviceID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deviceID, ok = r.byConn[connID]
	if !ok {
		return "", false
	}
	if r.byDevice[deviceID] != connID {
		delete(r.byConn, connID)
		return "", false
	}

	delete(r.byDevice, deviceID)
	delete(r.byConn, connID)
	return deviceID, true
}

func (r *Registry) DeviceFor(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deviceID, ok := r.byConn[connID]
	return deviceID, ok
}

// Count reports the number of live bindings, which is the connected-client
// count published to the session.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byDevice)
}
