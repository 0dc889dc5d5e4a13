package application

import (
	"sync"

	"github.com/ark-network/ln-gateway/internal/core/ports"
)

// LightningHandle guards the lightning client shared by the actors: regular
// operations run concurrently under the read lock, while disconnecting or
// reconnecting the node requires exclusive access.
type LightningHandle struct {
	lock   sync.RWMutex
	client ports.LightningClient
	// generation counts the renewals of the connection, guarded by lock.
	generation uint64
}

func NewLightningHandle(client ports.LightningClient) *LightningHandle {
	return &LightningHandle{client: client}
}

func (h *LightningHandle) Read(fn func(ln ports.LightningClient) error) error {
	h.lock.RLock()
	defer h.lock.RUnlock()

	return fn(h.client)
}

func (h *LightningHandle) Write(fn func(ln ports.LightningClient) error) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	return fn(h.client)
}

// Renew runs fn, which re-establishes the connection, with exclusive access.
// On success, failures reported on streams of the previous connection are
// ignored from then on.
func (h *LightningHandle) Renew(fn func(ln ports.LightningClient) error) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if err := fn(h.client); err != nil {
		return err
	}
	h.generation++
	return nil
}

// writeAt runs fn with exclusive access only if the connection is still the
// given generation, otherwise it reports that it has been renewed.
func (h *LightningHandle) writeAt(
	generation uint64, fn func(ln ports.LightningClient) error,
) (bool, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.generation != generation {
		return true, nil
	}
	return false, fn(h.client)
}
