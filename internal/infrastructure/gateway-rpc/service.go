package gatewayrpc

import (
	"context"
	"fmt"
	"sync"

	"github.com/ark-network/ln-gateway/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

const defaultBufferSize = 8

// Service delivers the requests of the actors to the process supervising
// the lightning connection. Send never blocks: while the supervisor is busy
// and the buffer is full, further requests are redundant and get dropped.
type Service struct {
	lock     sync.RWMutex
	requests chan domain.LightningReconnectPayload
	closed   bool
}

func NewService(bufferSize int) *Service {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Service{
		requests: make(chan domain.LightningReconnectPayload, bufferSize),
	}
}

func (s *Service) Send(
	ctx context.Context, payload domain.LightningReconnectPayload,
) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.closed {
		return fmt.Errorf("gateway rpc service is closed")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case s.requests <- payload:
	default:
		log.Debug("reconnect request already pending, dropping")
	}
	return nil
}

// Requests returns the feed of reconnect requests, closed by Close.
func (s *Service) Requests() <-chan domain.LightningReconnectPayload {
	return s.requests
}

func (s *Service) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.requests)
}
