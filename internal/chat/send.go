package chat

import (
	"context"

	"AlgoChat/internal/session"
)

// Send is the handle of one accepted submit
type Send struct {
	user   session.Turn
	done   chan struct{}
	result Result
}

// UserTurn is the turn appended when the send was accepted
func (s *Send) UserTurn() session.Turn { return s.user }

// Done is closed once the answering turn has been appended
func (s *Send) Done() <-chan struct{} { return s.done }

// Wait blocks until the send resolves or ctx ends. A cancelled ctx only
// stops waiting; the send still resolves on its own.
func (s *Send) Wait(ctx context.Context) (Result, error) {
	select {
	case <-s.done:
		return s.result, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
