// Package listener wraps net.Listener so that transient accept errors do not
// crash the server.
package listener

import (
	"errors"
	"log"
	"net"
	"time"
)

// retryDelay spaces out accept retries so a persistent error does not spin
// the accept loop hot.
const retryDelay = 50 * time.Millisecond

// ResilientListener wraps net.Listener to be resilient, recoverable errors are handled gracefully
type ResilientListener struct {
	net.Listener
}

func NewResilientListener(listenerToWrap net.Listener) *ResilientListener {
	return &ResilientListener{Listener: listenerToWrap}
}

// Accept will gracefully handle recoverable errors and continue without crashing the server
func (l *ResilientListener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			// If the listener was closed, this is a fatal error. Propagate it.
			if errors.Is(err, net.ErrClosed) {
				return nil, err
			}

			// For any other error, log it, back off, and continue to the
			// next connection attempt.
			log.Printf("Recoverable listener error, connection rejected: %v", err)
			time.Sleep(retryDelay)
			continue
		}
		return conn, nil
	}
}
