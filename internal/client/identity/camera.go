package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrStreamClosed is returned by Grab after the stream has been released.
var ErrStreamClosed = errors.New("camera stream closed")

// Camera provides access to a capture device. Open acquires the device;
// the returned Stream must be closed on every exit path.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open camera stream yielding still frames.
type Stream interface {
	// Grab returns one still frame as an encoded JPEG.
	Grab(ctx context.Context) ([]byte, error)
	// Close releases the device. Safe to call more than once.
	Close() error
}

// StillCamera grabs frames from a path a capture device keeps a current
// still image at (a v4l snapshot gateway, a proctoring agent's frame drop,
// or a plain file in tests). Each Grab rereads the path so the newest frame
// is used.
type StillCamera struct {
	Path string
}

func (c *StillCamera) Open(ctx context.Context) (Stream, error) {
	if _, err := os.Stat(c.Path); err != nil {
		return nil, fmt.Errorf("opening capture source %s: %w", c.Path, err)
	}
	return &stillStream{path: c.Path}, nil
}

type stillStream struct {
	mu     sync.Mutex
	path   string
	closed bool
}

func (s *stillStream) Grab(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrStreamClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("grabbing frame: %w", err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("grabbing frame: empty frame from %s", s.path)
	}
	return frame, nil
}

func (s *stillStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
