// Package identity implements the capture-and-verify gate a student must
// pass before logging in by face or starting an exam.
//
// The gate is an explicit finite state machine per attempt:
//
//	Idle → Capturing → Captured → Verifying → {Authorized, Denied}
//
// rather than a tangle of boolean flags, so transitions and camera release
// are checkable. The camera stream is acquired when the gate opens and
// released unconditionally when it closes, on every exit path.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkarpov/examgate/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrVerificationDenied means the verification endpoint rejected the
	// captured face. Recoverable: retake and retry.
	ErrVerificationDenied = errors.New("identity verification denied")

	// ErrVerifyInFlight means Verify was called while a verification was
	// already running for this gate. The second call is ignored.
	ErrVerifyInFlight = errors.New("verification already in flight")

	// ErrGateClosed means the gate was closed while an operation was
	// running; its result has been discarded.
	ErrGateClosed = errors.New("identity gate closed")

	// ErrInvalidTransition means the operation is not valid in the gate's
	// current state.
	ErrInvalidTransition = errors.New("invalid gate transition")
)

// GateState is the gate's position in its state machine.
type GateState string

const (
	StateIdle       GateState = "idle"
	StateCapturing  GateState = "capturing"
	StateCaptured   GateState = "captured"
	StateVerifying  GateState = "verifying"
	StateAuthorized GateState = "authorized"
	StateDenied     GateState = "denied"
)

// Capture is a transient still image owned solely by the gate. It exists
// between Capture and either Retake (discarded) or Verify (consumed and
// discarded regardless of outcome).
type Capture struct {
	ID      uuid.UUID
	Frame   []byte
	TakenAt time.Time
}

// Verifier exchanges a captured frame with the verification endpoint.
// Implementations wrap either the student-login exchange or the exam-start
// face check; a denial is reported as ErrVerificationDenied (possibly
// wrapped).
type Verifier interface {
	VerifyFrame(ctx context.Context, frame []byte) error
}

// Gate drives one identity-verification attempt.
//
// Methods are not reentrant from Verifier callbacks. Closing the gate mid
// verification discards the in-flight result.
type Gate struct {
	camera   Camera
	verifier Verifier
	log      logging.Logger

	state    GateState
	stream   Stream
	capture  *Capture
	inFlight bool

	// gen increments on Close so a verification finishing late can tell its
	// gate instance has moved on.
	gen uint64
}

// NewGate builds an idle gate over the given camera and verifier.
func NewGate(camera Camera, verifier Verifier, log logging.Logger) *Gate {
	return &Gate{
		camera:   camera,
		verifier: verifier,
		log:      log.With("component", "identity-gate"),
		state:    StateIdle,
	}
}

// State returns the gate's current state.
func (g *Gate) State() GateState { return g.state }

// Open acquires the camera stream and moves the gate to Capturing. Valid
// only in Idle.
func (g *Gate) Open(ctx context.Context) error {
	if g.state != StateIdle {
		return fmt.Errorf("%w: open in %s", ErrInvalidTransition, g.state)
	}

	stream, err := g.camera.Open(ctx)
	if err != nil {
		return fmt.Errorf("acquiring camera: %w", err)
	}

	g.stream = stream
	g.state = StateCapturing
	return nil
}

// Capture grabs one still frame from the stream. Valid only in Capturing.
func (g *Gate) Capture(ctx context.Context) error {
	if g.state != StateCapturing {
		return fmt.Errorf("%w: capture in %s", ErrInvalidTransition, g.state)
	}

	frame, err := g.stream.Grab(ctx)
	if err != nil {
		return fmt.Errorf("capturing frame: %w", err)
	}

	g.capture = &Capture{ID: uuid.New(), Frame: frame, TakenAt: time.Now()}
	g.state = StateCaptured
	return nil
}

// Retake discards the capture and returns to Capturing. Valid only in
// Captured.
func (g *Gate) Retake() error {
	if g.state != StateCaptured {
		return fmt.Errorf("%w: retake in %s", ErrInvalidTransition, g.state)
	}
	g.capture = nil
	g.state = StateCapturing
	return nil
}

// Verify sends the capture to the verification endpoint. Valid only in
// Captured. The capture is consumed and discarded whatever the outcome.
//
// On success the gate is Authorized and the caller may construct the exam
// session or establish the login session. On denial the gate is Denied and
// ErrVerificationDenied is returned; call Resume to go back to Capturing
// for a fresh capture; the gate never retries by itself. A call while a
// verification is already in flight returns ErrVerifyInFlight. A result
// arriving after Close is discarded and reported as ErrGateClosed.
func (g *Gate) Verify(ctx context.Context) error {
	if g.state != StateCaptured {
		return fmt.Errorf("%w: verify in %s", ErrInvalidTransition, g.state)
	}
	if g.inFlight {
		return ErrVerifyInFlight
	}

	capture := g.capture
	g.capture = nil
	g.state = StateVerifying
	g.inFlight = true
	gen := g.gen

	err := g.verifier.VerifyFrame(ctx, capture.Frame)

	if g.gen != gen {
		// The gate was closed while the request was out; its state has
		// already been reset and must not be touched.
		return ErrGateClosed
	}
	g.inFlight = false

	if err != nil {
		g.state = StateDenied
		g.log.Info(ctx, "verification denied", "capture", capture.ID)
		if errors.Is(err, ErrVerificationDenied) {
			return err
		}
		// Both errors stay in the chain: callers distinguish a transient
		// verifier failure from a real mismatch with errors.Is.
		return fmt.Errorf("%w: %w", ErrVerificationDenied, err)
	}

	g.state = StateAuthorized
	g.log.Info(ctx, "verification authorized", "capture", capture.ID)
	return nil
}

// Resume returns a denied gate to Capturing so the user can retry with a
// fresh capture. Valid only in Denied.
func (g *Gate) Resume() error {
	if g.state != StateDenied {
		return fmt.Errorf("%w: resume in %s", ErrInvalidTransition, g.state)
	}
	g.state = StateCapturing
	return nil
}

// Close releases the camera and resets the gate to Idle. It runs on every
// exit path (cancel, success, failure) and is safe to call repeatedly.
// Any in-flight verification result is discarded.
func (g *Gate) Close() {
	g.gen++
	g.inFlight = false
	g.capture = nil
	g.state = StateIdle
	if g.stream != nil {
		_ = g.stream.Close()
		g.stream = nil
	}
}
