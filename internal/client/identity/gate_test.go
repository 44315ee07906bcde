package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/dkarpov/examgate/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeStream struct {
	frames [][]byte
	grabs  int
	closed int
}

func (f *fakeStream) Grab(context.Context) ([]byte, error) {
	if f.grabs >= len(f.frames) {
		return nil, errors.New("no more frames")
	}
	frame := f.frames[f.grabs]
	f.grabs++
	return frame, nil
}

func (f *fakeStream) Close() error {
	f.closed++
	return nil
}

type fakeCamera struct {
	stream  *fakeStream
	openErr error
	opens   int
}

func (f *fakeCamera) Open(context.Context) (Stream, error) {
	f.opens++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

type fakeVerifier struct {
	frames [][]byte
	errs   []error
	hook   func()
}

func (f *fakeVerifier) VerifyFrame(_ context.Context, frame []byte) error {
	f.frames = append(f.frames, append([]byte(nil), frame...))
	if f.hook != nil {
		f.hook()
	}
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func testLogger() logging.Logger {
	return logging.NewZerologLogger(io.Discard, "error", false)
}

func newTestGate(stream *fakeStream, verifier *fakeVerifier) (*Gate, *fakeCamera) {
	camera := &fakeCamera{stream: stream}
	return NewGate(camera, verifier, testLogger()), camera
}

// ---- tests ----

func TestGate_HappyPath(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{[]byte("frame-1")}}
	verifier := &fakeVerifier{}
	g, _ := newTestGate(stream, verifier)

	require.Equal(t, StateIdle, g.State())
	require.NoError(t, g.Open(ctx))
	require.Equal(t, StateCapturing, g.State())

	require.NoError(t, g.Capture(ctx))
	require.Equal(t, StateCaptured, g.State())

	require.NoError(t, g.Verify(ctx))
	require.Equal(t, StateAuthorized, g.State())
	require.Equal(t, [][]byte{[]byte("frame-1")}, verifier.frames)

	g.Close()
	require.Equal(t, StateIdle, g.State())
	require.Equal(t, 1, stream.closed)
}

func TestGate_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	g, _ := newTestGate(&fakeStream{frames: [][]byte{[]byte("f")}}, &fakeVerifier{})

	require.ErrorIs(t, g.Capture(ctx), ErrInvalidTransition)
	require.ErrorIs(t, g.Retake(), ErrInvalidTransition)
	require.ErrorIs(t, g.Verify(ctx), ErrInvalidTransition)
	require.ErrorIs(t, g.Resume(), ErrInvalidTransition)

	require.NoError(t, g.Open(ctx))
	require.ErrorIs(t, g.Open(ctx), ErrInvalidTransition)
	require.ErrorIs(t, g.Verify(ctx), ErrInvalidTransition) // nothing captured yet
}

func TestGate_RetakeDiscardsCapture(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{[]byte("first"), []byte("second")}}
	verifier := &fakeVerifier{}
	g, _ := newTestGate(stream, verifier)

	require.NoError(t, g.Open(ctx))
	require.NoError(t, g.Capture(ctx))
	require.NoError(t, g.Retake())
	require.Equal(t, StateCapturing, g.State())

	require.NoError(t, g.Capture(ctx))
	require.NoError(t, g.Verify(ctx))

	// Only the second frame ever reached the verifier.
	require.Equal(t, [][]byte{[]byte("second")}, verifier.frames)
}

func TestGate_DeniedTwiceThenAuthorized(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{[]byte("f1"), []byte("f2"), []byte("f3")}}
	verifier := &fakeVerifier{errs: []error{ErrVerificationDenied, ErrVerificationDenied}}
	g, _ := newTestGate(stream, verifier)

	require.NoError(t, g.Open(ctx))

	for attempt := 0; attempt < 2; attempt++ {
		require.NoError(t, g.Capture(ctx))
		err := g.Verify(ctx)
		require.ErrorIs(t, err, ErrVerificationDenied)
		require.Equal(t, StateDenied, g.State())
		require.NoError(t, g.Resume())
	}

	require.NoError(t, g.Capture(ctx))
	require.NoError(t, g.Verify(ctx))
	require.Equal(t, StateAuthorized, g.State())

	// Each attempt used a fresh capture; denied frames were discarded.
	require.Equal(t, [][]byte{[]byte("f1"), []byte("f2"), []byte("f3")}, verifier.frames)
}

func TestGate_CollaboratorErrorMapsToDenied(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{[]byte("f")}}
	verifier := &fakeVerifier{errs: []error{errors.New("503 upstream")}}
	g, _ := newTestGate(stream, verifier)

	require.NoError(t, g.Open(ctx))
	require.NoError(t, g.Capture(ctx))
	require.ErrorIs(t, g.Verify(ctx), ErrVerificationDenied)
	require.Equal(t, StateDenied, g.State())
}

func TestGate_VerifyKeepsCauseMatchable(t *testing.T) {
	ctx := context.Background()
	errUpstream := errors.New("backend unreachable")
	stream := &fakeStream{frames: [][]byte{[]byte("f")}}
	verifier := &fakeVerifier{errs: []error{fmt.Errorf("face match: %w", errUpstream)}}
	g, _ := newTestGate(stream, verifier)

	require.NoError(t, g.Open(ctx))
	require.NoError(t, g.Capture(ctx))

	err := g.Verify(ctx)
	require.ErrorIs(t, err, ErrVerificationDenied)
	require.ErrorIs(t, err, errUpstream, "verifier cause survives the denial wrap")
	require.Equal(t, StateDenied, g.State())
}

func TestGate_CloseDuringVerifyDiscardsResult(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{[]byte("f")}}
	verifier := &fakeVerifier{}
	g, _ := newTestGate(stream, verifier)

	// The user cancels the dialog while the request is out: in the
	// cooperative loop that surfaces as Close before the response lands.
	verifier.hook = func() { g.Close() }

	require.NoError(t, g.Open(ctx))
	require.NoError(t, g.Capture(ctx))
	require.ErrorIs(t, g.Verify(ctx), ErrGateClosed)

	// The late success did not resurrect the attempt.
	require.Equal(t, StateIdle, g.State())
	require.Equal(t, 1, stream.closed)
}

func TestGate_CloseIsIdempotentAndUnconditional(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frames: [][]byte{[]byte("f")}}
	g, _ := newTestGate(stream, &fakeVerifier{})

	require.NoError(t, g.Open(ctx))
	require.NoError(t, g.Capture(ctx))

	g.Close()
	g.Close()
	require.Equal(t, 1, stream.closed)
	require.Equal(t, StateIdle, g.State())
}

func TestGate_CameraOpenFailure(t *testing.T) {
	camera := &fakeCamera{openErr: errors.New("device busy")}
	g := NewGate(camera, &fakeVerifier{}, testLogger())

	require.Error(t, g.Open(context.Background()))
	require.Equal(t, StateIdle, g.State())
}

func TestStillCamera_GrabAndClose(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpegdata"), 0o600))

	cam := &StillCamera{Path: path}
	stream, err := cam.Open(context.Background())
	require.NoError(t, err)

	frame, err := stream.Grab(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte("jpegdata"), frame)

	require.NoError(t, stream.Close())
	_, err = stream.Grab(context.Background())
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestStillCamera_MissingSource(t *testing.T) {
	cam := &StillCamera{Path: filepath.Join(t.TempDir(), "absent.jpg")}
	_, err := cam.Open(context.Background())
	require.Error(t, err)
}
