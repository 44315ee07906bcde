package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dkarpov/examgate/internal/client/api"
	"github.com/dkarpov/examgate/internal/client/identity"
)

// studentVerifier adapts the student verification endpoint to the identity
// gate. On success it keeps the returned identity so the caller can open a
// session from it.
type studentVerifier struct {
	api       api.Client
	studentID string
	identity  *api.StudentIdentity
}

func (v *studentVerifier) VerifyFrame(ctx context.Context, frame []byte) error {
	id, err := v.api.VerifyStudent(ctx, v.studentID, frame)
	if err != nil {
		return err
	}
	v.identity = id
	return nil
}

// StudentLogin runs the face login flow: the user claims a student id, the
// camera captures a frame, and the server decides whether the face matches
// the enrolled reference image. The user may retake the frame before
// sending it, and may retry with a fresh frame after a denial.
func (a *App) StudentLogin(ctx context.Context) error {
	studentID, err := getSimpleText(a.reader, "Enter student id", os.Stdout)
	if err != nil {
		return err
	}

	v := &studentVerifier{api: a.api, studentID: studentID}
	gate := identity.NewGate(a.camera, v, a.log)
	defer gate.Close()

	if err := gate.Open(ctx); err != nil {
		a.log.Error(ctx, "error opening capture stream", "error", err)
		printlnFn("Camera unavailable:", err.Error())
		return err
	}

	if err := a.runGate(ctx, gate); err != nil || gate.State() != identity.StateAuthorized {
		return err
	}

	if err := a.store.SetSession(ctx, v.identity.AccessToken); err != nil {
		a.log.Error(ctx, "error establishing session", "error", err)
		printlnFn("Login failed:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s!", v.identity.FullName))
	a.navigate()
	return nil
}

// runGate drives an opened identity gate interactively until the user is
// authorized, gives up, or an unrecoverable error occurs. A nil error with
// a non-Authorized gate state means the user cancelled.
func (a *App) runGate(ctx context.Context, gate *identity.Gate) error {
	for {
		if err := gate.Capture(ctx); err != nil {
			a.log.Error(ctx, "error capturing frame", "error", err)
			printlnFn("Capture failed:", err.Error())
			return err
		}

		choice, err := getSimpleText(a.reader, "Frame captured. (v)erify, (r)etake or (c)ancel", os.Stdout)
		if err != nil {
			return err
		}
		switch choice {
		case "r", "retake":
			if err := gate.Retake(); err != nil {
				return err
			}
			continue
		case "c", "cancel":
			printlnFn("Cancelled")
			return nil
		}

		err = gate.Verify(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, identity.ErrVerificationDenied) {
			a.log.Error(ctx, "verification failed", "error", err)
			printlnFn("Verification failed:", err.Error())
			return err
		}

		if errors.Is(err, api.ErrUnavailable) {
			printlnFn("Server unreachable, the frame was not checked.")
		} else {
			printlnFn("Face not recognized.")
		}
		choice, err = getSimpleText(a.reader, "(t)ry again or (c)ancel", os.Stdout)
		if err != nil {
			return err
		}
		if choice != "t" && choice != "try" {
			printlnFn("Cancelled")
			return nil
		}
		if err := gate.Resume(); err != nil {
			return err
		}
	}
}
