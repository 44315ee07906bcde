package api

import (
	"context"

	"github.com/dkarpov/examgate/internal/client/exam"
)

// StudentIdentity is what a successful student face login yields.
type StudentIdentity struct {
	AccessToken string
	FullName    string
}

// Client is the API contract the client core depends on.
type Client interface {
	// Login exchanges staff credentials for an access token.
	Login(ctx context.Context, username, password string) (string, error)

	// VerifyStudent exchanges a claimed student id and a face frame for an
	// access token (the student login variant of the identity gate).
	VerifyStudent(ctx context.Context, studentID string, frame []byte) (*StudentIdentity, error)

	// VerifyMatch checks a face frame against the logged-in student's
	// reference image (the exam-start variant). A nil error authorizes.
	VerifyMatch(ctx context.Context, frame []byte) error

	// ListTests fetches the tests available to the caller.
	ListTests(ctx context.Context) ([]exam.Test, error)

	// FetchTest fetches one test with its questions in ascending id order.
	FetchTest(ctx context.Context, id int) (*exam.Test, error)

	// SubmitTest hands a finished submission to the scoring endpoint and
	// returns the percentage score.
	SubmitTest(ctx context.Context, sub exam.Submission) (float64, error)

	// SetAuthToken attaches raw as the default bearer token on all
	// subsequent requests; ClearAuthToken removes it. Only the session
	// store calls these.
	SetAuthToken(raw string)
	ClearAuthToken()
}
