package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dkarpov/examgate/internal/client/exam"
	"github.com/go-resty/resty/v2"
)

// captureFileName is the form filename for uploaded face frames. The
// backend only cares about the part name, but a stable filename keeps
// server logs readable.
const captureFileName = "face.jpg"

// RESTClient implements Client against the backend's REST API.
type RESTClient struct {
	http *resty.Client
}

// NewRESTClient builds a client for the API rooted at baseURL
// (e.g. "http://127.0.0.1:8000/api/v1").
func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &RESTClient{http: c}
}

// SetAuthToken attaches raw as the default Authorization bearer token.
func (c *RESTClient) SetAuthToken(raw string) {
	c.http.SetAuthToken(raw)
}

// ClearAuthToken removes the default bearer token.
func (c *RESTClient) ClearAuthToken() {
	c.http.SetAuthToken("")
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type verifyStudentResponse struct {
	AccessToken string `json:"access_token"`
	Student     struct {
		FullName string `json:"full_name"`
	} `json:"student"`
}

type submitResponse struct {
	Score float64 `json:"score"`
}

func (c *RESTClient) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		SetError(&errorResponse{}).
		Post("/auth/login")
	if err := c.check(resp, err); err != nil {
		return "", fmt.Errorf("staff login: %w", err)
	}
	return out.AccessToken, nil
}

func (c *RESTClient) VerifyStudent(ctx context.Context, studentID string, frame []byte) (*StudentIdentity, error) {
	var out verifyStudentResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"student_id": studentID}).
		SetFileReader("file", captureFileName, bytes.NewReader(frame)).
		SetResult(&out).
		SetError(&errorResponse{}).
		Post("/students/verify")
	if err := c.check(resp, err); err != nil {
		return nil, fmt.Errorf("student face login: %w", err)
	}
	return &StudentIdentity{
		AccessToken: out.AccessToken,
		FullName:    out.Student.FullName,
	}, nil
}

func (c *RESTClient) VerifyMatch(ctx context.Context, frame []byte) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", captureFileName, bytes.NewReader(frame)).
		SetError(&errorResponse{}).
		Post("/students/verify-match")
	if err := c.check(resp, err); err != nil {
		return fmt.Errorf("face match: %w", err)
	}
	return nil
}

func (c *RESTClient) ListTests(ctx context.Context) ([]exam.Test, error) {
	var out []exam.Test
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorResponse{}).
		Get("/tests/")
	if err := c.check(resp, err); err != nil {
		return nil, fmt.Errorf("listing tests: %w", err)
	}
	return out, nil
}

func (c *RESTClient) FetchTest(ctx context.Context, id int) (*exam.Test, error) {
	var out exam.Test
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&errorResponse{}).
		Get(fmt.Sprintf("/tests/%d", id))
	if err := c.check(resp, err); err != nil {
		return nil, fmt.Errorf("fetching test %d: %w", id, err)
	}
	out.SortQuestions()
	return &out, nil
}

func (c *RESTClient) SubmitTest(ctx context.Context, sub exam.Submission) (float64, error) {
	var out submitResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sub).
		SetResult(&out).
		SetError(&errorResponse{}).
		Post("/tests/submit")
	if err := c.check(resp, err); err != nil {
		return 0, fmt.Errorf("submitting answers: %w", err)
	}
	return out.Score, nil
}

// check maps a finished request to the package's error taxonomy.
func (c *RESTClient) check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsError() {
		return nil
	}

	detail := ""
	if e, ok := resp.Error().(*errorResponse); ok {
		detail = e.Detail
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
		}
		return ErrUnauthorized
	case resp.StatusCode() == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode() >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status())
	default:
		if detail != "" {
			return fmt.Errorf("%s: %s", resp.Status(), detail)
		}
		return fmt.Errorf("unexpected response: %s", resp.Status())
	}
}
