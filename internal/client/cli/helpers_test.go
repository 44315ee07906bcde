package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dkarpov/examgate/internal/client/api"
	"github.com/dkarpov/examgate/internal/client/exam"
	"github.com/dkarpov/examgate/internal/client/identity"
	"github.com/dkarpov/examgate/internal/client/session"
	"github.com/dkarpov/examgate/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// ---- output and input seams ----

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

// stubText scripts successive getSimpleText answers.
func stubText(t *testing.T, answers ...string) {
	t.Helper()
	orig := getSimpleText
	i := 0
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) {
		require.Less(t, i, len(answers), "unexpected extra prompt")
		a := answers[i]
		i++
		return a, nil
	}
	t.Cleanup(func() { getSimpleText = orig })
}

func stubPassword(t *testing.T, pw []byte) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return pw, nil }
	t.Cleanup(func() { getPassword = orig })
}

func output(lines *[]string) string {
	return strings.Join(*lines, "\n")
}

// ---- token minting ----

func mintToken(t *testing.T, sub, role, name string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "exp": exp.Unix()}
	if role != "" {
		claims["role"] = role
	}
	if name != "" {
		claims["full_name"] = name
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

// ---- API fake ----

type fakeAPI struct {
	loginToken string
	loginErr   error
	loginUser  string
	loginPass  string

	identity    *api.StudentIdentity
	verifyErrs  []error
	verifyCalls int
	studentID   string
	frames      [][]byte

	matchErrs  []error
	matchCalls int

	tests    []exam.Test
	listErr  error
	test     *exam.Test
	fetchErr error
	fetchID  int

	submitted *exam.Submission
	score     float64
	submitErr error

	authToken string
	cleared   int
}

func (f *fakeAPI) Login(_ context.Context, user, pass string) (string, error) {
	f.loginUser, f.loginPass = user, pass
	return f.loginToken, f.loginErr
}

func (f *fakeAPI) VerifyStudent(_ context.Context, studentID string, frame []byte) (*api.StudentIdentity, error) {
	f.verifyCalls++
	f.studentID = studentID
	f.frames = append(f.frames, frame)
	if len(f.verifyErrs) > 0 {
		err := f.verifyErrs[0]
		f.verifyErrs = f.verifyErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.identity, nil
}

func (f *fakeAPI) VerifyMatch(_ context.Context, frame []byte) error {
	f.matchCalls++
	f.frames = append(f.frames, frame)
	if len(f.matchErrs) > 0 {
		err := f.matchErrs[0]
		f.matchErrs = f.matchErrs[1:]
		return err
	}
	return nil
}

func (f *fakeAPI) ListTests(context.Context) ([]exam.Test, error) {
	return f.tests, f.listErr
}

func (f *fakeAPI) FetchTest(_ context.Context, id int) (*exam.Test, error) {
	f.fetchID = id
	return f.test, f.fetchErr
}

func (f *fakeAPI) SubmitTest(_ context.Context, sub exam.Submission) (float64, error) {
	if f.submitErr != nil {
		return 0, f.submitErr
	}
	f.submitted = &sub
	return f.score, nil
}

func (f *fakeAPI) SetAuthToken(raw string) { f.authToken = raw }
func (f *fakeAPI) ClearAuthToken()         { f.authToken = ""; f.cleared++ }

// ---- token repository fake ----

type fakeRepo struct {
	raw     string
	subject string
}

func (f *fakeRepo) LoadToken(context.Context) (string, error) { return f.raw, nil }
func (f *fakeRepo) SaveSession(_ context.Context, raw, subject string) error {
	f.raw, f.subject = raw, subject
	return nil
}
func (f *fakeRepo) Clear(context.Context) error { f.raw, f.subject = "", ""; return nil }

// ---- camera fake ----

type fakeStream struct {
	frames [][]byte
	i      int
	closed bool
}

func (s *fakeStream) Grab(context.Context) ([]byte, error) {
	if s.i >= len(s.frames) {
		return nil, identity.ErrStreamClosed
	}
	f := s.frames[s.i]
	s.i++
	return f, nil
}

func (s *fakeStream) Close() error { s.closed = true; return nil }

type fakeCamera struct {
	stream  *fakeStream
	openErr error
}

func (c *fakeCamera) Open(context.Context) (identity.Stream, error) {
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.stream, nil
}

// ---- app wiring ----

func newTestApp(t *testing.T, client *fakeAPI) (*App, *fakeRepo) {
	t.Helper()
	log := logging.NewZerologLogger(io.Discard, "error", false)
	repo := &fakeRepo{}
	store := session.NewStore(repo, client, log)

	app := &App{
		api:    client,
		store:  store,
		camera: &fakeCamera{stream: &fakeStream{frames: [][]byte{[]byte("frame")}}},
		log:    log,
		reader: bufio.NewReader(strings.NewReader("")),
	}
	store.Subscribe(app.onSessionChange)
	store.Init(context.Background())
	return app, repo
}

func threeQuestionTest() *exam.Test {
	return &exam.Test{
		ID:    7,
		Title: "Algebra basics",
		Questions: []exam.Question{
			{ID: 1, Text: "2+2?", Options: []exam.Option{{Text: "3"}, {Text: "4"}, {Text: "5"}}, CorrectOption: 1},
			{ID: 2, Text: "3*3?", Options: []exam.Option{{Text: "9"}, {Text: "6"}}, CorrectOption: 0},
			{ID: 3, Text: "10/2?", Options: []exam.Option{{Text: "5"}, {Text: "2"}, {Text: "4"}}, CorrectOption: 0},
		},
	}
}

func newAttempt(t *testing.T) *exam.Session {
	t.Helper()
	s, err := exam.NewSession(threeQuestionTest())
	require.NoError(t, err)
	return s
}

func studentToken(t *testing.T) string {
	return mintToken(t, "student:42", "", "Alice Cooper", time.Now().Add(time.Hour))
}
