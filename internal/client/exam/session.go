package exam

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrAlreadySubmitted means Submit was called on a session that already
	// submitted successfully. A programmer error: the call fails, the
	// session's answers are untouched.
	ErrAlreadySubmitted = errors.New("exam already submitted")

	// ErrSubmitInFlight means a second Submit arrived while one was still
	// running (a double-click, typically). The second call is ignored.
	ErrSubmitInFlight = errors.New("submission already in flight")

	// ErrInvalidOption means the chosen option does not exist on the
	// current question.
	ErrInvalidOption = errors.New("option index out of range")
)

// Unanswered is the sentinel submitted for a question the student left
// unanswered.
const Unanswered = -1

// Submission is the wire payload the scoring endpoint expects: one entry
// per question, in question order.
type Submission struct {
	TestID  int   `json:"test_id"`
	Answers []int `json:"answers"`
}

// Submitter hands a finished submission to the scoring collaborator and
// returns the percentage score.
type Submitter interface {
	SubmitTest(ctx context.Context, sub Submission) (float64, error)
}

// Session is a student's in-progress attempt at one test. It is created
// only after the identity gate authorizes the attempt, and is discarded on
// submission or navigation away.
//
// All mutation goes through Session methods; the answers mapping is sparse
// and keyed by question index.
type Session struct {
	mu        sync.Mutex
	test      *Test
	current   int
	answers   map[int]int
	submitted bool
	inFlight  bool
}

// NewSession starts an attempt at the given test. The test must pass
// Validate; in particular it needs at least one question.
func NewSession(t *Test) (*Session, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		test:    t,
		answers: make(map[int]int),
	}, nil
}

// Test returns the definition this session runs against.
func (s *Session) Test() *Test { return s.test }

// Current returns the cursor position and the question under it.
func (s *Session) Current() (int, *Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, &s.test.Questions[s.current]
}

// Answer reports the recorded option for question index i.
func (s *Session) Answer(i int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opt, ok := s.answers[i]
	return opt, ok
}

// AnsweredCount returns how many questions have a recorded answer.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

// Submitted reports whether the session has been successfully submitted.
func (s *Session) Submitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// SelectAnswer records opt for the current question, overwriting any prior
// answer. Valid only before submission.
func (s *Session) SelectAnswer(opt int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return ErrAlreadySubmitted
	}
	if opt < 0 || opt >= len(s.test.Questions[s.current].Options) {
		return ErrInvalidOption
	}
	s.answers[s.current] = opt
	return nil
}

// Advance moves the cursor one question forward; a no-op on the last
// question (no wraparound).
func (s *Session) Advance() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current < len(s.test.Questions)-1 {
		s.current++
	}
}

// Retreat moves the cursor one question back; a no-op on the first question.
func (s *Session) Retreat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current > 0 {
		s.current--
	}
}

// JumpTo moves the cursor to index i, clamped to the valid range.
func (s *Session) JumpTo(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if last := len(s.test.Questions) - 1; i > last {
		i = last
	}
	s.current = i
}

// ProgressFraction is (cursor+1)/questionCount, always in (0, 1]. It feeds
// the progress indicator.
func (s *Session) ProgressFraction() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.current+1) / float64(len(s.test.Questions))
}

// BuildSubmission produces the wire payload: one entry per question in
// question order, Unanswered (-1) where no answer was recorded. Output
// length always equals the question count regardless of the order answers
// were recorded in.
func (s *Session) BuildSubmission() Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildSubmissionLocked()
}

func (s *Session) buildSubmissionLocked() Submission {
	answers := make([]int, len(s.test.Questions))
	for i := range answers {
		if opt, ok := s.answers[i]; ok {
			answers[i] = opt
		} else {
			answers[i] = Unanswered
		}
	}
	return Submission{TestID: s.test.ID, Answers: answers}
}

// RequiresConfirmation reports whether any question is still unanswered.
// The caller must obtain explicit user confirmation before submitting when
// this is true.
func (s *Session) RequiresConfirmation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers) < len(s.test.Questions)
}

// Submit hands the built submission to the scoring collaborator. It
// succeeds at most once; a second call after success fails with
// ErrAlreadySubmitted, and a call overlapping an in-flight one is ignored
// with ErrSubmitInFlight. When the collaborator fails, submitted is rolled
// back so the student can retry without losing recorded answers.
func (s *Session) Submit(ctx context.Context, scorer Submitter) (float64, error) {
	s.mu.Lock()
	if s.submitted {
		s.mu.Unlock()
		return 0, ErrAlreadySubmitted
	}
	if s.inFlight {
		s.mu.Unlock()
		return 0, ErrSubmitInFlight
	}
	s.inFlight = true
	s.submitted = true
	sub := s.buildSubmissionLocked()
	s.mu.Unlock()

	score, err := scorer.SubmitTest(ctx, sub)

	s.mu.Lock()
	s.inFlight = false
	if err != nil {
		s.submitted = false
	}
	s.mu.Unlock()

	if err != nil {
		return 0, fmt.Errorf("submitting exam: %w", err)
	}
	return score, nil
}
