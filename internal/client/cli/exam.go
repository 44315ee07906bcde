package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dkarpov/examgate/internal/client/api"
	"github.com/dkarpov/examgate/internal/client/exam"
	"github.com/dkarpov/examgate/internal/client/identity"
	"github.com/dkarpov/examgate/internal/client/session"
)

// matchVerifier adapts the face match endpoint to the identity gate. It
// checks the frame against the logged-in student's reference image.
type matchVerifier struct {
	api api.Client
}

func (v *matchVerifier) VerifyFrame(ctx context.Context, frame []byte) error {
	return v.api.VerifyMatch(ctx, frame)
}

// StartExam fetches a test and, after the face check passes, opens a new
// attempt. Only students may start exams; everyone else is shown where the
// guard would send them instead.
func (a *App) StartExam(ctx context.Context, id int) error {
	d := session.Decide(a.store.State(), a.store.Role(), []session.Role{session.RoleStudent})
	switch d.Kind {
	case session.DecisionAllow:
	case session.DecisionRedirect:
		printlnFn(fmt.Sprintf("→ %s", d.Target))
		return nil
	default:
		printlnFn("Session not ready yet, try again")
		return nil
	}

	if a.inExam() {
		printlnFn("An exam is already in progress; submit or cancel it first")
		return nil
	}

	t, err := a.api.FetchTest(ctx, id)
	if err != nil {
		a.log.Error(ctx, "error fetching test", "id", id, "error", err)
		printlnFn("Could not load test:", err.Error())
		return err
	}

	gate := identity.NewGate(a.camera, &matchVerifier{api: a.api}, a.log)
	defer gate.Close()

	if err := gate.Open(ctx); err != nil {
		a.log.Error(ctx, "error opening capture stream", "error", err)
		printlnFn("Camera unavailable:", err.Error())
		return err
	}

	printlnFn("Identity check before the exam begins.")
	if err := a.runGate(ctx, gate); err != nil || gate.State() != identity.StateAuthorized {
		return err
	}

	attempt, err := exam.NewSession(t)
	if err != nil {
		a.log.Error(ctx, "rejecting test definition", "id", id, "error", err)
		printlnFn("Test definition is broken:", err.Error())
		return err
	}

	a.attempt = attempt
	printlnFn(fmt.Sprintf("Starting %q, %d questions. Good luck!", t.Title, len(t.Questions)))
	a.showQuestion()
	return nil
}

// Answer records option n (as displayed, 1-based) for the current question.
func (a *App) Answer(n int) error {
	if !a.inExam() {
		printlnFn("No exam in progress")
		return nil
	}
	if err := a.attempt.SelectAnswer(n - 1); err != nil {
		if errors.Is(err, exam.ErrInvalidOption) {
			_, q := a.attempt.Current()
			printlnFn(fmt.Sprintf("Pick an option between 1 and %d", len(q.Options)))
			return nil
		}
		printlnFn("Cannot answer:", err.Error())
		return err
	}
	a.showQuestion()
	return nil
}

func (a *App) Next() error {
	if !a.inExam() {
		printlnFn("No exam in progress")
		return nil
	}
	a.attempt.Advance()
	a.showQuestion()
	return nil
}

func (a *App) Prev() error {
	if !a.inExam() {
		printlnFn("No exam in progress")
		return nil
	}
	a.attempt.Retreat()
	a.showQuestion()
	return nil
}

// Goto jumps to question n as displayed (1-based). Out-of-range targets
// clamp to the nearest end.
func (a *App) Goto(n int) error {
	if !a.inExam() {
		printlnFn("No exam in progress")
		return nil
	}
	a.attempt.JumpTo(n - 1)
	a.showQuestion()
	return nil
}

// Board prints one marker per question: answered or not, with the current
// question highlighted.
func (a *App) Board() error {
	if !a.inExam() {
		printlnFn("No exam in progress")
		return nil
	}
	cur, _ := a.attempt.Current()
	var b strings.Builder
	for i := range a.attempt.Test().Questions {
		mark := "[ ]"
		if _, ok := a.attempt.Answer(i); ok {
			mark = "[x]"
		}
		if i == cur {
			mark = ">" + mark
		}
		fmt.Fprintf(&b, "%s%d ", mark, i+1)
	}
	printlnFn(strings.TrimSpace(b.String()))
	printlnFn(fmt.Sprintf("Answered %d of %d", a.attempt.AnsweredCount(), len(a.attempt.Test().Questions)))
	return nil
}

// Submit sends the attempt for scoring. If questions are still unanswered
// the user must confirm first; unanswered questions score as wrong. The
// attempt survives a failed submission so the user can retry.
func (a *App) Submit(ctx context.Context) error {
	if !a.inExam() {
		printlnFn("No exam in progress")
		return nil
	}

	if a.attempt.RequiresConfirmation() {
		left := len(a.attempt.Test().Questions) - a.attempt.AnsweredCount()
		prompt := fmt.Sprintf("%d question(s) unanswered, submit anyway? (y/N)", left)
		choice, err := getSimpleText(a.reader, prompt, os.Stdout)
		if err != nil {
			return err
		}
		if choice != "y" && choice != "yes" {
			printlnFn("Submission cancelled")
			return nil
		}
	}

	score, err := a.attempt.Submit(ctx, a.api)
	if err != nil {
		if errors.Is(err, exam.ErrAlreadySubmitted) || errors.Is(err, exam.ErrSubmitInFlight) {
			printlnFn("Already submitted")
			return nil
		}
		a.log.Error(ctx, "error submitting answers", "error", err)
		printlnFn("Submission failed, your answers are kept:", err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Your score: %.0f%%", score))
	a.attempt = nil
	a.navigate()
	return nil
}

// Cancel abandons the attempt without submitting. Nothing is sent to the
// server; the answers are lost.
func (a *App) Cancel(ctx context.Context) error {
	if !a.inExam() {
		printlnFn("No exam in progress")
		return nil
	}
	choice, err := getSimpleText(a.reader, "Abandon this attempt? Answers will be lost (y/N)", os.Stdout)
	if err != nil {
		return err
	}
	if choice != "y" && choice != "yes" {
		return nil
	}
	a.attempt = nil
	printlnFn("Attempt discarded")
	a.navigate()
	return nil
}

// showQuestion renders the current question with 1-based option numbers and
// a marker on the selected one.
func (a *App) showQuestion() {
	i, q := a.attempt.Current()
	total := len(a.attempt.Test().Questions)
	progress := a.attempt.ProgressFraction() * 100
	printlnFn(fmt.Sprintf("Question %d/%d (%.0f%%): %s", i+1, total, progress, q.Text))
	if q.Image != "" {
		printlnFn("  image: " + q.Image)
	}
	selected, ok := a.attempt.Answer(i)
	for j, opt := range q.Options {
		mark := " "
		if ok && j == selected {
			mark = "*"
		}
		line := fmt.Sprintf(" %s %d. %s", mark, j+1, opt.Text)
		if opt.Image != "" {
			line += " (image: " + opt.Image + ")"
		}
		printlnFn(line)
	}
}
