package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	inExam() bool
	Login(ctx context.Context) error
	StudentLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	ListTests(ctx context.Context) error
	StartExam(ctx context.Context, id int) error
	Answer(opt int) error
	Next() error
	Prev() error
	Goto(n int) error
	Board() error
	Submit(ctx context.Context) error
	Cancel(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the exam client.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn). Which commands are
// accepted depends on where the user is:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — staff credential login
//	  - studentlogin   — student face login
//	  - exit | quit    — leave the program
//
//	Logged in, no exam in progress:
//	  - tests          — list available tests
//	  - start <id>     — begin a test (face check first)
//	  - logout         — log out
//
//	Exam in progress:
//	  - answer <n>     — pick option n for the current question
//	  - next | prev    — move between questions
//	  - goto <n>       — jump to question n
//	  - board          — show the answer board
//	  - submit         — submit answers for scoring
//	  - cancel         — abandon the attempt
//
// Both login variants are refused while an exam attempt is live; replacing
// the session underneath an attempt would orphan it.
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("eg %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			switch {
			case a.inExam():
				printlnFn("Available commands: answer <n>, next, prev, goto <n>, board, submit, cancel, logout, exit")
			case a.isLoggedIn():
				printlnFn("Available commands: (t)ests, start <id>, logout, exit")
			default:
				printlnFn("Available commands: login, studentlogin, exit")
			}

		case "login":
			if a.inExam() {
				printlnFn("Finish or cancel the exam first")
				continue
			}
			_ = a.Login(ctx)

		case "studentlogin":
			if a.inExam() {
				printlnFn("Finish or cancel the exam first")
				continue
			}
			_ = a.StudentLogin(ctx)

		case "t", "tests":
			_ = a.ListTests(ctx)

		case "start":
			id, ok := intArg(args, "Usage: start <test id>")
			if !ok {
				continue
			}
			_ = a.StartExam(ctx, id)

		case "answer":
			n, ok := intArg(args, "Usage: answer <option number>")
			if !ok {
				continue
			}
			_ = a.Answer(n)

		case "n", "next":
			_ = a.Next()

		case "p", "prev":
			_ = a.Prev()

		case "goto":
			n, ok := intArg(args, "Usage: goto <question number>")
			if !ok {
				continue
			}
			_ = a.Goto(n)

		case "b", "board":
			_ = a.Board()

		case "submit":
			_ = a.Submit(ctx)

		case "cancel":
			_ = a.Cancel(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func intArg(args []string, usage string) (int, bool) {
	if len(args) == 0 {
		printlnFn(usage)
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		printlnFn(usage)
		return 0, false
	}
	return n, true
}
