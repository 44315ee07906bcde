package cli

import (
	"context"
	"fmt"
)

// ListTests prints the tests the server offers the current user.
func (a *App) ListTests(ctx context.Context) error {
	tests, err := a.api.ListTests(ctx)
	if err != nil {
		a.log.Error(ctx, "error listing tests", "error", err)
		printlnFn("Could not load tests:", err.Error())
		return err
	}
	if len(tests) == 0 {
		printlnFn("No tests available")
		return nil
	}
	for _, t := range tests {
		line := fmt.Sprintf("%d. %s", t.ID, t.Title)
		if t.Subject != nil {
			line += " [" + t.Subject.Name + "]"
		}
		// The list endpoint omits questions; only a detail fetch has them.
		if n := len(t.Questions); n > 0 {
			line += fmt.Sprintf(" (%d questions)", n)
		}
		printlnFn(line)
	}
	return nil
}
