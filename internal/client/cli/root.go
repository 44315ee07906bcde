package cli

import (
	"bufio"
	"context"
	"os"
)

// Root prints the welcome banner and runs the command loop until EOF or an
// explicit exit.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to ExamGate CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
