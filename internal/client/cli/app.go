package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dkarpov/examgate/internal/client/api"
	"github.com/dkarpov/examgate/internal/client/config"
	"github.com/dkarpov/examgate/internal/client/exam"
	"github.com/dkarpov/examgate/internal/client/identity"
	"github.com/dkarpov/examgate/internal/client/session"
	"github.com/dkarpov/examgate/internal/client/tokenstore"
	"github.com/dkarpov/examgate/internal/logging"

	_ "modernc.org/sqlite"
)

// App is the terminal client. All state transitions flow through the
// session store and the current exam attempt; App itself only renders and
// dispatches.
type App struct {
	config *config.Config
	api    api.Client
	store  *session.Store
	camera identity.Camera
	log    logging.Logger
	reader *bufio.Reader

	// userLabel mirrors the store via subscription and feeds the prompt.
	userLabel string

	// attempt is the exam in progress, nil outside an exam.
	attempt *exam.Session
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	log := logging.NewZerologLogger(os.Stderr, c.LogLevel, true)

	db, err := tokenstore.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing local database", "error", err)
		return nil, err
	}

	apiClient := api.NewRESTClient(c.ServerBaseURL, c.RequestTimeout)
	store := session.NewStore(tokenstore.NewSQLiteRepository(db), apiClient, log)

	app := &App{
		config: c,
		api:    apiClient,
		store:  store,
		camera: &identity.StillCamera{Path: c.CaptureSourcePath},
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}

	store.Subscribe(app.onSessionChange)
	return app, nil
}

// Run hydrates the session store and hands control to the REPL. The store
// finishes Loading inside Init, so the first prompt already reflects the
// persisted session.
func (a *App) Run(ctx context.Context) {
	a.store.Init(ctx)
	a.Root(ctx)
}

func (a *App) onSessionChange(state session.State, sess *session.Session) {
	if sess == nil {
		a.userLabel = ""
		return
	}
	if sess.Claims.FullName != "" {
		a.userLabel = sess.Claims.FullName
		return
	}
	a.userLabel = sess.Claims.Subject
}

func (a *App) isLoggedIn() bool {
	return a.store.State() == session.StateAuthenticated
}

func (a *App) inExam() bool {
	return a.attempt != nil
}

func (a *App) getStatus() string {
	s := ""
	if a.userLabel != "" {
		s = a.userLabel
		if role := a.store.Role(); role != "" {
			s += " " + string(role)
		}
	}
	if a.inExam() {
		s += fmt.Sprintf(" exam:%d", a.attempt.Test().ID)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
