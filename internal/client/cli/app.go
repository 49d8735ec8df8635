package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/config"
	"github.com/dmitrijs2005/cloudvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cloudvault/internal/client/services"
	"github.com/dmitrijs2005/cloudvault/internal/client/vault"
	"github.com/dmitrijs2005/cloudvault/internal/common"
	"github.com/dmitrijs2005/cloudvault/internal/filex"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

// App wires configuration, the session provider, the file gateway and the
// file session controller behind the REPL.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	// auth is nil for the s3 backend, which needs no login.
	auth   services.AuthService
	gw     client.Client
	saver  vault.Saver
	share  *vault.Dispatcher
	opener vault.Opener

	reader *bufio.Reader
	out    io.Writer

	mu         sync.Mutex
	ctrl       *vault.Controller
	lastNotice vault.Notice
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	a := &App{
		config: c,
		log:    log,
		saver:  filex.NewDirSaver(c.DownloadPath()),
		share:  vault.NewDispatcher(systemClipboard, systemOpener),
		opener: systemOpener,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	switch c.Backend {
	case config.BackendS3:
		gw, err := client.NewS3Client(ctx, client.S3Config{
			Endpoint:     c.S3.Endpoint,
			Region:       c.S3.Region,
			Bucket:       c.S3.Bucket,
			AccessKey:    c.S3.AccessKey,
			SecretKey:    c.S3.SecretKey,
			UsePathStyle: c.S3.UsePathStyle,
		}, log)
		if err != nil {
			return nil, err
		}
		a.gw = gw

	default:
		if _, err := filex.EnsureDir(c.DataDir); err != nil {
			return nil, err
		}
		db, err := client.InitDatabase(ctx, c.DatabasePath())
		if err != nil {
			log.Error(ctx, "error initializing database", "err", err)
			return nil, err
		}
		a.db = db

		var auth services.AuthService
		rc, err := client.NewRESTClient(c.APIBaseURL,
			client.WithHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
			client.WithTokenSource(client.TokenFunc(func() string { return auth.Token() })),
			client.WithUnauthorizedHook(a.onUnauthorized),
			client.WithRetryMaxElapsed(c.RetryMaxElapsed),
			client.WithLogger(log),
		)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		auth = services.NewAuthService(rc, metadata.NewSQLiteRepository(db), log)
		a.gw = rc
		a.auth = auth
	}

	return a, nil
}

// Run restores a persisted session when there is one and blocks in the
// REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to CloudVault CLI (type 'help' for commands)")

	if a.auth == nil {
		a.startSession(ctx)
	} else if _, err := a.auth.Restore(ctx); err == nil {
		a.startSession(ctx)
	} else if errors.Is(err, common.ErrTokenExpired) {
		printlnFn("Your session has expired, please log in again.")
	} else if !errors.Is(err, common.ErrNotLoggedIn) {
		a.log.Error(ctx, "restore session failed", "err", err)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	a.endSession()
	if a.gw != nil {
		_ = a.gw.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.controller() != nil
}

func (a *App) canAuthenticate() bool {
	return a.auth != nil
}

// getStatus is the prompt decoration: the current user, if any.
func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	if a.auth == nil {
		return fmt.Sprintf(" (%s)", a.config.S3.Bucket)
	}
	s := a.auth.Session()
	if s == nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", s.User.DisplayName())
}

func (a *App) controller() *vault.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctrl
}

// startSession creates the file session and performs the initial fetch.
func (a *App) startSession(ctx context.Context) {
	ctrl := vault.NewController(a.gw,
		vault.WithLogger(a.log),
		vault.WithConfirmer(vault.ConfirmFunc(a.confirm)),
		vault.WithSaver(a.saver),
		vault.WithDispatcher(a.share),
		vault.WithNoticeTTL(a.config.NoticeTTL),
	)

	a.mu.Lock()
	if a.ctrl != nil {
		a.ctrl.Close()
	}
	a.ctrl = ctrl
	a.lastNotice = vault.Notice{}
	a.mu.Unlock()

	ctrl.Start(ctx)
	a.ShowNotice()
}

// endSession tears the file session down; late results are discarded.
func (a *App) endSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctrl != nil {
		a.ctrl.Close()
		a.ctrl = nil
	}
}

// onUnauthorized runs when the backend rejects the token: the persisted
// session is cleared and the REPL drops back to the logged-out prompt.
func (a *App) onUnauthorized() {
	if a.auth != nil {
		a.auth.HandleUnauthorized()
	}
	a.endSession()
	printlnFn("Your session is no longer valid, please log in again.")
}

func (a *App) confirm(_ context.Context, prompt string) bool {
	return AskYesNo(a.reader, prompt, a.out)
}
