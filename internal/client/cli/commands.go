package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/vault"
	"github.com/dmitrijs2005/cloudvault/internal/common"
)

var errNoFile = errors.New("no such file")

// Register prompts for a username, email and password and creates the
// account. The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	if a.auth == nil {
		printlnFn("This backend needs no account.")
		return nil
	}

	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, username, email, password); err != nil {
		printlnFn(client.Message(err, "Registration failed"))
		a.log.Error(ctx, "registration failed", "err", err)
		return err
	}

	printlnFn("Registration successful! You can log in now.")
	return nil
}

// Login prompts for credentials, authenticates and starts the file session.
func (a *App) Login(ctx context.Context) error {
	if a.auth == nil {
		printlnFn("This backend needs no login.")
		return nil
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	sess, err := a.auth.Login(ctx, email, password)
	if err != nil {
		printlnFn(client.Message(err, "Login failed"))
		a.log.Error(ctx, "login failed", "err", err)
		return err
	}

	printlnFn(fmt.Sprintf("Welcome, %s!", sess.User.DisplayName()))
	a.startSession(ctx)
	return nil
}

// Logout forgets the persisted session and tears the file session down.
func (a *App) Logout(ctx context.Context) error {
	a.endSession()
	if a.auth == nil {
		return nil
	}
	if err := a.auth.Logout(ctx); err != nil {
		a.log.Error(ctx, "logout failed", "err", err)
		return err
	}
	printlnFn("Logged out.")
	return nil
}

func (a *App) List(ctx context.Context) error {
	ctrl := a.controller()
	if ctrl == nil {
		return common.ErrNotLoggedIn
	}
	for _, line := range renderFiles(ctrl.State()) {
		printlnFn(line)
	}
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	ctrl := a.controller()
	if ctrl == nil {
		return common.ErrNotLoggedIn
	}
	ctrl.FetchFiles(ctx)
	return a.List(ctx)
}

// Upload opens the local file at path and uploads it.
func (a *App) Upload(ctx context.Context, path string) error {
	ctrl := a.controller()
	if ctrl == nil {
		return common.ErrNotLoggedIn
	}

	blob, closeFn, err := openBlob(path)
	if err != nil {
		printlnFn("Cannot read file:", err)
		return err
	}
	defer closeFn()

	printlnFn("Uploading", blob.Name, "...")
	if ctrl.UploadFile(ctx, blob) {
		return a.List(ctx)
	}
	return nil
}

func openBlob(path string) (*client.Blob, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if fi.IsDir() {
		_ = f.Close()
		return nil, nil, fmt.Errorf("%s is a directory", path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := f.Read(head)
		contentType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, 0); err != nil {
			_ = f.Close()
			return nil, nil, err
		}
	}

	blob := &client.Blob{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        fi.Size(),
		Body:        f,
	}
	return blob, func() { _ = f.Close() }, nil
}

func (a *App) Download(ctx context.Context, id string) error {
	ctrl, rec, err := a.lookup(id)
	if err != nil {
		return err
	}
	ctrl.DownloadFile(ctx, rec)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	ctrl, _, err := a.lookup(id)
	if err != nil {
		return err
	}
	ctrl.DeleteFile(ctx, models.FileID(id))
	return nil
}

// View opens the previewer on the file and describes it.
func (a *App) View(ctx context.Context, id string) error {
	ctrl, rec, err := a.lookup(id)
	if err != nil {
		return err
	}
	ctrl.OpenViewer(rec)
	if p, ok := ctrl.Preview(); ok {
		for _, line := range renderPreview(p) {
			printlnFn(line)
		}
	}
	return nil
}

// Open hands the previewed file's link to the browser.
func (a *App) Open(ctx context.Context) error {
	ctrl := a.controller()
	if ctrl == nil {
		return common.ErrNotLoggedIn
	}
	p, ok := ctrl.Preview()
	if !ok {
		printlnFn("Nothing is being previewed (use 'view <id>').")
		return nil
	}
	if err := a.opener.OpenURL(p.Record.FileLink); err != nil {
		printlnFn("Cannot open browser. Link:", p.Record.FileLink)
		a.log.Warn(ctx, "open link failed", "err", err)
		return err
	}
	return nil
}

func (a *App) CloseView(ctx context.Context) error {
	ctrl := a.controller()
	if ctrl == nil {
		return common.ErrNotLoggedIn
	}
	ctrl.CloseViewer()
	return nil
}

// Share toggles the share menu of the file.
func (a *App) Share(ctx context.Context, id string) error {
	ctrl, rec, err := a.lookup(id)
	if err != nil {
		return err
	}
	ctrl.ToggleShareMenu(rec.ID)
	if ctrl.State().ShareMenuOpenFor(rec.ID) {
		printlnFn(fmt.Sprintf("Share %s: copy | whatsapp | email", vault.LinkName(rec.FileLink)))
	} else {
		printlnFn("Share menu closed.")
	}
	return nil
}

func (a *App) CopyLink(ctx context.Context) error {
	return a.withShareTarget(func(ctrl *vault.Controller, rec models.FileRecord) {
		ctrl.CopyLink(ctx, rec.FileLink)
	})
}

func (a *App) ShareMessaging(ctx context.Context) error {
	return a.withShareTarget(func(ctrl *vault.Controller, rec models.FileRecord) {
		ctrl.ShareViaMessaging(ctx, rec.FileLink)
	})
}

func (a *App) ShareEmail(ctx context.Context) error {
	return a.withShareTarget(func(ctrl *vault.Controller, rec models.FileRecord) {
		ctrl.ShareViaEmail(ctx, rec.FileLink)
	})
}

func (a *App) withShareTarget(fn func(*vault.Controller, models.FileRecord)) error {
	ctrl := a.controller()
	if ctrl == nil {
		return common.ErrNotLoggedIn
	}
	s := ctrl.State()
	if !s.ShareMenuOpen {
		printlnFn("Open a share menu first (use 'share <id>').")
		return nil
	}
	rec, ok := s.Find(s.ShareMenu)
	if !ok {
		ctrl.DismissShareMenu()
		printlnFn("That file is no longer listed.")
		return errNoFile
	}
	fn(ctrl, rec)
	return nil
}

// DismissShare is the outside-interaction hook: any other command closes
// the open share menu.
func (a *App) DismissShare() {
	if ctrl := a.controller(); ctrl != nil {
		ctrl.DismissShareMenu()
	}
}

// ShowNotice prints the session notice when it changed since last shown.
func (a *App) ShowNotice() {
	ctrl := a.controller()
	if ctrl == nil {
		return
	}
	n := ctrl.State().Notice

	a.mu.Lock()
	changed := n.Kind != a.lastNotice.Kind || n.Message != a.lastNotice.Message
	a.lastNotice = n
	a.mu.Unlock()

	if changed && n.Kind != vault.NoticeNone {
		printlnFn(renderNotice(n))
	}
}

func (a *App) lookup(id string) (*vault.Controller, models.FileRecord, error) {
	ctrl := a.controller()
	if ctrl == nil {
		return nil, models.FileRecord{}, common.ErrNotLoggedIn
	}
	rec, ok := ctrl.State().Find(models.FileID(id))
	if !ok {
		printlnFn(fmt.Sprintf("No file with id %s (use 'list').", id))
		return nil, models.FileRecord{}, errNoFile
	}
	return ctrl, rec, nil
}
