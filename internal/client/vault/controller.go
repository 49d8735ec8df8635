package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

const DefaultNoticeTTL = 3 * time.Second

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Saver stores downloaded content under the suggested name and returns
// where it ended up.
type Saver interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// Controller owns the file session: the listing, the in-flight flags, the
// notice slot, the viewer and the share menu.
type Controller struct {
	gw        client.Client
	log       logging.Logger
	confirm   Confirmer
	saver     Saver
	share     *Dispatcher
	noticeTTL time.Duration
	onChange  func(State)

	// afterFunc schedules the notice expiry; replaced in tests.
	afterFunc func(d time.Duration, f func()) func() bool

	mu        sync.Mutex
	closed    bool
	files     []models.FileRecord
	fetch     FetchState
	fetchGen  uint64
	uploading bool
	notice    Notice
	noticeSeq uint64
	stopTimer func() bool
	viewing   *models.FileRecord
	shareMenu models.FileID
	shareOpen bool
}

type Option func(*Controller)

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithConfirmer sets the delete confirmation. Without one every delete is
// declined.
func WithConfirmer(cf Confirmer) Option {
	return func(c *Controller) { c.confirm = cf }
}

func WithSaver(s Saver) Option {
	return func(c *Controller) { c.saver = s }
}

func WithDispatcher(d *Dispatcher) Option {
	return func(c *Controller) { c.share = d }
}

// WithNoticeTTL sets how long the copy-link success notice stays up.
func WithNoticeTTL(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.noticeTTL = d
		}
	}
}

// WithOnChange registers a callback invoked with a fresh snapshot after
// every state transition. It runs outside the controller lock.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func NewController(gw client.Client, opts ...Option) *Controller {
	c := &Controller{
		gw:        gw,
		log:       logging.Nop(),
		confirm:   ConfirmFunc(func(context.Context, string) bool { return false }),
		noticeTTL: DefaultNoticeTTL,
		files:     []models.FileRecord{},
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start performs the initial fetch.
func (c *Controller) Start(ctx context.Context) {
	c.FetchFiles(ctx)
}

// FetchFiles replaces the listing with the gateway's. A failure keeps the
// previous files and marks the fetch failed. Only the most recently started
// fetch is applied.
func (c *Controller) FetchFiles(ctx context.Context) {
	var gen uint64
	if _, ok := c.update(func() {
		c.fetchGen++
		gen = c.fetchGen
		c.fetch = FetchLoading
		c.clearErrorLocked()
	}); !ok {
		return
	}

	files, err := c.gw.List(ctx)

	c.update(func() {
		if gen != c.fetchGen {
			c.log.Debug(ctx, "stale listing discarded", "generation", gen, "latest", c.fetchGen)
			return
		}
		if err != nil {
			c.fetch = FetchFailed
			c.setErrorLocked(ErrFetchFailed, err, client.Message(err, msgFetchFailed))
			c.log.Error(ctx, "fetch files failed", "err", err)
			return
		}
		c.files = files
		c.fetch = FetchPopulated
		c.log.Info(ctx, "files fetched", "count", len(files))
	})
}

// UploadFile stores blob and refreshes the listing. It reports whether the
// upload succeeded, in which case the caller should reset its file picker.
// A nil blob is ignored.
func (c *Controller) UploadFile(ctx context.Context, blob *client.Blob) bool {
	if blob == nil {
		return false
	}
	if _, ok := c.update(func() {
		c.uploading = true
		c.clearNoticeLocked()
	}); !ok {
		return false
	}
	defer c.update(func() { c.uploading = false })

	if err := c.gw.Upload(ctx, blob); err != nil {
		c.update(func() {
			c.setErrorLocked(ErrUploadFailed, err, client.Message(err, msgUploadFailed))
		})
		c.log.Error(ctx, "upload failed", "name", blob.Name, "err", err)
		return false
	}

	c.log.Info(ctx, "file uploaded", "name", blob.Name, "size", blob.Size)
	if _, ok := c.update(func() { c.setSuccessLocked(msgUploaded) }); ok {
		c.FetchFiles(ctx)
	}
	return true
}

// DeleteFile removes the file after the confirmer approves; a declined
// confirmation leaves everything untouched.
func (c *Controller) DeleteFile(ctx context.Context, id models.FileID) {
	if !c.confirm.Confirm(ctx, deletePrompt) {
		return
	}
	if _, ok := c.update(c.clearNoticeLocked); !ok {
		return
	}

	if err := c.gw.Delete(ctx, id); err != nil {
		c.update(func() {
			c.setErrorLocked(ErrDeleteFailed, err, client.Message(err, msgDeleteFailed))
		})
		c.log.Error(ctx, "delete failed", "file_id", id, "err", err)
		return
	}

	c.log.Info(ctx, "file deleted", "file_id", id)
	if _, ok := c.update(func() { c.setSuccessLocked(msgDeleted) }); ok {
		c.FetchFiles(ctx)
	}
}

// DownloadFile fetches the object behind rec and hands it to the saver
// under its display name. A link without a storage key fails before any
// network call.
func (c *Controller) DownloadFile(ctx context.Context, rec models.FileRecord) {
	if _, ok := c.update(c.clearErrorLocked); !ok {
		return
	}

	key, err := ResolveKey(rec.FileLink)
	if err != nil {
		c.update(func() { c.setErrorLocked(ErrMalformedLink, nil, msgMalformedLink) })
		c.log.Warn(ctx, "download skipped", "file_id", rec.ID, "link", rec.FileLink, "err", err)
		return
	}

	path, err := c.download(ctx, key)
	if err != nil {
		c.update(func() {
			c.setErrorLocked(ErrDownloadFailed, err, client.Message(err, msgDownloadFailed))
		})
		c.log.Error(ctx, "download failed", "file_id", rec.ID, "key", key, "err", err)
		return
	}

	c.log.Info(ctx, "file downloaded", "file_id", rec.ID, "key", key, "path", path)
	c.update(func() { c.setSuccessLocked(msgDownloaded) })
}

func (c *Controller) download(ctx context.Context, key string) (string, error) {
	body, err := c.gw.Download(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if c.saver == nil {
		return "", errors.New("no download target configured")
	}
	path, err := c.saver.Save(ctx, DisplayName(key), body)
	if err != nil {
		return "", fmt.Errorf("save %s: %w", DisplayName(key), err)
	}
	return path, nil
}

// OpenViewer previews rec. A record without a link cannot be viewed.
func (c *Controller) OpenViewer(rec models.FileRecord) {
	c.update(func() {
		c.clearErrorLocked()
		if rec.FileLink == "" {
			c.setErrorLocked(ErrViewFailed, nil, msgViewFailed)
			return
		}
		c.viewing = &rec
	})
}

func (c *Controller) CloseViewer() {
	c.update(func() { c.viewing = nil })
}

// Preview describes the viewed file, if any.
func (c *Controller) Preview() (Preview, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.viewing == nil {
		return Preview{}, false
	}
	return newPreview(*c.viewing), true
}

// ToggleShareMenu closes the menu when it is open for id and otherwise
// opens it for id, closing any other.
func (c *Controller) ToggleShareMenu(id models.FileID) {
	c.update(func() {
		if c.shareOpen && c.shareMenu == id {
			c.closeShareMenuLocked()
			return
		}
		c.shareMenu = id
		c.shareOpen = true
	})
}

// DismissShareMenu is called by the presentation layer on any interaction
// outside the open menu.
func (c *Controller) DismissShareMenu() {
	c.update(c.closeShareMenuLocked)
}

// CopyLink writes fileLink to the clipboard. The success notice expires
// after the notice TTL on its own.
func (c *Controller) CopyLink(ctx context.Context, fileLink string) {
	err := c.share.CopyLink(fileLink)

	c.update(func() {
		c.closeShareMenuLocked()
		if err != nil {
			c.setErrorLocked(ErrShareCopyFailed, err, msgCopyFailed)
			return
		}
		seq := c.setSuccessLocked(msgLinkCopied)
		if c.stopTimer != nil {
			c.stopTimer()
		}
		c.stopTimer = c.afterFunc(c.noticeTTL, func() { c.expireNotice(seq) })
	})
	if err != nil {
		c.log.Error(ctx, "copy link failed", "err", err)
	}
}

// ShareViaMessaging and ShareViaEmail hand off to an external app; their
// outcome is only logged.
func (c *Controller) ShareViaMessaging(ctx context.Context, fileLink string) {
	err := c.share.ShareViaMessaging(fileLink)
	c.update(c.closeShareMenuLocked)
	if err != nil {
		c.log.Warn(ctx, "share via messaging failed", "err", err)
	}
}

func (c *Controller) ShareViaEmail(ctx context.Context, fileLink string) {
	err := c.share.ShareViaEmail(fileLink)
	c.update(c.closeShareMenuLocked)
	if err != nil {
		c.log.Warn(ctx, "share via email failed", "err", err)
	}
}

func (c *Controller) ClearNotice() {
	c.update(c.clearNoticeLocked)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close tears the session down. Operations still in flight run to
// completion but their results are discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.files = []models.FileRecord{}
	c.fetch = FetchIdle
	c.uploading = false
	c.notice = Notice{}
	c.viewing = nil
	c.closeShareMenuLocked()
}

// update applies fn under the lock and publishes the new state. It reports
// false, without calling fn, once the controller is closed.
func (c *Controller) update(fn func()) (State, bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return State{}, false
	}
	fn()
	s := c.snapshotLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange(s)
	}
	return s, true
}

func (c *Controller) expireNotice(seq uint64) {
	c.update(func() {
		if c.noticeSeq == seq {
			c.notice = Notice{}
		}
	})
}

func (c *Controller) snapshotLocked() State {
	s := State{
		Files:         append([]models.FileRecord(nil), c.files...),
		Fetch:         c.fetch,
		Loading:       c.fetch == FetchLoading,
		Uploading:     c.uploading,
		Notice:        c.notice,
		ShareMenu:     c.shareMenu,
		ShareMenuOpen: c.shareOpen,
	}
	if s.Files == nil {
		s.Files = []models.FileRecord{}
	}
	if c.viewing != nil {
		v := *c.viewing
		s.Viewing = &v
	}
	return s
}

func (c *Controller) setErrorLocked(kind, cause error, msg string) {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}
	c.noticeSeq++
	c.notice = Notice{Kind: NoticeError, Message: msg, Err: err}
}

func (c *Controller) setSuccessLocked(msg string) uint64 {
	c.noticeSeq++
	c.notice = Notice{Kind: NoticeSuccess, Message: msg}
	return c.noticeSeq
}

func (c *Controller) clearErrorLocked() {
	if c.notice.Kind == NoticeError {
		c.noticeSeq++
		c.notice = Notice{}
	}
}

func (c *Controller) clearNoticeLocked() {
	c.noticeSeq++
	c.notice = Notice{}
}

func (c *Controller) closeShareMenuLocked() {
	c.shareMenu = ""
	c.shareOpen = false
}
