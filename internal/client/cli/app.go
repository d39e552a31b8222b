package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mindfulplus/mindful/internal/assets"
	"github.com/mindfulplus/mindful/internal/config"
	"github.com/mindfulplus/mindful/internal/docstore"
	"github.com/mindfulplus/mindful/internal/identity"
	"github.com/mindfulplus/mindful/internal/logging"
	"github.com/mindfulplus/mindful/internal/mindful"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/notify"
	"github.com/mindfulplus/mindful/internal/session"
	"github.com/mindfulplus/mindful/internal/ui"
	"github.com/mindfulplus/mindful/internal/ui/async"
	"github.com/mindfulplus/mindful/internal/ui/header"
	"github.com/mindfulplus/mindful/internal/ui/home"
	"github.com/mindfulplus/mindful/internal/ui/notes"
)

// Backend is the data-access surface the client uses.
// *mindful.Service implements it.
type Backend interface {
	SignUp(ctx context.Context, email, password string) (token, uid string, err error)
	SignIn(ctx context.Context, email, password string) (token, uid string, err error)
	SignInWithGoogle(ctx context.Context, googleIDToken string) (token, uid string, raw map[string]any, err error)

	CreateUserProfile(ctx context.Context, uid, email, username string) error
	CreateProfessionalProfile(ctx context.Context, uid string, p mindful.ProfessionalSignup) error
	GetUserProfile(ctx context.Context, uid string) (*models.User, error)
	UpdateUserPhoto(ctx context.Context, uid, photoURL string) error

	notes.Store
	home.Diagnostics
	header.TokenSigner

	Location() *time.Location
	Now() time.Time
}

// Sessions is the session manager as the client uses it.
// *session.Manager implements it.
type Sessions interface {
	ui.Sessions
	Set(ctx context.Context, s *models.Session) error
}

// PhotoHost stores profile photos. *assets.Host implements it.
type PhotoHost interface {
	Enabled() bool
	UploadPhoto(ctx context.Context, uid, filename string, data []byte) (string, error)
}

// parseIDToken is a test seam for identity.ParseIDToken.
var parseIDToken = identity.ParseIDToken

type App struct {
	backend  Backend
	sessions Sessions
	photos   PhotoHost
	notifier header.Notifier
	loop     *async.Loop
	page     *ui.Page
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex
	ansi   bool

	forceMobile bool
	pending     atomic.Bool

	mu     sync.Mutex
	header *header.Header
	home   *home.View
	notes  *notes.View

	closers []func() error
}

// Deps are the collaborators of an App. NewApp builds them from the
// configuration; tests hand in fakes.
type Deps struct {
	Backend  Backend
	Sessions Sessions
	Photos   PhotoHost
	Notifier header.Notifier
	Log      logging.Logger
	In       io.Reader
	Out      io.Writer
	Width    int
	ANSI     bool
}

// NewApp wires the data-access wrapper, the session cache, notifications
// and photo hosting described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	svc, err := mindful.NewFromConfig(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	storage, db, err := session.OpenStorage(ctx, cfg.SessionDB)
	if err != nil {
		log.Error(ctx, "error initializing session cache", "error", err)
		return nil, err
	}
	sessions, err := session.NewManager(ctx, storage, cfg.SessionSecret)
	if err != nil {
		db.Close()
		return nil, err
	}

	n := notify.New(cfg.UploaderURL)
	n.Interval = cfg.NotifyInterval
	n.Attempts = cfg.NotifyAttempts

	a := New(Deps{
		Backend:  svc,
		Sessions: sessions,
		Photos:   assets.New(cfg.Assets),
		Notifier: n,
		Log:      log,
		In:       os.Stdin,
		Out:      os.Stdout,
		ANSI:     isTerminal(int(os.Stdout.Fd())),
	})
	a.closers = append(a.closers, db.Close, docstore.CloseShared)
	return a, nil
}

// New builds an App from ready collaborators.
func New(d Deps) *App {
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	if d.Out == nil {
		d.Out = io.Discard
	}
	if d.In == nil {
		d.In = eofReader{}
	}
	if d.Sessions == nil {
		d.Sessions, _ = session.NewManager(context.Background(), nil, "")
	}
	a := &App{
		backend:  d.Backend,
		sessions: d.Sessions,
		photos:   d.Photos,
		notifier: d.Notifier,
		loop:     async.NewLoop(),
		log:      d.Log.With("component", "cli"),
		reader:   bufio.NewReader(d.In),
		out:      d.Out,
		ansi:     d.ANSI,
	}
	a.page = ui.NewPage(ui.PageOptions{
		Width:    d.Width,
		Sessions: d.Sessions,
		Loop:     a.loop,
		Log:      d.Log,
		Navigate: a.mount,
		Launch:   a.launch,
		Redraw:   a.scheduleRender,
	})
	return a
}

// Page is the screen host.
func (a *App) Page() *ui.Page { return a.page }

// Run restores a cached session, opens the first screen and serves the
// REPL until the user quits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	start := header.RouteLogin
	if s := a.page.Session(ctx); s != nil {
		a.log.Info(ctx, "session restored", "uid", s.UID)
		start = header.RouteHome
	}
	a.page.Go(start)
	a.Render()

	runREPL(ctx, a, a.status, a.reader)
}

// Close stops the UI loop and releases the storage handles.
func (a *App) Close() error {
	a.mu.Lock()
	a.unmountLocked()
	a.mu.Unlock()
	a.loop.Close()

	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current() != nil
}

func (a *App) status() string {
	s := a.sessions.Current()
	if s == nil {
		return a.page.Route()
	}
	return s.DisplayName() + " " + a.page.Route()
}

// Render draws the page now and cancels a pending redraw.
func (a *App) Render() {
	a.pending.Store(false)
	a.render()
}

func (a *App) render() {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	if err := ui.Render(a.out, a.page, ui.RenderOptions{ANSI: a.ansi}); err != nil {
		a.log.Warn(context.Background(), "render", "error", err)
	}
}

// scheduleRender coalesces redraw requests into one render on the loop.
func (a *App) scheduleRender() {
	if !a.pending.CompareAndSwap(false, true) {
		return
	}
	posted := a.loop.Post(func() {
		if a.pending.Swap(false) {
			a.render()
		}
	})
	if !posted {
		a.pending.Store(false)
	}
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// launch has no browser to open, so it shows the link.
func (a *App) launch(url string) error {
	a.println("Open this link in your browser:")
	a.println(url)
	return nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
