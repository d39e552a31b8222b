// Package mindful is the data-access layer of the client: authentication
// through the identity API and every read and write of user, diagnostic,
// note and recommendation documents.
//
// Errors from the store and the network are returned as they are. The
// only re-shaped errors are identity failures (*identity.Error) and
// partial bulk deletes (*PartialDeleteError).
package mindful

import (
	"context"
	"time"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/docstore"
	"github.com/mindfulplus/mindful/internal/identity"
	"github.com/mindfulplus/mindful/internal/logging"
	"github.com/mindfulplus/mindful/internal/timex"
)

// Authenticator is the identity API. *identity.Client implements it.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*identity.Credentials, error)
	SignIn(ctx context.Context, email, password string) (*identity.Credentials, error)
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*identity.Credentials, error)
}

// TokenSigner mints custom tokens. *identity.Signer implements it.
type TokenSigner interface {
	CustomToken(uid string, claims map[string]any) (string, error)
}

type Service struct {
	store  docstore.Store
	auth   Authenticator
	signer TokenSigner
	loc    *time.Location
	now    timex.Clock
	log    logging.Logger
}

type Option func(*Service)

func WithSigner(s TokenSigner) Option { return func(svc *Service) { svc.signer = s } }

// WithLocation sets the zone used for "today" boundaries.
func WithLocation(loc *time.Location) Option {
	return func(svc *Service) {
		if loc != nil {
			svc.loc = loc
		}
	}
}

func WithClock(c timex.Clock) Option {
	return func(svc *Service) {
		if c != nil {
			svc.now = c
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

func New(store docstore.Store, auth Authenticator, opts ...Option) *Service {
	loc, _ := timex.LoadLocation(timex.DefaultZone)
	s := &Service{
		store: store,
		auth:  auth,
		loc:   loc,
		now:   time.Now,
		log:   logging.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Location is the zone used for day boundaries.
func (s *Service) Location() *time.Location { return s.loc }

// Now reads the service clock.
func (s *Service) Now() time.Time { return s.now() }

// SignUp creates an account and returns its ID token and uid.
func (s *Service) SignUp(ctx context.Context, email, password string) (token, uid string, err error) {
	creds, err := s.auth.SignUp(ctx, email, password)
	if err != nil {
		return "", "", err
	}
	s.log.Info(ctx, "account created", "uid", creds.LocalID)
	return creds.IDToken, creds.LocalID, nil
}

// SignIn returns the ID token and uid of an email/password account. A
// rejected sign-in fails with *identity.Error.
func (s *Service) SignIn(ctx context.Context, email, password string) (token, uid string, err error) {
	creds, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return "", "", err
	}
	return creds.IDToken, creds.LocalID, nil
}

// SignInWithGoogle also returns the full provider payload.
func (s *Service) SignInWithGoogle(ctx context.Context, googleIDToken string) (token, uid string, raw map[string]any, err error) {
	creds, err := s.auth.SignInWithGoogle(ctx, googleIDToken)
	if err != nil {
		return "", "", nil, err
	}
	return creds.IDToken, creds.LocalID, creds.Raw, nil
}

// CustomToken signs a token for uid with the admin service account.
func (s *Service) CustomToken(uid string, claims map[string]any) (string, error) {
	if s.signer == nil {
		return "", common.ErrNotConfigured
	}
	return s.signer.CustomToken(uid, claims)
}

func userDoc(uid string) string {
	return docstore.Join("users", uid)
}

func diagnosticsCol(uid string) string {
	return docstore.Join("users", uid, "diagnostics")
}

func notesCol(uid string) string {
	return docstore.Join("users", uid, "notes")
}

func recommendationsCol(uid string) string {
	return docstore.Join("users", uid, "recommendations")
}
