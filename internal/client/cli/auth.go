package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/identity"
	"github.com/mindfulplus/mindful/internal/mindful"
	"github.com/mindfulplus/mindful/internal/models"
	"github.com/mindfulplus/mindful/internal/ui"
	"github.com/mindfulplus/mindful/internal/ui/header"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	readFile      = os.ReadFile
)

// authMessages maps identity provider codes to what the user is told.
var authMessages = []struct {
	codes []string
	text  string
}{
	{[]string{"EMAIL_EXISTS"}, "That email is already registered."},
	{[]string{"EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS"}, "Wrong email or password."},
	{[]string{"USER_DISABLED"}, "This account has been disabled."},
	{[]string{"WEAK_PASSWORD"}, "The password must have at least 6 characters."},
	{[]string{"INVALID_EMAIL"}, "That email address is not valid."},
	{[]string{"TOO_MANY_ATTEMPTS"}, "Too many attempts. Try again later."},
}

// AuthMessage turns a sign-in or sign-up failure into a user message.
func AuthMessage(err error) string {
	var ie *identity.Error
	if !errors.As(err, &ie) {
		return "Could not reach the sign-in service: " + err.Error()
	}
	for _, m := range authMessages {
		for _, c := range m.codes {
			if strings.Contains(ie.Code, c) {
				return m.text
			}
		}
	}
	return "Sign-in failed: " + ie.Code
}

// Register prompts for the account fields, creates the identity and the
// user document, and signs the new user in. pro adds the professional
// profile questions.
func (a *App) Register(ctx context.Context, pro bool) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	var p mindful.ProfessionalSignup
	var photoPath string
	if pro {
		for _, q := range []struct {
			prompt string
			dst    *string
		}{
			{"Full name", &p.FullName},
			{"Specialty", &p.Specialty},
			{"Professional license (cedula)", &p.Cedula},
			{"Phone", &p.Phone},
			{"Photo file (optional)", &photoPath},
		} {
			if *q.dst, err = getSimpleText(a.reader, q.prompt, a.out); err != nil {
				return err
			}
		}
		if p.FullName == "" || p.Cedula == "" {
			return fmt.Errorf("%w: full name and license are required", common.ErrorValidation)
		}
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, uid, err := a.backend.SignUp(ctx, email, string(password))
	if err != nil {
		a.log.Warn(ctx, "sign up failed", "error", err)
		a.page.Toast(ui.ToastError, AuthMessage(err))
		return nil
	}

	if err := a.backend.CreateUserProfile(ctx, uid, email, username); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if pro {
		if photoPath != "" {
			p.PhotoURL = a.uploadPhoto(ctx, uid, photoPath)
		}
		p.Email, p.Username = email, username
		if err := a.backend.CreateProfessionalProfile(ctx, uid, p); err != nil {
			return fmt.Errorf("create professional profile: %w", err)
		}
	}

	a.page.Toast(ui.ToastSuccess, "Account created")
	return a.startSession(ctx, token, uid, email)
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	token, uid, err := a.backend.SignIn(ctx, email, string(password))
	if err != nil {
		a.log.Warn(ctx, "login unsuccessful", "error", err)
		a.page.Toast(ui.ToastError, AuthMessage(err))
		return nil
	}
	a.log.Info(ctx, "login successful", "uid", uid)
	return a.startSession(ctx, token, uid, email)
}

// LoginWithGoogle exchanges a Google ID token. First-time users get a
// profile built from the federated email.
func (a *App) LoginWithGoogle(ctx context.Context, idToken string) error {
	token, uid, raw, err := a.backend.SignInWithGoogle(ctx, idToken)
	if err != nil {
		a.log.Warn(ctx, "google sign-in failed", "error", err)
		a.page.Toast(ui.ToastError, AuthMessage(err))
		return nil
	}
	email, _ := raw["email"].(string)

	profile, err := a.backend.GetUserProfile(ctx, uid)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	if profile == nil {
		name, _ := raw["displayName"].(string)
		if err := a.backend.CreateUserProfile(ctx, uid, email, name); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
	}
	return a.startSession(ctx, token, uid, email)
}

// startSession stores the session for uid and opens the home screen.
func (a *App) startSession(ctx context.Context, token, uid, email string) error {
	s := &models.Session{UID: uid, Email: email, Role: models.RoleNormal, Token: token}
	if info, err := parseIDToken(token); err != nil {
		a.log.Warn(ctx, "id token unreadable", "error", err)
	} else {
		s.ExpiresAt = info.ExpiresAt
		if s.Email == "" {
			s.Email = info.Email
		}
	}

	profile, err := a.backend.GetUserProfile(ctx, uid)
	if err != nil {
		a.log.Warn(ctx, "read profile", "uid", uid, "error", err)
	}
	if profile != nil {
		s.Username = profile.Username
		s.Role = profile.Role
		if s.Email == "" {
			s.Email = profile.Email
		}
	}

	if err := a.sessions.Set(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.page.Go(header.RouteHome)
	return nil
}

// Logout clears the session through the header when one is mounted.
func (a *App) Logout(ctx context.Context) error {
	if h := a.Header(); h != nil {
		h.Logout(ctx)
		return nil
	}
	if err := a.sessions.Clear(ctx); err != nil {
		return err
	}
	a.page.Go(header.RouteLogin)
	return nil
}

// Photo uploads a new profile photo for the signed-in user.
func (a *App) Photo(ctx context.Context, path string) error {
	s := a.page.Session(ctx)
	if s == nil {
		a.page.Toast(ui.ToastWarn, "Log in first")
		return nil
	}
	url := a.uploadPhoto(ctx, s.UID, path)
	if url == "" {
		return nil
	}
	if err := a.backend.UpdateUserPhoto(ctx, s.UID, url); err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	a.page.Toast(ui.ToastSuccess, "Photo updated")
	return nil
}

// uploadPhoto returns the public URL of the uploaded file, or "" after
// telling the user why it could not be stored.
func (a *App) uploadPhoto(ctx context.Context, uid, path string) string {
	if a.photos == nil || !a.photos.Enabled() {
		a.page.Toast(ui.ToastWarn, "Photo hosting is not configured.")
		return ""
	}
	data, err := readFile(path)
	if err != nil {
		a.page.Toast(ui.ToastError, "Could not read the photo: "+err.Error())
		return ""
	}
	url, err := a.photos.UploadPhoto(ctx, uid, filepath.Base(path), data)
	if err != nil {
		a.log.Error(ctx, "photo upload", "error", err)
		a.page.Toast(ui.ToastError, "Could not upload the photo: "+err.Error())
		return ""
	}
	return url
}
