package mindful

import (
	"context"
	"errors"

	"github.com/mindfulplus/mindful/internal/common"
	"github.com/mindfulplus/mindful/internal/docstore"
	"github.com/mindfulplus/mindful/internal/models"
)

// ProfessionalSignup is the registration form of a professional account.
type ProfessionalSignup struct {
	Email     string
	Username  string
	FullName  string
	Specialty string
	Cedula    string
	Phone     string
	PhotoURL  string
}

// CreateUserProfile merges the basic profile into users/{uid}. An empty
// username is stored as null.
func (s *Service) CreateUserProfile(ctx context.Context, uid, email, username string) error {
	var name any
	if username != "" {
		name = username
	}
	return s.store.Set(ctx, userDoc(uid), map[string]any{
		"email":     email,
		"username":  name,
		"type":      string(models.RoleNormal),
		"createdAt": docstore.ServerTimestamp,
	}, true)
}

// GetUserProfile returns nil, nil when the user has no profile document.
func (s *Service) GetUserProfile(ctx context.Context, uid string) (*models.User, error) {
	doc, err := s.store.Get(ctx, userDoc(uid))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return userFromDoc(doc), nil
}

// CreateProfessionalProfile merges the account fields and a nested
// "professional" map. PhotoURL is written only when set.
func (s *Service) CreateProfessionalProfile(ctx context.Context, uid string, p ProfessionalSignup) error {
	prof := map[string]any{
		"type":      string(models.RoleProfessional),
		"fullName":  p.FullName,
		"specialty": p.Specialty,
		"cedula":    p.Cedula,
		"phone":     p.Phone,
	}
	if p.PhotoURL != "" {
		prof["photoUrl"] = p.PhotoURL
	}
	return s.store.Set(ctx, userDoc(uid), map[string]any{
		"email":        p.Email,
		"username":     p.Username,
		"createdAt":    docstore.ServerTimestamp,
		"professional": prof,
	}, true)
}

// UpdateUserPhoto sets professional.photoUrl only.
func (s *Service) UpdateUserPhoto(ctx context.Context, uid, photoURL string) error {
	return s.store.Set(ctx, userDoc(uid), map[string]any{
		"professional": map[string]any{"photoUrl": photoURL},
	}, true)
}

// UpdateProfessionalProfile merges fields into the "professional" map.
func (s *Service) UpdateProfessionalProfile(ctx context.Context, uid string, fields map[string]any) error {
	prof := make(map[string]any, len(fields))
	for k, v := range fields {
		prof[k] = v
	}
	return s.store.Set(ctx, userDoc(uid), map[string]any{"professional": prof}, true)
}

var professionalKeys = map[string]struct{}{
	"type": {}, "fullName": {}, "specialty": {}, "cedula": {}, "phone": {}, "photoUrl": {},
}

func userFromDoc(doc *docstore.Document) *models.User {
	u := &models.User{
		ID:        doc.ID,
		Email:     doc.String("email"),
		Username:  doc.String("username"),
		Role:      models.ParseRole(doc.String("type")),
		CreatedAt: doc.Time("createdAt"),
	}
	if prof := doc.Map("professional"); prof != nil {
		p := &models.ProfessionalProfile{Extra: map[string]any{}}
		p.FullName, _ = prof["fullName"].(string)
		p.Specialty, _ = prof["specialty"].(string)
		p.LicenseID, _ = prof["cedula"].(string)
		p.Phone, _ = prof["phone"].(string)
		p.PhotoURL, _ = prof["photoUrl"].(string)
		for k, v := range prof {
			if _, known := professionalKeys[k]; !known {
				p.Extra[k] = v
			}
		}
		u.Professional = p
		if t, _ := prof["type"].(string); models.Role(t) == models.RoleProfessional {
			u.Role = models.RoleProfessional
		}
	}
	return u
}
