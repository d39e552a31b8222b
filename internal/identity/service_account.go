package identity

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const customTokenAudience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

// ServiceAccount holds the admin credential fields. PrivateKey may carry
// literal "\n" sequences as it does when stored in a single env line.
type ServiceAccount struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
	UniverseDomain          string `json:"universe_domain"`
}

// Signer is a service account whose key parsed successfully.
type Signer struct {
	account ServiceAccount
	key     *rsa.PrivateKey
	now     func() time.Time
}

// NewSigner restores newlines in the private key and parses it.
func NewSigner(sa ServiceAccount) (*Signer, error) {
	if sa.ClientEmail == "" {
		return nil, errors.New("service account: client_email is empty")
	}
	pem := strings.ReplaceAll(sa.PrivateKey, `\n`, "\n")
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("service account private key: %w", err)
	}
	sa.PrivateKey = pem
	return &Signer{account: sa, key: key, now: time.Now}, nil
}

func (s *Signer) ProjectID() string { return s.account.ProjectID }

type customClaims struct {
	jwt.RegisteredClaims
	UID    string         `json:"uid"`
	Claims map[string]any `json:"claims,omitempty"`
}

// CustomToken mints a one-hour RS256 token asserting uid, signed by the
// service account.
func (s *Signer) CustomToken(uid string, claims map[string]any) (string, error) {
	if uid == "" {
		return "", errors.New("custom token: uid is empty")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.account.ClientEmail,
			Subject:   s.account.ClientEmail,
			Audience:  jwt.ClaimStrings{customTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		UID:    uid,
		Claims: claims,
	})
	if s.account.PrivateKeyID != "" {
		token.Header["kid"] = s.account.PrivateKeyID
	}
	return token.SignedString(s.key)
}
