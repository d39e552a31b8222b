package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mindfulplus/mindful/internal/flagx"
)

var errInvalidNotify = errors.New("notify interval and attempts must be positive")

// MissingEnvError lists every required variable that was not set.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return "missing environment variables: " + strings.Join(e.Names, ", ")
}

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

// loadDotEnv is a seam for tests.
var loadDotEnv = godotenv.Load

const defaultEnvFile = ".env"

type envVar struct {
	name string
	dst  *string
}

func requiredVars(cfg *Config) []envVar {
	sa := &cfg.ServiceAccount
	return []envVar{
		{"FIREBASE_WEB_API_KEY", &cfg.WebAPIKey},
		{"FIREBASE_PROJECT_ID", &cfg.ProjectID},
		{"FIREBASE_ADMIN_TYPE", &sa.Type},
		{"FIREBASE_ADMIN_PROJECT_ID", &sa.ProjectID},
		{"FIREBASE_ADMIN_PRIVATE_KEY_ID", &sa.PrivateKeyID},
		{"FIREBASE_ADMIN_PRIVATE_KEY", &sa.PrivateKey},
		{"FIREBASE_ADMIN_CLIENT_EMAIL", &sa.ClientEmail},
		{"FIREBASE_ADMIN_CLIENT_ID", &sa.ClientID},
		{"FIREBASE_ADMIN_AUTH_URI", &sa.AuthURI},
		{"FIREBASE_ADMIN_TOKEN_URI", &sa.TokenURI},
		{"FIREBASE_ADMIN_AUTH_PROVIDER_X509_CERT_URL", &sa.AuthProviderX509CertURL},
		{"FIREBASE_ADMIN_CLIENT_X509_CERT_URL", &sa.ClientX509CertURL},
		{"FIREBASE_ADMIN_UNIVERSE_DOMAIN", &sa.UniverseDomain},
	}
}

func optionalVars(cfg *Config) []envVar {
	return []envVar{
		{"ASSETS_S3_BUCKET", &cfg.Assets.Bucket},
		{"ASSETS_S3_REGION", &cfg.Assets.Region},
		{"ASSETS_S3_ENDPOINT", &cfg.Assets.Endpoint},
		{"ASSETS_S3_ACCESS_KEY", &cfg.Assets.AccessKey},
		{"ASSETS_S3_SECRET_KEY", &cfg.Assets.SecretKey},
		{"ASSETS_PUBLIC_BASE_URL", &cfg.Assets.PublicBaseURL},
		{"UPLOADER_URL", &cfg.UploaderURL},
		{"MINDFUL_TIMEZONE", &cfg.Timezone},
		{"DOCSTORE_DSN", &cfg.DocstoreDSN},
		{"SESSION_DB", &cfg.SessionDB},
		{"SESSION_SECRET", &cfg.SessionSecret},
		{"IDENTITY_BASE_URL", &cfg.IdentityBaseURL},
		{"LOG_LEVEL", &cfg.LogLevel},
	}
}

// parseEnv loads the .env file (variables already set in the process win)
// and copies the environment into cfg. An explicit -env file must exist;
// the default ./.env is optional.
func parseEnv(cfg *Config, args []string) error {
	path := flagx.EnvFileFlags(args)
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	if err := loadDotEnv(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	var missing []string
	for _, v := range requiredVars(cfg) {
		value, ok := lookupEnv(v.name)
		if !ok || value == "" {
			missing = append(missing, v.name)
			continue
		}
		*v.dst = value
	}
	for _, v := range optionalVars(cfg) {
		if value, ok := lookupEnv(v.name); ok && value != "" {
			*v.dst = value
		}
	}
	if len(missing) > 0 {
		return &MissingEnvError{Names: missing}
	}
	return nil
}
