// Package config loads runtime configuration for the Mindful+ client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: an optional .env file (-env, falls back to ./.env when
//     present) loaded with godotenv, then the process environment.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-tz string          IANA timezone for day boundaries
//	-store string       document store DSN ("memory:" or postgres://...)
//	-session-db string  path of the client session cache
//	-notify string      base URL of the notification service
//	-log-level string   debug, info, warn or error
//
// # JSON schema
//
// Secrets are never read from JSON. Intervals accept "1s" or nanoseconds:
//
//	{
//	  "timezone": "America/Mexico_City",
//	  "docstore_dsn": "memory:",
//	  "session_db": "mindful-session.db",
//	  "uploader_url": "https://mindful-imagenes.onrender.com",
//	  "identity_base_url": "",
//	  "log_level": "info",
//	  "notify_interval": "1s",
//	  "notify_attempts": 60,
//	  "assets": {"bucket": "", "region": "", "endpoint": "", "public_base_url": ""}
//	}
//
// The identity API key and the admin service account come only from the
// environment. Every missing required variable is reported at once through
// *MissingEnvError.
package config
