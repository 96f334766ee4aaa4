// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for MuniDesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: MUNIDESK_MONGO_URI, MUNIDESK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "munidesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "munidesk-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "168h", Desc: "Session lifetime (e.g., 24h, 168h)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_report", Default: "all", Desc: "Report lifecycle event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Notification dispatcher settings
	{Name: "notify_interval", Default: "30s", Desc: "How often pending notifications are dispatched (e.g., 30s, 1m)"},
	{Name: "notify_batch_size", Default: 100, Desc: "Max notifications delivered per dispatch pass"},

	// Notification email settings. Leaving smtp_host blank keeps email
	// delivery off; notifications are then logged instead of sent.
	{Name: "smtp_host", Default: "", Desc: "SMTP relay host (blank disables email delivery)"},
	{Name: "smtp_port", Default: 587, Desc: "SMTP relay port"},
	{Name: "smtp_username", Default: "", Desc: "SMTP AUTH username (blank for unauthenticated relays)"},
	{Name: "smtp_password", Default: "", Desc: "SMTP AUTH password"},
	{Name: "smtp_from", Default: "noreply@munidesk.local", Desc: "From address for notification email"},
	{Name: "site_name", Default: "MuniDesk", Desc: "Site name used in notification email"},
	{Name: "public_base_url", Default: "http://localhost:8080", Desc: "Public base URL used to build report links in email"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MUNIDESK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MUNIDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 7*24*time.Hour),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogReport: appValues.String("audit_log_report"),
		AuditLogAdmin:  appValues.String("audit_log_admin"),

		NotifyInterval:  appValues.Duration("notify_interval", 30*time.Second),
		NotifyBatchSize: int64(appValues.Int("notify_batch_size")),

		SMTPHost:      appValues.String("smtp_host"),
		SMTPPort:      appValues.Int("smtp_port"),
		SMTPUsername:  appValues.String("smtp_username"),
		SMTPPassword:  appValues.String("smtp_password"),
		SMTPFrom:      appValues.String("smtp_from"),
		SiteName:      appValues.String("site_name"),
		PublicBaseURL: appValues.String("public_base_url"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// MuniDesk validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.NotifyInterval <= 0 {
		return fmt.Errorf("notify_interval must be positive, got %s", appCfg.NotifyInterval)
	}
	if appCfg.NotifyBatchSize <= 0 {
		return fmt.Errorf("notify_batch_size must be positive, got %d", appCfg.NotifyBatchSize)
	}

	return nil
}
