// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request body limits. AppConfig is
// everything specific to MuniDesk: the MongoDB connection, session
// cookies, audit logging policy, and the notification dispatcher.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: munidesk-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Session lifetime

	// Audit logging policy per event category:
	// "all" (MongoDB + zap), "db", "log", or "off".
	AuditLogAuth   string
	AuditLogReport string
	AuditLogAdmin  string

	// Notification dispatcher configuration
	NotifyInterval  time.Duration // How often pending notifications are drained
	NotifyBatchSize int64         // Max notifications delivered per drain pass

	// Notification email configuration. A blank SMTPHost disables email;
	// deliveries are logged instead.
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	SMTPFrom      string
	SiteName      string // Site name shown in notification email
	PublicBaseURL string // Base URL for report links in email
}
