// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/munidesk/internal/app/features/auditlog"
	authfeature "github.com/dalemusser/munidesk/internal/app/features/auth"
	companiesfeature "github.com/dalemusser/munidesk/internal/app/features/companies"
	healthfeature "github.com/dalemusser/munidesk/internal/app/features/health"
	notificationsfeature "github.com/dalemusser/munidesk/internal/app/features/notifications"
	reportsfeature "github.com/dalemusser/munidesk/internal/app/features/reports"
	usersfeature "github.com/dalemusser/munidesk/internal/app/features/users"
	"github.com/dalemusser/munidesk/internal/app/lifecycle"
	auditstore "github.com/dalemusser/munidesk/internal/app/store/audit"
	companystore "github.com/dalemusser/munidesk/internal/app/store/companies"
	notestore "github.com/dalemusser/munidesk/internal/app/store/notes"
	notificationstore "github.com/dalemusser/munidesk/internal/app/store/notifications"
	reportstore "github.com/dalemusser/munidesk/internal/app/store/reports"
	userstore "github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/auditlog"
	"github.com/dalemusser/munidesk/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. MuniDesk builds the stores and the
// report lifecycle engine, applies session middleware, and mounts the API
// feature routers: auth, users, reports, companies, notifications, and the
// audit log.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request so role
	// changes and disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	db := deps.MongoDatabase
	users := userstore.New(db)
	companies := companystore.New(db)
	reports := reportstore.New(db)
	notes := notestore.New(db)
	notifications := notificationstore.New(db)

	auditLog := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:   appCfg.AuditLogAuth,
		Report: appCfg.AuditLogReport,
		Admin:  appCfg.AuditLogAdmin,
	})

	engine := lifecycle.New(reports, users, companies, notes, notifications, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authfeature.MountRoutes(r, authfeature.NewHandler(users, sessionMgr, auditLog, logger))
	usersfeature.MountRoutes(r, sessionMgr, usersfeature.NewHandler(users, companies, reports, auditLog, logger))
	reportsfeature.MountRoutes(r, sessionMgr, reportsfeature.NewHandler(engine, reports, auditLog, logger))
	companiesfeature.MountRoutes(r, sessionMgr, companiesfeature.NewHandler(companies, users, reports, auditLog, logger))
	notificationsfeature.MountRoutes(r, sessionMgr, notificationsfeature.NewHandler(notifications, logger))
	auditlogfeature.MountRoutes(r, sessionMgr, auditlogfeature.NewHandler(auditstore.New(db), logger))

	return r, nil
}
