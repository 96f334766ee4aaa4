// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	notificationstore "github.com/dalemusser/munidesk/internal/app/store/notifications"
	userstore "github.com/dalemusser/munidesk/internal/app/store/users"
	"github.com/dalemusser/munidesk/internal/app/system/mailer"
	"github.com/dalemusser/munidesk/internal/app/system/timeouts"
	"github.com/dalemusser/munidesk/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// notifyDispatch is started here and stopped in Shutdown.
var notifyDispatch *workers.NotifyDispatch

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. MuniDesk
// applies any timeout overrides from the environment and starts the
// background notification dispatcher.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("applied timeout overrides from environment", zap.Int("count", n))
	}

	notifyDispatch = workers.NewNotifyDispatch(
		notificationstore.New(deps.MongoDatabase),
		buildDelivery(appCfg, deps, logger),
		logger,
		appCfg.NotifyInterval,
		appCfg.NotifyBatchSize,
	)
	notifyDispatch.Start()

	return nil
}

// buildDelivery picks the notification transport: email through the
// configured SMTP relay, or log-only when no relay is configured.
func buildDelivery(appCfg AppConfig, deps DBDeps, logger *zap.Logger) workers.Delivery {
	if appCfg.SMTPHost == "" {
		logger.Info("no SMTP relay configured, notifications are logged only")
		return &workers.LogDelivery{Log: logger}
	}

	logger.Info("notification email delivery enabled",
		zap.String("smtp_host", appCfg.SMTPHost),
		zap.Int("smtp_port", appCfg.SMTPPort))
	return &workers.EmailDelivery{
		Users: userstore.New(deps.MongoDatabase),
		Sender: mailer.SMTPSender{
			Host:     appCfg.SMTPHost,
			Port:     appCfg.SMTPPort,
			Username: appCfg.SMTPUsername,
			Password: appCfg.SMTPPassword,
			From:     appCfg.SMTPFrom,
		},
		SiteName: appCfg.SiteName,
		BaseURL:  appCfg.PublicBaseURL,
		Log:      logger,
	}
}
