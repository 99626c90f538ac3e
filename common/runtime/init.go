package runtime

import (
	"time"

	"github.com/explormate/explormate-chain/common/config"
	"github.com/explormate/explormate-chain/common/logging"
	"github.com/explormate/explormate-chain/common/version"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RunStartupSequence prepares logging and error reporting for a command.
func RunStartupSequence(conf *config.MainConfig) error {
	if err := logging.Setup(conf.General, nil); err != nil {
		return errors.Wrap(err, "setting up logging")
	}
	version.Print(true)
	return SetupSentry(conf.Sentry)
}

func SetupSentry(conf config.SentryConfig) error {
	if !conf.Enabled {
		return nil
	}
	logrus.Info("Setting up Sentry for error reporting")
	version.SetDefaults()
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         conf.Dsn,
		Environment: conf.Environment,
		Release:     version.Version,
		Debug:       conf.Debug,
	})
	return errors.Wrap(err, "initializing sentry")
}

// ReportError logs err and captures it in Sentry when Sentry is configured.
func ReportError(err error) {
	if err == nil {
		return
	}
	logrus.Error(err)
	if sentry.CurrentHub().Client() != nil {
		sentry.CaptureException(err)
	}
}

// Shutdown flushes anything buffered for Sentry.
func Shutdown() {
	if sentry.CurrentHub().Client() != nil {
		sentry.Flush(2 * time.Second)
	}
}
