package inspector

import (
	"github.com/evalphobia/logrus_sentry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"
)

// verbosityLevels maps the --log.verbosity integer onto logrus levels.
var verbosityLevels = []logrus.Level{
	logrus.FatalLevel,
	logrus.ErrorLevel,
	logrus.WarnLevel,
	logrus.InfoLevel,
	logrus.DebugLevel,
	logrus.TraceLevel,
}

// setupLogging configures the global logrus logger from CLI flags and, when a
// DSN is given, attaches a Sentry hook for error-and-above events.
func setupLogging(ctx *cli.Context) error {
	switch format := ctx.String("log.format"); format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors: ctx.Bool("log.color"),
		})
	default:
		return errors.Errorf("unknown log format %q", format)
	}

	v := ctx.Int("log.verbosity")
	if v < 0 || v >= len(verbosityLevels) {
		return errors.Errorf("log verbosity %d outside [0, %d]", v, len(verbosityLevels)-1)
	}
	logrus.SetLevel(verbosityLevels[v])

	if dsn := ctx.String("sentry.dsn"); dsn != "" {
		hook, err := logrus_sentry.NewSentryHook(dsn, []logrus.Level{
			logrus.PanicLevel,
			logrus.FatalLevel,
			logrus.ErrorLevel,
		})
		if err != nil {
			return errors.Wrap(err, "sentry hook")
		}
		logrus.AddHook(hook)
	}
	return nil
}
