package logging

import (
	"io"
	"os"
	"path"
	"time"

	"github.com/explormate/explormate-chain/common/config"
	"github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05.000 Z07:00"

type utcFormatter struct {
	logrus.Formatter
}

func (f utcFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Time = entry.Time.UTC()
	return f.Formatter.Format(entry)
}

// Setup configures the standard logrus logger. Console output goes to out (stdout
// when nil); a rotated copy is kept under conf.LogDirectory unless it is "-" or empty.
func Setup(conf config.GeneralConfig, out io.Writer) error {
	level := conf.LogLevel
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)

	formatter := newFormatter(conf.JsonLogs, conf.LogColors)
	logrus.SetFormatter(formatter)
	if out == nil {
		out = os.Stdout
	}
	logrus.SetOutput(out)

	dir := conf.LogDirectory
	if dir == "" || dir == "-" {
		return nil
	}
	_ = os.MkdirAll(dir, os.ModePerm)

	logFile := path.Join(dir, "explormate.log")
	writer, err := rotatelogs.New(
		logFile+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithMaxAge((24*time.Hour)*14),  // keep for 14 days
		rotatelogs.WithRotationTime(24*time.Hour), // rotate every 24 hours
	)
	if err != nil {
		return err
	}

	logrus.AddHook(lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, formatter))

	return nil
}

func newFormatter(json bool, colors bool) logrus.Formatter {
	if json {
		return &utcFormatter{&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
		}}
	}
	return &utcFormatter{&logrus.TextFormatter{
		TimestampFormat:  timestampFormat,
		FullTimestamp:    true,
		ForceColors:      colors,
		DisableColors:    !colors,
		QuoteEmptyFields: true,
	}}
}

// ForComponent returns an entry tagged with the component that is logging.
func ForComponent(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
