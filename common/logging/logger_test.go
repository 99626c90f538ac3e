package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/explormate/explormate-chain/common/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetLogger(t *testing.T) {
	t.Cleanup(func() {
		logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetOutput(os.Stdout)
	})
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Setup(config.GeneralConfig{LogLevel: "chatty"}, nil))
}

func TestSetupDefaultsToInfo(t *testing.T) {
	resetLogger(t)
	require.NoError(t, Setup(config.GeneralConfig{}, nil))
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
}

func TestUtcFormatter(t *testing.T) {
	f := utcFormatter{&logrus.JSONFormatter{TimestampFormat: time.RFC3339}}
	loc := time.FixedZone("WITA", 8*60*60)
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 5, 1, 9, 0, 0, 0, loc),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Data:    logrus.Fields{},
	}

	b, err := f.Format(entry)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(b, []byte(`"time":"2024-05-01T01:00:00Z"`)), string(b))
}

func TestJsonLogsWithComponent(t *testing.T) {
	resetLogger(t)
	buf := &bytes.Buffer{}
	require.NoError(t, Setup(config.GeneralConfig{JsonLogs: true, LogLevel: "debug", LogDirectory: "-"}, buf))

	ForComponent("pinata").Debug("pinned")

	line := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pinata", line["component"])
	assert.Equal(t, "pinned", line["msg"])
	assert.Equal(t, "debug", line["level"])
}

func TestSetupCreatesLogDirectory(t *testing.T) {
	resetLogger(t)
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Setup(config.GeneralConfig{LogDirectory: dir, JsonLogs: true}, &bytes.Buffer{}))

	logrus.Info("written to disk")

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
