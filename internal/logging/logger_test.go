package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("ERROR"))
	assert.Equal(t, logrus.FatalLevel, GetLevel("fatal"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("info"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("trace"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warning"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("unknown"))
}

func TestSetup_WritesToRotatingFile(t *testing.T) {
	origOut := logrus.StandardLogger().Out
	origLevel := logrus.GetLevel()
	origFormatter := logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetOutput(origOut)
		logrus.SetLevel(origLevel)
		logrus.SetFormatter(origFormatter)
	})

	logPath := filepath.Join(t.TempDir(), "protocol-engine")
	entry := Setup(LoggerSetupParams{
		ServiceName:   "protocol-engine",
		LogFileName:   logPath,
		LogLevel:      "info",
		LogFormatJSON: true,
		Environment:   "test",
	})
	require.NotNil(t, entry)
	assert.Equal(t, "protocol-engine", entry.Data["service"])
	assert.Equal(t, "test", entry.Data["env"])
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	entry.WithField("state", "received").Info("hello")
	entry.Debug("dropped")

	content, err := os.ReadFile(logPath + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(content), `"state":"received"`)
	assert.Contains(t, string(content), `"msg":"hello"`)
	assert.NotContains(t, string(content), "dropped")
}

func TestSentryHook_Levels(t *testing.T) {
	levels := []logrus.Level{logrus.ErrorLevel}
	hook := NewSentryHook(levels)
	assert.Equal(t, levels, hook.Levels())

	// without sentry.Init the hub has no client and Fire is a no-op
	entry := logrus.WithField("k", "v").WithField(logrus.ErrorKey, assert.AnError)
	entry.Level = logrus.ErrorLevel
	entry.Message = "store reload failed"
	require.NoError(t, hook.Fire(entry))
	assert.Equal(t, "fatal", string(sentryLevel(logrus.PanicLevel)))
	assert.Equal(t, "warning", string(sentryLevel(logrus.WarnLevel)))
}
