package logger

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	ctx := context.Background()
	entry := GetLogger(ctx)
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	ctx := context.Background()
	custom := logrus.NewEntry(logrus.New()).WithField("component", "index")

	ctx = WithLogger(ctx, custom)
	got := GetLogger(ctx)

	require.NotNil(t, got)
	assert.Equal(t, "index", got.Data["component"])
}

func TestSetLogLevel(t *testing.T) {
	require.NoError(t, SetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())

	require.NoError(t, SetLogLevel("info"))
	assert.Equal(t, logrus.InfoLevel, L.Logger.GetLevel())

	assert.Error(t, SetLogLevel("not-a-level"))
}

func TestJSONFormatFieldNames(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	SetLogFormat("json")
	defer SetLogFormat("fmt")

	L.Info("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"logLevel":"info"`)
}

func TestInit(t *testing.T) {
	require.NoError(t, Init("warn", "fmt"))
	assert.Equal(t, logrus.WarnLevel, L.Logger.GetLevel())
	require.NoError(t, Init("info", "fmt"))
}
