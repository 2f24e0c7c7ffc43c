package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestFileLogger_WritesToRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	closer, logger, err := FileLogger(logrus.InfoLevel, FileOptions{Path: path})
	require.NoError(t, err)

	logger.WithField("component", "test").Info("hello")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"msg":"hello"`)
	require.Contains(t, string(raw), `"component":"test"`)
}

func TestFileLogger_NoPath(t *testing.T) {
	closer, logger, err := FileLogger(logrus.WarnLevel, FileOptions{})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.Equal(t, logrus.WarnLevel, logger.GetLevel())
}
