package logging

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Development(t *testing.T) {
	logger, err := New("development")
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("test message")
}

func TestNew_Production(t *testing.T) {
	logger, err := New("production")
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.Info("test message")
	assert.NoError(t, logger.Sync())
}

func TestNew_UnrecognizedEnvDefaultsToProduction(t *testing.T) {
	logger, err := New("not-a-real-env")
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNew_ReadsAppEnvWhenEnvArgEmpty(t *testing.T) {
	os.Setenv("APP_ENV", "development")
	defer os.Unsetenv("APP_ENV")

	logger, err := New("")
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNew_ConcurrentUseIsSafe(t *testing.T) {
	logger, err := New("production")
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			logger.Sugar().Infof("message %d", n)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
