package logger

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLevels(t *testing.T) {
	testCases := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{" error ", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"chatty", logrus.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			Init(tc.level)
			assert.Equal(t, tc.expected, GetLogger().GetLevel())
		})
	}
}

func TestStructuredOutput(t *testing.T) {
	Init("info")
	var buf bytes.Buffer
	SetOutput(&buf)

	WithField("username", "octocat").Info("fetched profile")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetched profile", entry["msg"])
	assert.Equal(t, "octocat", entry["username"])
	assert.Equal(t, "info", entry["level"])
}

func TestConcurrentUseWhileReinitializing(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Init("error")
		}()
		go func() {
			defer wg.Done()
			entry := WithField("worker", i)
			assert.NotNil(t, entry)
			entry.Debug("ignored below error level")
		}()
	}
	wg.Wait()

	require.NotNil(t, GetLogger())
	assert.Equal(t, logrus.ErrorLevel, GetLogger().GetLevel())
}
