package obslog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoSuppressedUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Info("registry build started", F("modules", 3))

	assert.Empty(t, buf.String())
}

func TestInfoPrintsWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Info("registry build started", F("modules", 3))

	line := buf.String()
	assert.Contains(t, line, "level=info")
	assert.Contains(t, line, `msg="registry build started"`)
	assert.Contains(t, line, "modules=3")
}

func TestWarnAndErrorAlwaysPrint(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Warn("duplicate provider", F("type", "NetworkService"))
	logger.Error("pipeline aborted", F("reason", "validation failed"))

	out := buf.String()
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "level=error")
}

func TestStageTimerLogsStartAndCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	done := logger.StageTimer("scope.build")
	done(F("roots", 2))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `msg="stage started"`)
	assert.Contains(t, lines[0], "stage=scope.build")
	assert.Contains(t, lines[1], `msg="stage completed"`)
	assert.Contains(t, lines[1], "duration=")
	assert.Contains(t, lines[1], "roots=2")
}

func TestRecoverTurnsPanicIntoError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	var err error
	func() {
		defer logger.Recover(&err)
		panic("emitter wrote past the last root")
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "emitter wrote past the last root")
	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "recovered from panic")
}

func TestRecoverIsNoopWithoutPanic(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	var err error
	func() {
		defer logger.Recover(&err)
	}()

	assert.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestNewDefaultsNilWriterToStderr(t *testing.T) {
	logger := New(nil, false)
	require.NotNil(t, logger)
	assert.NotNil(t, logger.out)
}
