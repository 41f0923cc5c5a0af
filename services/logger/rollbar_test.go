package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/escola/core"
)

func TestRollbarLogger(t *testing.T) {
	buf := new(bytes.Buffer)
	logger := NewRollbarLogger(log.New(buf, "ADMIN : ", 0), &core.Config{Env: "TEST", Build: "test"})

	logger.Info("import started", map[string]interface{}{"run_id": "abc"})
	logger.Warn("skipping unknown tables [logs]")
	logger.Error("row 2: bad value", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.True(t, len(lines) >= 4, "got %q", lines)
	assert.Equal(t, "ADMIN : INFO: import started", lines[0])
	assert.Equal(t, "ADMIN : WARN: skipping unknown tables [logs]", lines[1])
	assert.Equal(t, "ADMIN : ERROR: row 2: bad value", lines[2])
	assert.Equal(t, "ADMIN :   boom", lines[3]) // followed by the stack trace
}
