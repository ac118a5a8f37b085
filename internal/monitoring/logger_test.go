package monitoring

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("insert %s", "bb_ho.c1b1_00")
	assert.True(t, called, "custom logger was not called")

	called = false
	SetLogger(nil)
	Logf("insert %s", "bb_ho.c1b1_00")
	assert.False(t, called, "no-op logger should not reach the previous logger")
}

func TestWarn(t *testing.T) {
	defer SetWarnLogger(slog.Default())

	var buf bytes.Buffer
	SetWarnLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	ResetWarningCount()

	Warn("reference systems are not parallel", "element", "bb_lr.l5b1_02", "deviation", 1e-6)

	assert.Equal(t, int64(1), WarningCount())
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "element=bb_lr.l5b1_02")

	SetWarnLogger(nil)
	Warn("discarded")
	assert.Equal(t, int64(2), WarningCount())
}
