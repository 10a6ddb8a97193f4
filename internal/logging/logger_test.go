package logging

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() {
		SetOutput(nil, nil)
		SetVerbose(false)
	})
	return &out, &errOut
}

func TestLevels(t *testing.T) {
	out, errOut := captureOutput(t)

	Info("daemon up")
	Warn("slow notifier")
	Phase("working")
	Error("boom")

	assert.Contains(t, out.String(), "[INFO] daemon up")
	assert.Contains(t, out.String(), "[WARN] slow notifier")
	assert.Contains(t, out.String(), "[PHASE] working")
	assert.NotContains(t, out.String(), "boom")
	assert.Contains(t, errOut.String(), "[ERROR] boom")
}

func TestDebugRequiresVerbose(t *testing.T) {
	out, _ := captureOutput(t)

	Debug("hidden")
	assert.Empty(t, out.String())

	SetVerbose(true)
	Debug("shown")
	assert.Contains(t, out.String(), "[DEBUG] shown")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds uint64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{90, "1m 30s"},
		{1500, "25m 0s"},
		{3661, "1h 1m 1s"},
		{7200, "2h 0m 0s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}
