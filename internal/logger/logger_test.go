package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "debug", input: "debug", want: "debug"},
		{name: "upper case and spaces", input: "  WARN ", want: "warn"},
		{name: "unknown falls back to info", input: "verbose", want: "info"},
		{name: "empty falls back to info", input: "", want: "info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := New(tc.input)

			assert.Equal(t, tc.want, l.Level())
		})
	}
}

func TestNopAndWith(t *testing.T) {
	l := Nop().With("run", "abc")

	assert.NotPanics(t, func() {
		l.Info("processed %s", "X1")
		l.Debug("ignored")
		l.Error("failed: %v", assert.AnError)
	})
}
