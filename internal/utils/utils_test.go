package utils

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLogLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"warning", logrus.WarnLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"fatal", logrus.FatalLevel},
	}
	for _, tc := range tests {
		if err := SetLogLevel(tc.in); err != nil {
			t.Fatalf("SetLogLevel(%q) returned %v", tc.in, err)
		}
		if Log.GetLevel() != tc.want {
			t.Fatalf("SetLogLevel(%q): want %v, got %v", tc.in, tc.want, Log.GetLevel())
		}
	}

	if err := SetLogLevel("trace"); err == nil {
		t.Fatalf("expected an error for an unsupported level")
	}
}
