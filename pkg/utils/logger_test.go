package utils

import "testing"

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := NewLogger(debug)
		if err != nil {
			t.Fatalf("NewLogger(%t): %v", debug, err)
		}
		if logger == nil {
			t.Fatalf("NewLogger(%t) returned nil logger", debug)
		}
		core := logger.Core()
		if debug && !core.Enabled(-1) { // -1 = DebugLevel
			t.Error("debug logger should enable debug level")
		}
		if !debug && core.Enabled(-1) {
			t.Error("production logger should not enable debug level")
		}
	}
}
