package diaglog

import (
	"fmt"
	"testing"
)

func TestLogBounded(t *testing.T) {
	l := New(3, nil)
	for i := 0; i < 5; i++ {
		l.Error(fmt.Sprintf("event %d", i))
	}
	got := l.Recent()
	if len(got) != 3 {
		t.Fatalf("Recent() has %d entries, want 3", len(got))
	}
	if got[0].Message != "event 2" || got[2].Message != "event 4" {
		t.Errorf("Recent() kept wrong window: %v", got)
	}
}

func TestLogLevels(t *testing.T) {
	l := New(10, nil)
	l.Info("fine")
	l.Error("broken")
	got := l.Recent()
	if len(got) != 2 || got[0].Level != LevelInfo || got[1].Level != LevelError {
		t.Errorf("Recent() = %v", got)
	}
}
