package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Not parallel: the package state is process-wide.
func TestTimer_LogsDuration(t *testing.T) {
	tmp := t.TempDir()
	if err := Initialize(tmp, Settings{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer func() {
		Apply(Settings{DebugMode: false, Level: "info"})
		CloseAll()
	}()

	timer := StartTimer(CategoryAgent, "retrieval fan-out")
	time.Sleep(5 * time.Millisecond)
	if elapsed := timer.Stop(); elapsed <= 0 {
		t.Errorf("elapsed = %v, want > 0", elapsed)
	}

	infoTimer := StartTimer(CategoryReport, "report synthesis")
	if elapsed := infoTimer.StopWithInfo(); elapsed < 0 {
		t.Errorf("elapsed = %v, want >= 0", elapsed)
	}

	CloseAll()

	logs, err := filepath.Glob(filepath.Join(tmp, "logs", "*_agent.log"))
	if err != nil || len(logs) != 1 {
		t.Fatalf("agent log files = %v, err = %v", logs, err)
	}
	data, err := os.ReadFile(logs[0])
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "retrieval fan-out completed in") {
		t.Errorf("log missing timer line: %q", string(data))
	}
}

func TestTimer_NoopWhenDisabled(t *testing.T) {
	Apply(Settings{DebugMode: false, Level: "info"})
	timer := StartTimer(CategoryAgent, "idle op")
	if elapsed := timer.Stop(); elapsed < 0 {
		t.Errorf("elapsed = %v, want >= 0", elapsed)
	}
}
