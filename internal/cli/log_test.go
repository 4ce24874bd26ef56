package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/vitalsgrid/pkg/observability"
)

// runLogged executes the root command at level and returns the log output.
func runLogged(t *testing.T, level log.Level, args ...string) (string, error) {
	t.Helper()
	observability.Reset()
	t.Cleanup(observability.Reset)
	path := writeTestConfig(t)

	var stdout bytes.Buffer
	defer swapOut(&stdout)()

	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.SetLogLevel(level)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", path}, args...))
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return logs.String(), err
}

func TestFetchLogsProgress(t *testing.T) {
	tests := []struct {
		name       string
		level      log.Level
		want       []string
		wantNoneOf []string
	}{
		{
			name:       "info",
			level:      LogInfo,
			want:       []string{"Fetched 1W bundle", "elapsed="},
			wantNoneOf: []string{"fetch start", "fetch done"},
		},
		{
			name:  "verbose",
			level: LogDebug,
			want:  []string{"Fetched 1W bundle", "fetch start", "fetch done", "range=1W"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := runLogged(t, tt.level, "vitals", "fetch", "--range", "1W", "--json")
			if err != nil {
				t.Fatal(err)
			}
			for _, s := range tt.want {
				if !strings.Contains(logs, s) {
					t.Errorf("logs missing %q:\n%s", s, logs)
				}
			}
			for _, s := range tt.wantNoneOf {
				if strings.Contains(logs, s) {
					t.Errorf("logs contain %q at info level:\n%s", s, logs)
				}
			}
		})
	}
}

func TestAttachLoggerInstallsHooksWhenVerbose(t *testing.T) {
	tests := []struct {
		name      string
		level     log.Level
		wantHooks bool
	}{
		{"info", LogInfo, false},
		{"debug", LogDebug, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observability.Reset()
			t.Cleanup(observability.Reset)

			var buf bytes.Buffer
			c := New(&buf, tt.level)
			ctx := c.attachLogger(context.Background())
			if loggerFromContext(ctx) != c.Logger {
				t.Error("context does not carry the CLI logger")
			}

			_, installed := observability.Layout().(logHooks)
			if installed != tt.wantHooks {
				t.Fatalf("log hooks installed = %v, want %v", installed, tt.wantHooks)
			}
			observability.Layout().OnMutation("move", "chart-1", "rejected")
			if got := strings.Contains(buf.String(), "tile=chart-1"); got != tt.wantHooks {
				t.Errorf("mutation logged = %v, want %v: %q", got, tt.wantHooks, buf.String())
			}
		})
	}
}

func TestSetLogLevelSwitchesToDebug(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %q", buf.String())
	}
	c.SetLogLevel(LogDebug)
	c.Logger.Debug("cache hit", "kind", "vitals")
	if !strings.Contains(buf.String(), "kind=vitals") {
		t.Errorf("debug not logged after switch: %q", buf.String())
	}
}

func TestProgressDoneFormats(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, LogInfo))
	prog.done("Loaded %s from %s, %d tiles updated", "ALL", "memory", 3)
	out := buf.String()
	if !strings.Contains(out, "Loaded ALL from memory, 3 tiles updated") || !strings.Contains(out, "elapsed=") {
		t.Errorf("progress output = %q", out)
	}
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("bare context should yield log.Default()")
	}
}
