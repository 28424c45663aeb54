package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func useTempLogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	originalEnabled := std.enabled
	SetDir(dir)
	std.enabled = true
	t.Cleanup(func() {
		SetDir("")
		std.enabled = originalEnabled
		std.current = nil
	})
	return dir
}

func TestLogSession(t *testing.T) {
	useTempLogDir(t)

	if err := StartSession("search", []string{"dune"}); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if std.current == nil {
		t.Fatal("StartSession() should have created a session")
	}

	meta := std.current.Metadata
	if diff := cmp.Diff([]string{"search", "dune"}, meta.CommandArgs); diff != "" {
		t.Errorf("CommandArgs mismatch (-want +got):\n%s", diff)
	}
	if meta.SessionID == "" {
		t.Error("SessionID should be set")
	}
}

func TestLogOperationsAndEndSession(t *testing.T) {
	dir := useTempLogDir(t)

	if err := StartSession("browse", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	LogWatchlist(OpWatchlistAdd, 603, "The Matrix", nil)
	LogSearch("matrix", 1, nil)
	LogFetch("popular-movies", 2, errors.New("Invalid API key"))

	if got := len(std.current.Operations); got != 3 {
		t.Fatalf("operations = %d, want 3", got)
	}

	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}
	if std.current != nil {
		t.Error("EndSession() should clear the current session")
	}

	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 1 {
		t.Fatalf("journal files = %d, want 1", len(files))
	}

	session, err := ReadSession(files[0])
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if session.Metadata.TotalOps != 3 || session.Metadata.SuccessfulOps != 2 || session.Metadata.FailedOps != 1 {
		t.Errorf("stats = %+v, want 3 total / 2 ok / 1 failed", session.Metadata)
	}

	first := session.Operations[0]
	if first.Type != OpWatchlistAdd || first.Subject != "The Matrix" || first.Detail != "id 603" {
		t.Errorf("first operation = %+v", first)
	}
	if last := session.Operations[2]; last.Success || last.Error != "Invalid API key" {
		t.Errorf("failed operation = %+v", last)
	}
}

func TestEndSessionSkipsEmptySessions(t *testing.T) {
	dir := useTempLogDir(t)

	if err := StartSession("list", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	if err := EndSession(); err != nil {
		t.Fatalf("EndSession() failed: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(files) != 0 {
		t.Errorf("journal files = %d, want 0", len(files))
	}
}

func TestLoggingDisabled(t *testing.T) {
	useTempLogDir(t)
	std.enabled = false

	if err := StartSession("browse", nil); err != nil {
		t.Fatalf("StartSession() failed: %v", err)
	}
	LogSearch("ignored", 1, nil)
	if std.current != nil {
		t.Error("no session should be created while logging is disabled")
	}
}

func TestReadSessionsNewestFirst(t *testing.T) {
	dir := useTempLogDir(t)

	base := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	for i, cmd := range []string{"list", "search", "watchlist"} {
		session := &LogSession{
			Metadata: SessionMetadata{
				CommandArgs: []string{cmd},
				Timestamp:   base.Add(time.Duration(i) * time.Minute),
				SessionID:   cmd,
			},
			Operations: []OperationLog{{Type: OpSearch, Success: true}},
		}
		if err := writeSession(dir, session); err != nil {
			t.Fatalf("writeSession() failed: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "zzz-corrupt.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	sessions, err := ReadSessions(0)
	if err != nil {
		t.Fatalf("ReadSessions() failed: %v", err)
	}
	var ids []string
	for _, s := range sessions {
		ids = append(ids, s.Metadata.SessionID)
	}
	if diff := cmp.Diff([]string{"watchlist", "search", "list"}, ids); diff != "" {
		t.Errorf("session order mismatch (-want +got):\n%s", diff)
	}

	summaries, err := GetSessionSummaries(2)
	if err != nil {
		t.Fatalf("GetSessionSummaries() failed: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Session.Metadata.SessionID != "watchlist" {
		t.Errorf("summaries = %+v", summaries)
	}
	if summaries[0].Icon != "❤" {
		t.Errorf("Icon = %q, want ❤", summaries[0].Icon)
	}
}

func TestReadSessionsMissingDir(t *testing.T) {
	useTempLogDir(t)
	SetDir(filepath.Join(t.TempDir(), "missing"))

	sessions, err := ReadSessions(5)
	if err != nil {
		t.Fatalf("ReadSessions() failed: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(sessions))
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := useTempLogDir(t)

	oldFile := filepath.Join(dir, "old.json")
	newFile := filepath.Join(dir, "new.json")
	for _, f := range []string{oldFile, newFile} {
		if err := os.WriteFile(f, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatal(err)
	}

	Initialize(true, 30)

	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old log should have been removed")
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Error("recent log should be kept")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{48 * time.Hour, "2 days ago"},
		{30 * 24 * time.Hour, "May 11, 2024"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	SetDiagnosticsOutput(&buf)
	t.Cleanup(func() { _ = CloseDiagnostics() })

	Warnf("retry %d", 2)
	Infof("loaded %s", "config")

	out := buf.String()
	if !strings.Contains(out, "WARN retry 2") || !strings.Contains(out, "INFO loaded config") {
		t.Errorf("diagnostics output = %q", out)
	}
}

func TestSetupDiagnosticsWritesFile(t *testing.T) {
	dir := t.TempDir()
	SetupDiagnostics(dir)
	Warnf("hello")
	if err := CloseDiagnostics(); err != nil {
		t.Fatalf("CloseDiagnostics() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "marquee.log"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "WARN hello") {
		t.Errorf("log file = %q", data)
	}
}
