// Package log keeps the per-run session journal behind `marquee history` and
// the rotating diagnostics file.
package log

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OperationType string

const (
	OpWatchlistAdd    OperationType = "watchlist_add"
	OpWatchlistRemove OperationType = "watchlist_remove"
	OpSearch          OperationType = "search"
	OpFetch           OperationType = "fetch"
)

// OperationLog is one user visible action.
type OperationLog struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Type      OperationType `json:"type"`
	Subject   string        `json:"subject"`
	Detail    string        `json:"detail,omitempty"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

// LogSession is the journal file for one invocation.
type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// tally fills the operation counters.
func (s *LogSession) tally() {
	m := &s.Metadata
	m.TotalOps = len(s.Operations)
	m.SuccessfulOps, m.FailedOps = 0, 0
	for _, op := range s.Operations {
		if op.Success {
			m.SuccessfulOps++
		} else {
			m.FailedOps++
		}
	}
}

// fileName sorts lexically in start order.
func (s *LogSession) fileName() string {
	ts := s.Metadata.Timestamp
	return fmt.Sprintf("%s.%03d.json", ts.Format("2006-01-02_150405"), ts.Nanosecond()/int(time.Millisecond))
}

// journal records the running session. One per process.
type journal struct {
	mu      sync.Mutex
	enabled bool
	dir     string // empty means ~/.marquee/logs
	current *LogSession
}

var std = &journal{enabled: true}

func (j *journal) location() (string, error) {
	if j.dir != "" {
		return j.dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".marquee", "logs"), nil
}

// SetDir overrides the directory session journals are written to. An empty
// dir restores the default under the user's home directory.
func SetDir(dir string) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.dir = dir
}

// Dir returns the journal directory.
func Dir() (string, error) {
	std.mu.Lock()
	defer std.mu.Unlock()
	return std.location()
}

// Initialize turns journaling on or off and, when on, deletes journal files
// older than retentionDays. Zero keeps everything.
func Initialize(enabled bool, retentionDays int) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.enabled = enabled
	if !enabled || retentionDays <= 0 {
		return
	}
	dir, err := std.location()
	if err == nil {
		err = prune(dir, time.Now().AddDate(0, 0, -retentionDays))
	}
	if err != nil {
		Warnf("failed to clean up old logs: %v", err)
	}
}

// StartSession begins recording for command. Any unsaved session is dropped.
func StartSession(command string, args []string) error {
	std.mu.Lock()
	defer std.mu.Unlock()
	if !std.enabled {
		return nil
	}
	std.current = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			Timestamp:   time.Now(),
			SessionID:   uuid.NewString(),
		},
		Operations: []OperationLog{},
	}
	return nil
}

// EndSession saves the current session to disk. Sessions without operations
// are discarded.
func EndSession() error {
	std.mu.Lock()
	defer std.mu.Unlock()

	session := std.current
	std.current = nil
	if !std.enabled || session == nil || len(session.Operations) == 0 {
		return nil
	}
	session.tally()

	dir, err := std.location()
	if err != nil {
		return err
	}
	return writeSession(dir, session)
}

// LogWatchlist records a watchlist add or remove.
func LogWatchlist(opType OperationType, id int, title string, err error) {
	LogOperation(opType, title, "id "+strconv.Itoa(id), err)
}

// LogSearch records a search request.
func LogSearch(query string, page int, err error) {
	LogOperation(OpSearch, query, fmt.Sprintf("page %d", page), err)
}

// LogFetch records a category fetch.
func LogFetch(kind string, page int, err error) {
	LogOperation(OpFetch, kind, fmt.Sprintf("page %d", page), err)
}

// LogOperation appends to the running session. Without one it does nothing.
func LogOperation(opType OperationType, subject, detail string, err error) {
	std.mu.Lock()
	defer std.mu.Unlock()
	s := std.current
	if !std.enabled || s == nil {
		return
	}

	op := OperationLog{
		ID:        s.Metadata.SessionID + "_" + strconv.Itoa(len(s.Operations)),
		Timestamp: time.Now(),
		Type:      opType,
		Subject:   subject,
		Detail:    detail,
		Success:   err == nil,
	}
	if err != nil {
		op.Error = err.Error()
	}
	s.Operations = append(s.Operations, op)
}

func writeSession(dir string, session *LogSession) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, session.fileName()), data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

// ReadSession loads one journal file.
func ReadSession(path string) (*LogSession, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}
	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", filepath.Base(path), err)
	}
	return &session, nil
}

// ReadSessions returns up to limit sessions, newest first, skipping
// unreadable files. A limit of zero returns all of them.
func ReadSessions(limit int) ([]*LogSession, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, err
	}
	sessions := make([]*LogSession, 0, len(files))
	for _, file := range files {
		if limit > 0 && len(sessions) == limit {
			break
		}
		if session, err := ReadSession(file); err == nil {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

// sessionFiles lists journal files newest first.
func sessionFiles() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	files, err := journalFiles(dir)
	if err != nil {
		return nil, err
	}
	slices.Reverse(files)
	return files, nil
}

// journalFiles lists *.json files in dir in name order. A missing dir is
// empty.
func journalFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	slices.Sort(files)
	return files, nil
}

// prune removes journal files last modified before cutoff.
func prune(dir string, cutoff time.Time) error {
	files, err := journalFiles(dir)
	if err != nil {
		return err
	}
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			Warnf("failed to remove old log file %s: %v", file, err)
		}
	}
	return nil
}
