// internal/logger/buffer.go
package logger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time              `json:"time"`
	Level     string                 `json:"level"`
	Logger    string                 `json:"logger,omitempty"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Pretty returns the user-facing form of the message.
func (e LogEntry) Pretty() string {
	return FormatMessage(e.Message, e.Fields)
}

// LogBuffer keeps the latest entries for the TUI log panel. Entries pushed out
// of the ring are appended to an optional spill file. It is an io.Writer that
// accepts zap JSON lines.
type LogBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool
	spillFile    *os.File
	spillWriter  *bufio.Writer

	// Stats
	totalEntries   uint64
	spilledEntries uint64
}

// NewLogBuffer creates a buffer of maxSize entries. Empty spillFilePath keeps
// everything in memory.
func NewLogBuffer(maxSize int, spillFilePath string) (*LogBuffer, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("invalid buffer size %d", maxSize)
	}
	lb := &LogBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
	}
	if spillFilePath == "" {
		return lb, nil
	}

	if err := os.MkdirAll(filepath.Dir(spillFilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	spillFile, err := os.OpenFile(spillFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open spill file: %w", err)
	}
	lb.spillFile = spillFile
	lb.spillWriter = bufio.NewWriter(spillFile)
	return lb, nil
}

// Write decodes one zap JSON line into an entry. Lines that are not JSON are
// kept verbatim as the message.
func (lb *LogBuffer) Write(p []byte) (int, error) {
	raw := map[string]interface{}{}
	entry := LogEntry{Timestamp: time.Now()}
	if err := json.Unmarshal(p, &raw); err != nil {
		entry.Level = "info"
		entry.Message = string(p)
	} else {
		entry.Level, _ = raw["level"].(string)
		entry.Message, _ = raw["msg"].(string)
		entry.Logger, _ = raw["logger"].(string)
		if ts, ok := raw["time"].(string); ok {
			if parsed, err := time.Parse("2006-01-02T15:04:05.000Z0700", ts); err == nil {
				entry.Timestamp = parsed
			}
		}
		for _, key := range []string{"level", "msg", "logger", "time"} {
			delete(raw, key)
		}
		if len(raw) > 0 {
			entry.Fields = raw
		}
	}
	if err := lb.add(entry); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Add adds a new log entry to the buffer
func (lb *LogBuffer) Add(level, message string, fields map[string]interface{}) error {
	return lb.add(LogEntry{Timestamp: time.Now(), Level: level, Message: message, Fields: fields})
}

func (lb *LogBuffer) add(entry LogEntry) error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	var evicted *LogEntry
	if lb.wrapped {
		old := lb.ringBuffer[lb.currentIndex]
		evicted = &old
	}

	lb.ringBuffer[lb.currentIndex] = entry
	lb.currentIndex = (lb.currentIndex + 1) % lb.maxSize
	if lb.currentIndex == 0 {
		lb.wrapped = true
	}
	lb.totalEntries++

	if evicted != nil && lb.spillWriter != nil {
		if err := lb.spillToFile(*evicted); err != nil {
			return err
		}
		lb.spilledEntries++
	}
	return nil
}

// spillToFile writes an entry to the spill file
func (lb *LogBuffer) spillToFile(entry LogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}
	if _, err := lb.spillWriter.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write to spill file: %w", err)
	}
	return nil
}

// GetRecentLogs returns up to limit most recent entries, oldest first.
func (lb *LogBuffer) GetRecentLogs(limit int) []LogEntry {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	count := lb.currentIndex
	start := 0
	if lb.wrapped {
		count = lb.maxSize
		start = lb.currentIndex
	}
	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, lb.ringBuffer[(start+i)%lb.maxSize])
	}
	return logs
}

// Sync satisfies zapcore.WriteSyncer.
func (lb *LogBuffer) Sync() error {
	return lb.Flush()
}

// Flush forces a write of any buffered data to the spill file
func (lb *LogBuffer) Flush() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.spillWriter == nil {
		return nil
	}
	if err := lb.spillWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush spill writer: %w", err)
	}
	return nil
}

// Close spills the entries still in the ring and closes the spill file.
func (lb *LogBuffer) Close() error {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if lb.spillWriter == nil {
		return nil
	}

	count, start := lb.currentIndex, 0
	if lb.wrapped {
		count, start = lb.maxSize, lb.currentIndex
	}
	for i := 0; i < count; i++ {
		if err := lb.spillToFile(lb.ringBuffer[(start+i)%lb.maxSize]); err != nil {
			return err
		}
	}

	if err := lb.spillWriter.Flush(); err != nil {
		return fmt.Errorf("failed to flush during close: %w", err)
	}
	err := lb.spillFile.Close()
	lb.spillWriter = nil
	if err != nil {
		return fmt.Errorf("failed to close spill file: %w", err)
	}
	return nil
}

// GetStats returns buffer statistics
func (lb *LogBuffer) GetStats() (total, spilled uint64) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.totalEntries, lb.spilledEntries
}
