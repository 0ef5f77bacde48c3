// internal/logger/writers.go
package logger

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SafeFileWriter provides thread-safe file writing with buffering and periodic flush.
// It backs the JSON log file, so it reports its own failures to a separate logger.
type SafeFileWriter struct {
	mu       sync.Mutex
	writer   *bufio.Writer
	file     *os.File
	ticker   *time.Ticker
	done     chan struct{}
	closed   bool
	logger   *zap.Logger
	filePath string

	// Stats
	writtenLines uint64
	flushCount   uint64
}

func openAppend(filePath string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// NewSafeFileWriter opens filePath for appending. A nil logger disables
// reporting of background flush errors.
func NewSafeFileWriter(filePath string, flushInterval time.Duration, logger *zap.Logger) (*SafeFileWriter, error) {
	file, err := openAppend(filePath)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sfw := &SafeFileWriter{
		writer:   bufio.NewWriter(file),
		file:     file,
		ticker:   time.NewTicker(flushInterval),
		done:     make(chan struct{}),
		logger:   logger,
		filePath: filePath,
	}
	go sfw.periodicFlush()
	return sfw, nil
}

// Write writes data to the file in a thread-safe manner
func (sfw *SafeFileWriter) Write(data []byte) (int, error) {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if sfw.closed {
		return 0, os.ErrClosed
	}
	n, err := sfw.writer.Write(data)
	if err != nil {
		return n, fmt.Errorf("failed to write data: %w", err)
	}
	sfw.writtenLines++
	return n, nil
}

// Sync satisfies zapcore.WriteSyncer.
func (sfw *SafeFileWriter) Sync() error {
	return sfw.Flush()
}

// Flush forces a write of any buffered data
func (sfw *SafeFileWriter) Flush() error {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if sfw.closed {
		return nil
	}
	if err := sfw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	if err := sfw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file: %w", err)
	}
	sfw.flushCount++
	return nil
}

func (sfw *SafeFileWriter) periodicFlush() {
	for {
		select {
		case <-sfw.ticker.C:
			if err := sfw.Flush(); err != nil {
				sfw.logger.Error("Periodic flush failed",
					zap.String("file", sfw.filePath),
					zap.Error(err))
			}
		case <-sfw.done:
			return
		}
	}
}

// Close flushes and closes the file. Closing twice is a no-op.
func (sfw *SafeFileWriter) Close() error {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()

	if sfw.closed {
		return nil
	}
	sfw.closed = true
	close(sfw.done)
	sfw.ticker.Stop()

	if err := sfw.writer.Flush(); err != nil {
		sfw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := sfw.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// GetStats returns writer statistics
func (sfw *SafeFileWriter) GetStats() (lines, flushes uint64) {
	sfw.mu.Lock()
	defer sfw.mu.Unlock()
	return sfw.writtenLines, sfw.flushCount
}

// SafeCSVWriter appends records to a CSV file, writing header once for a new file.
type SafeCSVWriter struct {
	mu       sync.Mutex
	writer   *csv.Writer
	file     *os.File
	logger   *zap.Logger
	filePath string

	// Stats
	writtenRecords uint64
	flushCount     uint64
}

// NewSafeCSVWriter creates a new thread-safe CSV writer
func NewSafeCSVWriter(filePath string, header []string, logger *zap.Logger) (*SafeCSVWriter, error) {
	file, err := openAppend(filePath)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	scw := &SafeCSVWriter{
		writer:   csv.NewWriter(file),
		file:     file,
		logger:   logger,
		filePath: filePath,
	}

	if stat.Size() == 0 && len(header) > 0 {
		// header is not counted as a record
		if err := scw.writer.Write(header); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		scw.writer.Flush()
	}
	return scw, nil
}

// WriteRecord writes a CSV record in a thread-safe manner
func (scw *SafeCSVWriter) WriteRecord(record []string) error {
	scw.mu.Lock()
	defer scw.mu.Unlock()

	if err := scw.writer.Write(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	scw.writtenRecords++
	return nil
}

// Flush forces a write of any buffered data
func (scw *SafeCSVWriter) Flush() error {
	scw.mu.Lock()
	defer scw.mu.Unlock()

	scw.writer.Flush()
	if err := scw.writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	scw.flushCount++
	return nil
}

// Close flushes pending records and closes the file.
func (scw *SafeCSVWriter) Close() error {
	scw.mu.Lock()
	defer scw.mu.Unlock()

	scw.writer.Flush()
	if err := scw.writer.Error(); err != nil {
		scw.file.Close()
		return fmt.Errorf("CSV writer error on close: %w", err)
	}
	if err := scw.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	scw.logger.Debug("CSV export closed",
		zap.String("file", scw.filePath),
		zap.Uint64("records", scw.writtenRecords))
	return nil
}

// GetStats returns CSV writer statistics
func (scw *SafeCSVWriter) GetStats() (records, flushes uint64) {
	scw.mu.Lock()
	defer scw.mu.Unlock()
	return scw.writtenRecords, scw.flushCount
}
