// internal/logger/buffer_test.go
package logger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogBufferRingBufferBehavior(t *testing.T) {
	spill := filepath.Join(t.TempDir(), "spill.log")
	buffer, err := NewLogBuffer(3, spill)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, buffer.Add("info", fmt.Sprintf("entry %d", i), nil))
	}

	logs := buffer.GetRecentLogs(0)
	require.Len(t, logs, 3)
	assert.Equal(t, "entry 2", logs[0].Message)
	assert.Equal(t, "entry 4", logs[2].Message)

	last := buffer.GetRecentLogs(2)
	require.Len(t, last, 2)
	assert.Equal(t, "entry 3", last[0].Message)

	total, spilled := buffer.GetStats()
	assert.Equal(t, uint64(5), total)
	assert.Equal(t, uint64(2), spilled)

	require.NoError(t, buffer.Close())
	f, err := os.Open(spill)
	require.NoError(t, err)
	defer f.Close()
	lines := 0
	for sc := bufio.NewScanner(f); sc.Scan(); {
		lines++
	}
	// two evicted entries plus the three left in the ring on close
	assert.Equal(t, 5, lines)
}

func TestLogBufferInMemoryConcurrent(t *testing.T) {
	buffer, err := NewLogBuffer(50, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 40; j++ {
				assert.NoError(t, buffer.Add("debug", "tick", map[string]interface{}{"id": id}))
				_ = buffer.GetRecentLogs(10)
			}
		}(i)
	}
	wg.Wait()

	total, spilled := buffer.GetStats()
	assert.Equal(t, uint64(200), total)
	assert.Zero(t, spilled)
	assert.Len(t, buffer.GetRecentLogs(0), 50)
	assert.NoError(t, buffer.Close())
}

func TestTUILoggerWritesStructuredEntries(t *testing.T) {
	buffer, err := NewLogBuffer(10, "")
	require.NoError(t, err)

	log, err := CreateTUILoggerWithBuffer(false, buffer, nil)
	require.NoError(t, err)
	log.Named("submitter").Info("Transaction confirmed",
		zap.String("kind", "mint"),
		zap.String("signature", "5VERYLONGSIGNATUREVALUE1234567890"))
	log.Debug("hidden at info level")

	logs := buffer.GetRecentLogs(0)
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, "info", entry.Level)
	assert.Equal(t, "submitter", entry.Logger)
	assert.Equal(t, "mint", entry.Fields["kind"])
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, "✅ mint confirmed: 5VERYLON...34567890", entry.Pretty())

	_, err = CreateTUILoggerWithBuffer(false, nil, nil)
	assert.Error(t, err)
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		msg    string
		fields map[string]interface{}
		want   string
	}{
		{"Token created", map[string]interface{}{"mint": "Mint1111111111111111"}, "🪙 Token created: Mint...1111"},
		{"Wallet declined to sign", nil, "✋ Signing declined"},
		{"Something else", nil, "Something else"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMessage(tt.msg, tt.fields))
	}
}

func TestFilterFields(t *testing.T) {
	kept := filterFields([]zap.Field{zap.String("mint", "m"), zap.Int("attempt", 3), zap.String("signature", "s")})
	require.Len(t, kept, 2)
	assert.Equal(t, "mint", kept[0].Key)
	assert.Equal(t, "signature", kept[1].Key)
}
