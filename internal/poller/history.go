// internal/poller/history.go
package poller

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/oyevasu/spl-token-studio/internal/blockchain"
	"github.com/oyevasu/spl-token-studio/internal/blockchain/solbc"
	"go.uber.org/zap"
)

// DefaultHistoryLimit is how many recent signatures a snapshot holds.
const DefaultHistoryLimit = 10

// HistoryEntry is one recent transaction of the owner.
type HistoryEntry struct {
	Signature   solana.Signature
	Slot        uint64
	BlockTime   *time.Time
	Status      string
	Err         string
	Memo        string
	ExplorerURL string
}

// Failed reports whether the transaction landed with an error.
func (e HistoryEntry) Failed() bool {
	return e.Err != ""
}

// HistorySnapshot is the owner's most recent transactions, newest first.
type HistorySnapshot struct {
	Owner     solana.PublicKey
	Entries   []HistoryEntry
	FetchedAt time.Time
}

// HistoryPoller polls recent signatures for an owner.
type HistoryPoller struct {
	*Poller[HistorySnapshot]
}

// NewHistoryPoller creates a history poller on the shared scheduler.
func NewHistoryPoller(client blockchain.Client, scheduler *Scheduler, explorer blockchain.Explorer, limit int, logger *zap.Logger) *HistoryPoller {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryPoller{
		Poller: New[HistorySnapshot]("history-poller", scheduler, func(ctx context.Context, owner solana.PublicKey) (HistorySnapshot, error) {
			return FetchHistory(ctx, client, explorer, owner, limit)
		}, logger),
	}
}

// FetchHistory reads the last limit signatures for owner.
func FetchHistory(ctx context.Context, client blockchain.Client, explorer blockchain.Explorer, owner solana.PublicKey, limit int) (HistorySnapshot, error) {
	sigs, err := client.GetSignaturesForAddress(ctx, owner, limit)
	if err != nil {
		return HistorySnapshot{}, err
	}
	if len(sigs) > limit {
		sigs = sigs[:limit]
	}

	entries := make([]HistoryEntry, 0, len(sigs))
	for _, s := range sigs {
		entry := HistoryEntry{
			Signature:   s.Signature,
			Slot:        s.Slot,
			BlockTime:   s.BlockTime,
			Status:      string(s.ConfirmationStatus),
			Memo:        s.Memo,
			ExplorerURL: explorer.TxURL(s.Signature.String()),
		}
		if s.Err != nil {
			entry.Err = solbc.DescribeStatusErr(s.Err)
			entry.Status = "failed"
		}
		if entry.Status == "" {
			entry.Status = "unknown"
		}
		entries = append(entries, entry)
	}

	return HistorySnapshot{
		Owner:     owner,
		Entries:   entries,
		FetchedAt: time.Now(),
	}, nil
}
