package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FuturesAssetLabel is the display label the balance API uses for the
// futures USDT entry.
const FuturesAssetLabel = "USDT (Futures)"

// FuturesBalance is the USDT state of a futures account.
type FuturesBalance struct {
	Free   decimal.Decimal
	Locked decimal.Decimal
	Total  decimal.Decimal
}

// NewFuturesBalance derives the locked part from total and free.
func NewFuturesBalance(total, free decimal.Decimal) FuturesBalance {
	return FuturesBalance{
		Free:   free,
		Locked: total.Sub(free),
		Total:  total,
	}
}

// BalanceSnapshot is one point-in-time record of the futures USDT balance.
type BalanceSnapshot struct {
	Timestamp string  `json:"timestamp"`
	Balance   float64 `json:"balance"`
}

// NewBalanceSnapshot stamps a snapshot with the current UTC time.
func NewBalanceSnapshot(balance float64) BalanceSnapshot {
	return BalanceSnapshot{Timestamp: NowUTC(), Balance: balance}
}

// BalanceSnapshotRecord bundles a journaled snapshot with its log index.
type BalanceSnapshotRecord struct {
	Index    uint64
	Snapshot BalanceSnapshot
}

// Summary is the response body of the account summary endpoint.
type Summary struct {
	CoinCount          int      `json:"coin_count"`
	FuturesUsdtBalance float64  `json:"futures_usdt_balance"`
	PnlRate            *float64 `json:"pnl_rate"`
}

// NowUTC returns the current time as an RFC 3339 UTC string, the format
// used for every persisted timestamp.
func NowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
