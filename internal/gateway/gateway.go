// Package gateway wraps exchange REST APIs behind a single futures
// balance query.
package gateway

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/walletboard/internal/domain"
)

// ErrCredentialsMissing is returned when a gateway was built without API
// credentials. The process keeps running; only balance routes degrade.
var ErrCredentialsMissing = errors.New("exchange API credentials are not configured")

// Gateway reports the futures USDT balance of an exchange account.
// The boolean is false when the account holds no USDT entry at all.
type Gateway interface {
	FuturesBalance(ctx context.Context) (domain.FuturesBalance, bool, error)
}
