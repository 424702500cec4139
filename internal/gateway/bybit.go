package gateway

import (
	"context"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/walletboard/internal/domain"
)

// BybitGateway queries the Bybit unified account wallet balance.
type BybitGateway struct {
	client *bybit.Client
}

// NewBybitGateway builds a gateway over the Bybit V5 REST API. A nil
// client produces a disabled gateway, same as the Binance one.
func NewBybitGateway(client *bybit.Client) *BybitGateway {
	return &BybitGateway{client: client}
}

// FuturesBalance fetches the unified wallet balance and extracts the USDT coin.
func (g *BybitGateway) FuturesBalance(_ context.Context) (domain.FuturesBalance, bool, error) {
	if g == nil || g.client == nil {
		return domain.FuturesBalance{}, false, ErrCredentialsMissing
	}

	res, err := g.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5("UNIFIED"), nil)
	if err != nil {
		return domain.FuturesBalance{}, false, errors.Wrap(err, "query bybit wallet balance")
	}

	for _, account := range res.Result.List {
		if balance, found, err := usdtFromBybit(account.Coin); found || err != nil {
			return balance, found, err
		}
	}

	return domain.FuturesBalance{}, false, nil
}

func usdtFromBybit(coins []bybit.V5WalletBalanceCoin) (domain.FuturesBalance, bool, error) {
	for _, coin := range coins {
		if string(coin.Coin) != usdtAsset {
			continue
		}

		total, err := decimal.NewFromString(coin.WalletBalance)
		if err != nil {
			return domain.FuturesBalance{}, false, errors.Wrap(err, "decode bybit wallet balance")
		}

		// unified accounts may report an empty withdrawable amount,
		// treat the whole balance as free then
		free := total
		if coin.AvailableToWithdraw != "" {
			free, err = decimal.NewFromString(coin.AvailableToWithdraw)
			if err != nil {
				return domain.FuturesBalance{}, false, errors.Wrap(err, "decode bybit available balance")
			}
		}

		return domain.NewFuturesBalance(total, free), true, nil
	}

	return domain.FuturesBalance{}, false, nil
}
