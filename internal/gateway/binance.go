package gateway

import (
	"context"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/walletboard/internal/domain"
)

const usdtAsset = "USDT"

// BinanceGateway queries the Binance futures account balance.
type BinanceGateway struct {
	client *futures.Client
}

// NewBinanceGateway builds a gateway over the Binance futures REST API.
// A nil client produces a disabled gateway: construction succeeds and
// every balance call reports ErrCredentialsMissing.
func NewBinanceGateway(client *futures.Client) *BinanceGateway {
	return &BinanceGateway{client: client}
}

// FuturesBalance fetches the account balances and extracts the USDT entry.
func (g *BinanceGateway) FuturesBalance(ctx context.Context) (domain.FuturesBalance, bool, error) {
	if g == nil || g.client == nil {
		return domain.FuturesBalance{}, false, ErrCredentialsMissing
	}

	balances, err := g.client.NewGetBalanceService().Do(ctx)
	if err != nil {
		return domain.FuturesBalance{}, false, errors.Wrap(err, "query binance futures balance")
	}

	return usdtFromBinance(balances)
}

func usdtFromBinance(balances []*futures.Balance) (domain.FuturesBalance, bool, error) {
	for _, b := range balances {
		if b == nil || b.Asset != usdtAsset {
			continue
		}

		total, err := decimal.NewFromString(b.Balance)
		if err != nil {
			return domain.FuturesBalance{}, false, errors.Wrap(err, "decode binance futures balance")
		}

		free, err := decimal.NewFromString(b.AvailableBalance)
		if err != nil {
			return domain.FuturesBalance{}, false, errors.Wrap(err, "decode binance available balance")
		}

		return domain.NewFuturesBalance(total, free), true, nil
	}

	return domain.FuturesBalance{}, false, nil
}
