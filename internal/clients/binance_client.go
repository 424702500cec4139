package clients

import (
	"github.com/adshao/go-binance/v2/futures"
)

func NewBinanceFuturesClient(apiKey, apiSecret string) *futures.Client {
	client := futures.NewClient(apiKey, apiSecret)
	return client
}
