package clients

import (
	"github.com/adshao/go-binance/v2"
)

// NewBinanceClient creates a Binance client for public market data.
// No API keys are needed since the desk never places real orders.
func NewBinanceClient() *binance.Client {
	return binance.NewClient("", "")
}
