package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// PositionReport is the finalized position and profit/loss for one wallet/token
// pair. All native-coin figures use average-cost accounting.
type PositionReport struct {
	Wallet common.Address `json:"wallet"`
	Token  common.Address `json:"token"`

	BuyCount  int `json:"buyCount"`
	SellCount int `json:"sellCount"`

	TokensBought   decimal.Decimal `json:"tokensBought"`
	TokensSold     decimal.Decimal `json:"tokensSold"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`

	ValueIn  decimal.Decimal `json:"valueIn"`
	ValueOut decimal.Decimal `json:"valueOut"`
	FeesPaid decimal.Decimal `json:"feesPaid"`

	CostBasisPerToken decimal.Decimal `json:"costBasisPerToken"`

	// CurrentPriceNative is the spot price used for unrealized PnL. When the
	// market feed has no price, PriceKnown is false and the cost basis stands in
	// as the sentinel, so UnrealizedPnL reads as zero rather than garbage.
	CurrentPriceNative decimal.Decimal `json:"currentPriceNative"`
	PriceKnown         bool            `json:"priceKnown"`

	RealizedPnL   decimal.Decimal `json:"realizedPnl"`
	UnrealizedPnL decimal.Decimal `json:"unrealizedPnl"`

	// USD figures are derived through the native coin's USD spot price. When
	// that feed is unavailable they stay zero and USDKnown is false.
	NativeCoinPriceUSD decimal.Decimal `json:"nativeCoinPriceUsd"`
	USDKnown           bool            `json:"usdKnown"`
	RealizedPnLUSD     decimal.Decimal `json:"realizedPnlUsd"`
	UnrealizedPnLUSD   decimal.Decimal `json:"unrealizedPnlUsd"`
	CurrentHoldingsUSD decimal.Decimal `json:"currentHoldingsUsd"`

	// Transactions lists every grouped transaction with its intent tag, including
	// swap/unknown ones excluded from cost-basis accumulation.
	Transactions []ClassifiedTransaction `json:"transactions"`
}
