// Package classifier infers per-transaction intent (buy, sell, swap, unknown)
// for one wallet/token pair from method signatures, stable-asset flows and raw
// transfer direction.
package classifier

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/tokenlens/pnl/internal/domain"
	"github.com/tokenlens/pnl/internal/registry"
	"github.com/tokenlens/pnl/internal/resolver"
)

// PriceFeed answers historical stable-asset prices in native coin.
type PriceFeed interface {
	PriceAt(ctx context.Context, token common.Address, ts time.Time) (decimal.Decimal, error)
}

// SpotFeed supplies the native coin's USD price for parity conversion.
type SpotFeed interface {
	SpotNativeUSD(ctx context.Context) (decimal.Decimal, error)
}

// Service classifies transactions. Classification reads shared state only
// through the memoizing price feed, so calling it twice for the same
// transaction yields the same result.
type Service struct {
	prices PriceFeed
	spot   SpotFeed
}

// NewService creates a new intent classifier.
func NewService(prices PriceFeed, spot SpotFeed) *Service {
	return &Service{prices: prices, spot: spot}
}

// Classify determines the transaction's intent and attributed values. Decision
// order: method-signature rule, then stable-asset-flow rule, then raw transfer
// direction. The first applicable rule wins.
func (s *Service) Classify(ctx context.Context, tx domain.Transaction, detail domain.TransactionDetail, wallet, token common.Address) domain.ClassifiedTransaction {
	tokenIn, tokenOut := legTotals(tx.Legs, wallet, token)

	intent := s.decide(detail, wallet, tokenIn, tokenOut)

	classified := domain.ClassifiedTransaction{
		Transaction: tx,
		Intent:      intent,
		TokenAmount: amountFor(intent, tokenIn, tokenOut),
		StableValue: s.stableFlowValue(ctx, detail, wallet, intent, tx.Timestamp),
	}
	classified.ResolvedValue, classified.ValueEstimated = resolver.ReportedValue(detail, intent)
	return classified
}

func (s *Service) decide(detail domain.TransactionDetail, wallet common.Address, tokenIn, tokenOut decimal.Decimal) domain.Intent {
	// Rule 1: known method signature.
	if kind, ok := resolver.KindOf(detail.MethodSig); ok {
		switch kind {
		case resolver.KindBuy:
			return domain.IntentBuy
		case resolver.KindSell:
			return domain.IntentSell
		default:
			return domain.IntentSwap
		}
	}

	// Rule 2: stable-asset flow direction.
	stableIn, stableOut := stableFlow(detail, wallet)
	if stableOut.IsPositive() && tokenIn.IsPositive() {
		return domain.IntentBuy
	}
	if stableIn.IsPositive() && tokenOut.IsPositive() {
		return domain.IntentSell
	}

	// Rule 3: raw transfer direction of the tracked token.
	switch {
	case tokenIn.IsPositive() && tokenOut.IsZero():
		return domain.IntentBuy
	case tokenOut.IsPositive() && tokenIn.IsZero():
		return domain.IntentSell
	default:
		// Both directions touched, e.g. self-transfer or multi-hop routing.
		return domain.IntentUnknown
	}
}

// legTotals sums the tracked token's leg amounts into and out of the wallet.
func legTotals(legs []domain.TransferLeg, wallet, token common.Address) (in, out decimal.Decimal) {
	for _, leg := range legs {
		if leg.Token != token {
			continue
		}
		if leg.To == wallet {
			in = in.Add(leg.Amount)
		}
		if leg.From == wallet {
			out = out.Add(leg.Amount)
		}
	}
	return in, out
}

// amountFor picks the leg direction the intent implies: tokens received for a
// buy, tokens sent for a sell. Ambiguous intents report whichever side moved.
func amountFor(intent domain.Intent, tokenIn, tokenOut decimal.Decimal) decimal.Decimal {
	switch intent {
	case domain.IntentSell:
		return tokenOut
	case domain.IntentBuy:
		return tokenIn
	default:
		if tokenIn.IsPositive() {
			return tokenIn
		}
		return tokenOut
	}
}

// stableFlow sums recognized stable-asset movements touching the wallet,
// scaled by each token's registry decimals. Only receipt-log transfers carry
// amounts, so the flow is grounded in certain signals; heuristic-only sightings
// contribute nothing.
func stableFlow(detail domain.TransactionDetail, wallet common.Address) (in, out decimal.Decimal) {
	for _, lt := range detail.LogTransfers {
		rec, ok := registry.Info(lt.Token)
		if !ok {
			continue
		}
		amount := lt.RawAmount.Shift(-rec.Decimals)
		if lt.To == wallet {
			in = in.Add(amount)
		}
		if lt.From == wallet {
			out = out.Add(amount)
		}
	}
	return in, out
}

// stableFlowValue converts the wallet's net stable flow on the intent's paying
// side into native coin: the stable spent on a buy, the stable received on a
// sell. Conversion goes through the historical price cache; when the market
// feed has no stable price, USD parity through the spot price stands in.
// Undeterminable conversions yield zero, which callers treat as "no stable
// signal" rather than an error.
func (s *Service) stableFlowValue(ctx context.Context, detail domain.TransactionDetail, wallet common.Address, intent domain.Intent, ts time.Time) decimal.Decimal {
	stableIn, stableOut := stableFlow(detail, wallet)

	var paying map[common.Address]decimal.Decimal
	switch intent {
	case domain.IntentBuy:
		if !stableOut.IsPositive() {
			return decimal.Zero
		}
		paying = stableLegTotals(detail, wallet, false)
	case domain.IntentSell:
		if !stableIn.IsPositive() {
			return decimal.Zero
		}
		paying = stableLegTotals(detail, wallet, true)
	default:
		return decimal.Zero
	}

	total := decimal.Zero
	for token, amount := range paying {
		total = total.Add(s.convertStable(ctx, token, amount, ts))
	}
	return total
}

// stableLegTotals groups the wallet's stable flow per token, incoming or outgoing.
func stableLegTotals(detail domain.TransactionDetail, wallet common.Address, incoming bool) map[common.Address]decimal.Decimal {
	totals := make(map[common.Address]decimal.Decimal)
	for _, lt := range detail.LogTransfers {
		rec, ok := registry.Info(lt.Token)
		if !ok {
			continue
		}
		if incoming && lt.To != wallet {
			continue
		}
		if !incoming && lt.From != wallet {
			continue
		}
		totals[lt.Token] = totals[lt.Token].Add(lt.RawAmount.Shift(-rec.Decimals))
	}
	return totals
}

// convertStable turns an amount of a stable token into native coin.
func (s *Service) convertStable(ctx context.Context, token common.Address, amount decimal.Decimal, ts time.Time) decimal.Decimal {
	if p, err := s.prices.PriceAt(ctx, token, ts); err == nil && p.IsPositive() {
		return amount.Mul(p)
	}

	// USD parity fallback: one stable unit taken as one USD. EUR-pegged tokens
	// are approximated at parity too when the market feed has no price.
	ethUSD, err := s.spot.SpotNativeUSD(ctx)
	if err != nil || !ethUSD.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(ethUSD)
}
