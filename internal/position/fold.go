package position

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/tokenlens/pnl/internal/domain"
)

// state is the running accumulator for one computation. It lives for a single
// ComputePosition call and is folded strictly in ascending timestamp order.
type state struct {
	buyCount  int
	sellCount int

	tokensBought decimal.Decimal
	tokensSold   decimal.Decimal
	valueIn      decimal.Decimal
	valueOut     decimal.Decimal
	feesPaid     decimal.Decimal
	realized     decimal.Decimal

	transactions []domain.ClassifiedTransaction
}

func newState() *state {
	return &state{}
}

// fold applies one classified transaction. Buys and sells accumulate into the
// cost basis; swap and unknown intents are recorded for the report's audit
// trail but excluded from accumulation. Gas is charged for every transaction
// regardless of intent.
func (s *state) fold(tx domain.ClassifiedTransaction, spot spotPrice) {
	s.feesPaid = s.feesPaid.Add(tx.GasFee())
	s.transactions = append(s.transactions, tx)

	switch tx.Intent {
	case domain.IntentBuy:
		s.buyCount++
		s.tokensBought = s.tokensBought.Add(tx.TokenAmount)
		s.valueIn = s.valueIn.Add(attributedValue(tx, spot))
	case domain.IntentSell:
		s.sellCount++
		value := attributedValue(tx, spot)
		// Realized PnL is recognized at sell time against the basis so far,
		// which is what makes the fold chronology-sensitive: a sell before a
		// pricier buy realizes a different gain than one after it.
		s.realized = s.realized.Add(value.Sub(tx.TokenAmount.Mul(s.costBasis())))
		s.tokensSold = s.tokensSold.Add(tx.TokenAmount)
		s.valueOut = s.valueOut.Add(value)
	}
}

// costBasis is the blended average cost of everything bought so far.
func (s *state) costBasis() decimal.Decimal {
	if !s.tokensBought.IsPositive() {
		return decimal.Zero
	}
	return s.valueIn.Div(s.tokensBought)
}

// attributedValue picks the native value to book for a buy or sell. The
// resolver's value wins when it is real; a placeholder value falls back to the
// stable-asset-implied value, then to a spot-price estimate of the token legs.
func attributedValue(tx domain.ClassifiedTransaction, spot spotPrice) decimal.Decimal {
	if !tx.ValueEstimated {
		return tx.ResolvedValue
	}
	if tx.StableValue.IsPositive() {
		return tx.StableValue
	}
	if spot.known && spot.price.IsPositive() {
		return tx.TokenAmount.Mul(spot.price)
	}
	return tx.ResolvedValue
}

// finalize validates the accumulated state and produces the report.
func (s *state) finalize(wallet, token common.Address, spot spotPrice) (*domain.PositionReport, error) {
	balance := s.tokensBought.Sub(s.tokensSold)
	// More sold than bought means the acquisition path was not accounted for
	// (tokens arrived via an excluded swap/unknown transaction). A report built
	// on top of that would be numerically wrong everywhere, so refuse it.
	if balance.IsNegative() {
		return nil, invariantError("balance is negative: sold %s exceeds bought %s", s.tokensSold, s.tokensBought)
	}
	costBasis := s.costBasis()

	// When the market has no spot price the cost basis stands in as the
	// sentinel, which values the holding at cost: unrealized PnL reads zero.
	effectiveSpot := spot.price
	if !spot.known {
		effectiveSpot = costBasis
	}
	unrealized := balance.Mul(effectiveSpot.Sub(costBasis))

	return &domain.PositionReport{
		Wallet:             wallet,
		Token:              token,
		BuyCount:           s.buyCount,
		SellCount:          s.sellCount,
		TokensBought:       s.tokensBought,
		TokensSold:         s.tokensSold,
		CurrentBalance:     balance,
		ValueIn:            s.valueIn,
		ValueOut:           s.valueOut,
		FeesPaid:           s.feesPaid,
		CostBasisPerToken:  costBasis,
		CurrentPriceNative: effectiveSpot,
		PriceKnown:         spot.known,
		RealizedPnL:        s.realized,
		UnrealizedPnL:      unrealized,
		Transactions:       s.transactions,
	}, nil
}
