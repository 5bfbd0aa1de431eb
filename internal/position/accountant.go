// Package position folds classified, valued transactions into an average-cost
// position report for one wallet/token pair.
package position

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tokenlens/pnl/internal/domain"
)

// ErrNoActivity indicates that the wallet/token pair has no relevant transfers.
// It is the one whole-call short-circuit: callers get either this or a complete
// report, never a partial one.
var ErrNoActivity = errors.New("no activity for this wallet/token pair")

// TransferFeed is the ledger transfer collaborator.
type TransferFeed interface {
	ListTransfers(ctx context.Context, wallet, token common.Address) ([]domain.TransferLeg, error)
}

// Resolver gathers per-transaction valuation signals.
type Resolver interface {
	ResolveTransaction(ctx context.Context, hash common.Hash) domain.TransactionDetail
}

// Classifier infers per-transaction intent.
type Classifier interface {
	Classify(ctx context.Context, tx domain.Transaction, detail domain.TransactionDetail, wallet, token common.Address) domain.ClassifiedTransaction
}

// MarketFeed supplies the tracked token's current spot price and the native
// coin's USD price.
type MarketFeed interface {
	CurrentPrice(ctx context.Context, token common.Address) (decimal.Decimal, error)
	SpotNativeUSD(ctx context.Context) (decimal.Decimal, error)
}

// Accountant reconstructs positions from raw transfer batches.
type Accountant struct {
	ledger      TransferFeed
	resolver    Resolver
	classifier  Classifier
	market      MarketFeed
	concurrency int
}

// NewAccountant creates a position accountant. concurrency bounds the parallel
// detail prefetch; values below 1 mean sequential fetching.
func NewAccountant(ledger TransferFeed, res Resolver, cls Classifier, market MarketFeed, concurrency int) *Accountant {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Accountant{
		ledger:      ledger,
		resolver:    res,
		classifier:  cls,
		market:      market,
		concurrency: concurrency,
	}
}

// ComputePosition reconstructs the position for one wallet/token pair. It
// returns ErrNoActivity when the ledger has no relevant transfers (or cannot be
// reached), and an explicit error on invariant violations; otherwise the report
// is complete.
func (a *Accountant) ComputePosition(ctx context.Context, wallet, token common.Address) (*domain.PositionReport, error) {
	legs, err := a.ledger.ListTransfers(ctx, wallet, token)
	if err != nil {
		slog.Warn("transfer feed unavailable, treating as no data",
			"wallet", wallet.Hex(), "token", token.Hex(), "error", err)
		return nil, ErrNoActivity
	}
	if len(legs) == 0 {
		return nil, ErrNoActivity
	}

	transactions := groupTransactions(legs, wallet, token)
	if len(transactions) == 0 {
		return nil, ErrNoActivity
	}

	details := a.prefetchDetails(ctx, transactions)

	// The fold is order-dependent: average cost must reflect chronology.
	// Whatever the fetch order did, fold in ascending timestamp order.
	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].Timestamp.Equal(transactions[j].Timestamp) {
			return transactions[i].Hash.Hex() < transactions[j].Hash.Hex()
		}
		return transactions[i].Timestamp.Before(transactions[j].Timestamp)
	})

	spot := a.fetchSpot(ctx, token)

	state := newState()
	for _, tx := range transactions {
		classified := a.classifier.Classify(ctx, tx, details[tx.Hash], wallet, token)
		state.fold(classified, spot)
	}

	report, err := state.finalize(wallet, token, spot)
	if err != nil {
		return nil, err
	}

	a.applyUSD(ctx, report)
	return report, nil
}

// applyUSD enriches the report with USD-denominated figures through the native
// coin's USD spot price. A missing or zero spot leaves the fields zero with
// USDKnown false; the native-coin report stands on its own.
func (a *Accountant) applyUSD(ctx context.Context, report *domain.PositionReport) {
	usd, err := a.market.SpotNativeUSD(ctx)
	if err != nil {
		slog.Warn("native coin USD price unavailable, USD figures omitted", "error", err)
		return
	}
	if !usd.IsPositive() {
		return
	}

	report.NativeCoinPriceUSD = usd
	report.USDKnown = true
	report.RealizedPnLUSD = report.RealizedPnL.Mul(usd)
	report.UnrealizedPnLUSD = report.UnrealizedPnL.Mul(usd)
	report.CurrentHoldingsUSD = report.CurrentBalance.Mul(report.CurrentPriceNative).Mul(usd)
}

// groupTransactions groups legs by hash and keeps only transactions that touch
// both the target wallet and the target token.
func groupTransactions(legs []domain.TransferLeg, wallet, token common.Address) []domain.Transaction {
	grouped := lo.GroupBy(legs, func(l domain.TransferLeg) common.Hash { return l.TxHash })

	var transactions []domain.Transaction
	for hash, group := range grouped {
		relevant := lo.SomeBy(group, func(l domain.TransferLeg) bool {
			return l.Token == token && (l.From == wallet || l.To == wallet)
		})
		if !relevant {
			continue
		}
		transactions = append(transactions, domain.Transaction{
			Hash:      hash,
			Timestamp: group[0].Timestamp,
			Legs:      group,
		})
	}
	return transactions
}

// prefetchDetails resolves every transaction's valuation signals with bounded
// concurrency. Concurrency here only speeds up fetching; results land in a map
// and the fold order is fixed separately.
func (a *Accountant) prefetchDetails(ctx context.Context, transactions []domain.Transaction) map[common.Hash]domain.TransactionDetail {
	details := make(map[common.Hash]domain.TransactionDetail, len(transactions))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, a.concurrency)

	for _, tx := range transactions {
		wg.Add(1)
		go func(hash common.Hash) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			detail := a.resolver.ResolveTransaction(ctx, hash)

			mu.Lock()
			details[hash] = detail
			mu.Unlock()
		}(tx.Hash)
	}

	wg.Wait()
	return details
}

// spotPrice is the current market price with its availability flag.
type spotPrice struct {
	price decimal.Decimal
	known bool
}

func (a *Accountant) fetchSpot(ctx context.Context, token common.Address) spotPrice {
	p, err := a.market.CurrentPrice(ctx, token)
	if err != nil {
		slog.Warn("spot price unavailable, unrealized PnL will use the cost basis sentinel",
			"token", token.Hex(), "error", err)
		return spotPrice{}
	}
	return spotPrice{price: p, known: true}
}

// invariantError reports a broken accounting invariant. Surfacing it beats
// silent numeric drift.
func invariantError(format string, args ...any) error {
	return fmt.Errorf("position invariant violated: "+format, args...)
}
