// Package resolver estimates each transaction's native-coin value from the
// tiered signal chain: direct value, call-input decoding, receipt logs and
// internal transfers.
package resolver

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/tokenlens/pnl/internal/domain"
	"github.com/tokenlens/pnl/internal/etherscan"
)

// NominalValue is the placeholder native value attributed to a transaction
// whose value could not be determined from any signal. It is deliberately
// nonzero so downstream cost-basis math never divides by zero, and callers can
// compare against it to detect the "value undetermined" condition.
var NominalValue = decimal.RequireFromString("0.01")

// transferTopic is the canonical ERC-20 Transfer(address,address,uint256) event signature.
var transferTopic = common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

// TxFeed is the per-transaction slice of the ledger collaborator. Every call is
// independently optional: the resolver degrades on any failure.
type TxFeed interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (etherscan.RawTransaction, bool, error)
	TransactionReceipt(ctx context.Context, hash common.Hash) ([]etherscan.ReceiptLog, bool, error)
	InternalTransfers(ctx context.Context, hash common.Hash) ([]decimal.Decimal, error)
}

// Service resolves per-transaction valuation signals.
type Service struct {
	feed TxFeed
}

// NewService creates a new value resolver.
func NewService(feed TxFeed) *Service {
	return &Service{feed: feed}
}

// ResolveTransaction gathers every valuation signal for a transaction. It never
// fails: fetch and decode errors degrade to whatever has been gathered so far,
// and a fully degraded result is still usable downstream via the nominal
// placeholder policy in ReportedValue.
func (s *Service) ResolveTransaction(ctx context.Context, hash common.Hash) domain.TransactionDetail {
	detail := domain.TransactionDetail{Assets: domain.NewAssetSet()}

	// Direct value and call input.
	tx, found, err := s.feed.TransactionByHash(ctx, hash)
	if err != nil {
		slog.Warn("transaction lookup failed, degrading", "tx", hash.Hex(), "error", err)
	} else if found {
		detail.DirectValue = tx.Value

		if sig, method, ok := LookupMethod(tx.Input); ok {
			detail.MethodSig = sig
			detail.MethodName = method.Name
			// Structural guess at the swap path from the raw input words.
			for _, addr := range scanAddressWords(tx.Input) {
				detail.Assets.Add(addr, domain.ConfidenceHeuristic)
			}
		}
	}

	// Receipt logs are the authoritative involved-asset signal: every contract
	// emitting a Transfer event is involved, whatever the input scan guessed.
	logs, found, err := s.feed.TransactionReceipt(ctx, hash)
	if err != nil {
		slog.Warn("receipt lookup failed, degrading", "tx", hash.Hex(), "error", err)
	} else if found {
		for _, l := range logs {
			if len(l.Topics) == 0 || l.Topics[0] != transferTopic {
				continue
			}
			detail.Assets.Add(l.Address, domain.ConfidenceCertain)

			if len(l.Topics) == 3 && len(l.Data) >= 32 {
				detail.LogTransfers = append(detail.LogTransfers, domain.LogTransfer{
					Token:     l.Address,
					From:      common.BytesToAddress(l.Topics[1].Bytes()[12:]),
					To:        common.BytesToAddress(l.Topics[2].Bytes()[12:]),
					RawAmount: decimal.NewFromBigInt(new(big.Int).SetBytes(l.Data[:32]), 0),
				})
			}
		}
	}

	// Internal native-coin movements.
	internal, err := s.feed.InternalTransfers(ctx, hash)
	if err != nil {
		slog.Warn("internal transfer lookup failed, degrading", "tx", hash.Hex(), "error", err)
	} else {
		detail.InternalValue = lo.Reduce(internal, func(acc decimal.Decimal, v decimal.Decimal, _ int) decimal.Decimal {
			return acc.Add(v)
		}, decimal.Zero)
	}

	return detail
}

// ReportedValue picks the single native value to attribute to a transaction.
// The precedence is explicit: a sell with internal value takes the internal
// value (the proceeds arrive as an internal call), otherwise a nonzero direct
// value wins, otherwise a nonzero internal value, otherwise the nominal
// placeholder. Direct and internal values are never summed, so value captured
// both ways is counted once. estimated is true iff the placeholder fired.
func ReportedValue(detail domain.TransactionDetail, intent domain.Intent) (value decimal.Decimal, estimated bool) {
	switch {
	case intent == domain.IntentSell && detail.InternalValue.IsPositive():
		return detail.InternalValue, false
	case detail.DirectValue.IsPositive():
		return detail.DirectValue, false
	case detail.InternalValue.IsPositive():
		return detail.InternalValue, false
	default:
		return NominalValue, true
	}
}
