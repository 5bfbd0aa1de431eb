package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TransferLeg is one recorded movement of a fungible token between two addresses.
// Amount is already scaled by the token's decimals. Legs are immutable once fetched.
type TransferLeg struct {
	TxHash    common.Hash
	Token     common.Address
	From      common.Address
	To        common.Address
	Amount    decimal.Decimal
	Timestamp time.Time
	GasUsed   decimal.Decimal
	GasPrice  decimal.Decimal
}

// Transaction is the unit of classification: all transfer legs sharing one hash.
type Transaction struct {
	Hash      common.Hash
	Timestamp time.Time
	Legs      []TransferLeg
}

// GasFee returns the transaction's gas cost in native coin, taken from the first leg.
func (t Transaction) GasFee() decimal.Decimal {
	if len(t.Legs) == 0 {
		return decimal.Zero
	}
	return GasFee(t.Legs[0].GasUsed, t.Legs[0].GasPrice)
}

// LogTransfer is one ERC-20 Transfer event decoded from a receipt log.
// RawAmount is unscaled; the consumer applies the token's decimals.
type LogTransfer struct {
	Token     common.Address
	From      common.Address
	To        common.Address
	RawAmount decimal.Decimal
}

// TransactionDetail carries the per-transaction valuation signals gathered from
// the ledger: direct and internal native value, the decoded method signature, the
// set of involved assets and the cross-token transfers seen in the receipt.
type TransactionDetail struct {
	DirectValue   decimal.Decimal
	InternalValue decimal.Decimal
	MethodSig     string
	MethodName    string
	Assets        AssetSet
	LogTransfers  []LogTransfer
}

// ClassifiedTransaction is a transaction with its inferred intent and attributed
// native value. It is computed once and never mutated afterward.
type ClassifiedTransaction struct {
	Transaction
	Intent      Intent
	TokenAmount decimal.Decimal
	// ResolvedValue is the native value attributed to this transaction.
	ResolvedValue decimal.Decimal
	// StableValue is the native value implied by the wallet's net stable-asset
	// flow, zero when no recognized stable asset touched the wallet.
	StableValue decimal.Decimal
	// ValueEstimated is true when ResolvedValue is the nominal placeholder.
	ValueEstimated bool
}
