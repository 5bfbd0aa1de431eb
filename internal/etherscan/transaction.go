package etherscan

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/tokenlens/pnl/internal/domain"
)

// RawTransaction is the subset of eth_getTransactionByHash the resolver needs.
type RawTransaction struct {
	// Value is the direct native-coin amount, already scaled from wei.
	Value decimal.Decimal
	// Input is the raw call data.
	Input []byte
}

// ReceiptLog is one receipt log with decoded address, topics and data.
type ReceiptLog struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// TransactionByHash fetches the transaction's direct value and call input.
// found is false when the ledger does not know the hash.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (tx RawTransaction, found bool, err error) {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_getTransactionByHash")
	params.Set("txhash", hash.Hex())

	var raw proxyTransaction
	found, err = c.getProxy(ctx, params, &raw)
	if err != nil || !found {
		return RawTransaction{}, found, err
	}

	value, err := hexutil.DecodeBig(raw.Value)
	if err != nil {
		return RawTransaction{}, false, fmt.Errorf("decoding value of %s: %w", hash.Hex(), err)
	}

	input, err := hexutil.Decode(raw.Input)
	if err != nil {
		// Malformed input data still leaves the value usable.
		input = nil
	}

	return RawTransaction{Value: domain.FromWei(value), Input: input}, true, nil
}

// TransactionReceipt fetches the receipt logs for a transaction.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (logs []ReceiptLog, found bool, err error) {
	params := url.Values{}
	params.Set("module", "proxy")
	params.Set("action", "eth_getTransactionReceipt")
	params.Set("txhash", hash.Hex())

	var raw proxyReceipt
	found, err = c.getProxy(ctx, params, &raw)
	if err != nil || !found {
		return nil, found, err
	}

	for _, l := range raw.Logs {
		data, err := hexutil.Decode(l.Data)
		if err != nil {
			data = nil
		}
		topics := make([]common.Hash, 0, len(l.Topics))
		for _, t := range l.Topics {
			topics = append(topics, common.HexToHash(t))
		}
		logs = append(logs, ReceiptLog{
			Address: common.HexToAddress(l.Address),
			Topics:  topics,
			Data:    data,
		})
	}
	return logs, true, nil
}

// InternalTransfers returns the native-coin values moved by internal calls of a
// transaction, scaled from wei. Failed internal calls are skipped.
func (c *Client) InternalTransfers(ctx context.Context, hash common.Hash) ([]decimal.Decimal, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlistinternal")
	params.Set("txhash", hash.Hex())

	var records []internalTxRecord
	if err := c.getEnvelope(ctx, params, &records); err != nil {
		return nil, fmt.Errorf("fetching internal transfers of %s: %w", hash.Hex(), err)
	}

	var values []decimal.Decimal
	for _, r := range records {
		if r.IsError == "1" {
			continue
		}
		values = append(values, domain.SafeParse(r.Value).Shift(-18))
	}
	return values, nil
}
