package etherscan

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/tokenlens/pnl/internal/domain"
)

// ListTransfers fetches all token transfer legs for a wallet/token pair, oldest
// first. An empty slice is a valid "no activity" answer.
func (c *Client) ListTransfers(ctx context.Context, wallet, token common.Address) ([]domain.TransferLeg, error) {
	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "tokentx")
	params.Set("contractaddress", token.Hex())
	params.Set("address", wallet.Hex())
	params.Set("sort", "asc")

	var records []tokenTxRecord
	if err := c.getEnvelope(ctx, params, &records); err != nil {
		return nil, fmt.Errorf("fetching token transfers for %s: %w", wallet.Hex(), err)
	}

	return lo.Map(records, func(r tokenTxRecord, _ int) domain.TransferLeg {
		decimals, err := strconv.ParseInt(r.TokenDecimal, 10, 32)
		if err != nil {
			decimals = 18
		}
		ts, _ := strconv.ParseInt(r.TimeStamp, 10, 64)

		return domain.TransferLeg{
			TxHash:    common.HexToHash(r.Hash),
			Token:     common.HexToAddress(r.ContractAddress),
			From:      common.HexToAddress(r.From),
			To:        common.HexToAddress(r.To),
			Amount:    domain.ScaleAmount(r.Value, int32(decimals)),
			Timestamp: time.Unix(ts, 0).UTC(),
			GasUsed:   domain.SafeParse(r.GasUsed),
			GasPrice:  domain.SafeParse(r.GasPrice),
		}
	}), nil
}
