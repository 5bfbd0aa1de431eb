package position

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/tokenlens/pnl/internal/classifier"
	"github.com/tokenlens/pnl/internal/domain"
)

var (
	wallet = common.HexToAddress("0x1111111111111111111111111111111111111111")
	pool   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	token  = common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984")
)

type mockLedger struct {
	legs []domain.TransferLeg
	err  error
}

func (m *mockLedger) ListTransfers(_ context.Context, _, _ common.Address) ([]domain.TransferLeg, error) {
	return m.legs, m.err
}

type mockResolver struct {
	details map[common.Hash]domain.TransactionDetail
}

func (m *mockResolver) ResolveTransaction(_ context.Context, hash common.Hash) domain.TransactionDetail {
	if d, ok := m.details[hash]; ok {
		return d
	}
	return domain.TransactionDetail{Assets: domain.NewAssetSet()}
}

type mockMarket struct {
	price  decimal.Decimal
	err    error
	usd    decimal.Decimal
	usdErr error
}

func (m *mockMarket) CurrentPrice(_ context.Context, _ common.Address) (decimal.Decimal, error) {
	return m.price, m.err
}

func (m *mockMarket) SpotNativeUSD(_ context.Context) (decimal.Decimal, error) {
	if m.usdErr != nil {
		return decimal.Zero, m.usdErr
	}
	return m.usd, nil
}

type noPrices struct{}

func (noPrices) PriceAt(_ context.Context, _ common.Address, _ time.Time) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("no price")
}

type noSpot struct{}

func (noSpot) SpotNativeUSD(_ context.Context) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("no spot")
}

func newAccountant(ledger *mockLedger, res *mockResolver, market *mockMarket) *Accountant {
	cls := classifier.NewService(noPrices{}, noSpot{})
	return NewAccountant(ledger, res, cls, market, 4)
}

func leg(hash string, from, to common.Address, amount string, ts int64) domain.TransferLeg {
	return domain.TransferLeg{
		TxHash:    common.HexToHash(hash),
		Token:     token,
		From:      from,
		To:        to,
		Amount:    decimal.RequireFromString(amount),
		Timestamp: time.Unix(ts, 0).UTC(),
	}
}

func detail(direct, internal string) domain.TransactionDetail {
	return domain.TransactionDetail{
		DirectValue:   decimal.RequireFromString(direct),
		InternalValue: decimal.RequireFromString(internal),
		Assets:        domain.NewAssetSet(),
	}
}

// The canonical scenario: buy 100 tokens for 1.0 native, then sell 40 for 0.6.
func TestComputePositionScenario(t *testing.T) {
	ledger := &mockLedger{legs: []domain.TransferLeg{
		leg("0x01", pool, wallet, "100", 100),
		leg("0x02", wallet, pool, "40", 200),
	}}
	res := &mockResolver{details: map[common.Hash]domain.TransactionDetail{
		common.HexToHash("0x01"): detail("1.0", "0"),
		common.HexToHash("0x02"): detail("0", "0.6"),
	}}
	market := &mockMarket{price: decimal.RequireFromString("0.012")}

	report, err := newAccountant(ledger, res, market).ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TokensBought.String() != "100" {
		t.Errorf("TokensBought = %s, want 100", report.TokensBought)
	}
	if report.TokensSold.String() != "40" {
		t.Errorf("TokensSold = %s, want 40", report.TokensSold)
	}
	if report.CurrentBalance.String() != "60" {
		t.Errorf("CurrentBalance = %s, want 60", report.CurrentBalance)
	}
	if report.CostBasisPerToken.String() != "0.01" {
		t.Errorf("CostBasisPerToken = %s, want 0.01", report.CostBasisPerToken)
	}
	if report.RealizedPnL.String() != "0.2" {
		t.Errorf("RealizedPnL = %s, want 0.2 (0.6 - 40*0.01)", report.RealizedPnL)
	}
	// 60 * (0.012 - 0.01)
	if report.UnrealizedPnL.String() != "0.12" {
		t.Errorf("UnrealizedPnL = %s, want 0.12", report.UnrealizedPnL)
	}
	if report.BuyCount != 1 || report.SellCount != 1 {
		t.Errorf("counts = %d/%d, want 1/1", report.BuyCount, report.SellCount)
	}
}

func TestBalanceIdentity(t *testing.T) {
	ledger := &mockLedger{legs: []domain.TransferLeg{
		leg("0x01", pool, wallet, "100", 100),
		leg("0x02", wallet, pool, "30", 200),
		leg("0x03", pool, wallet, "15", 300),
	}}
	res := &mockResolver{details: map[common.Hash]domain.TransactionDetail{
		common.HexToHash("0x01"): detail("1.0", "0"),
		common.HexToHash("0x02"): detail("0", "0.4"),
		common.HexToHash("0x03"): detail("0.2", "0"),
	}}

	report, err := newAccountant(ledger, res, &mockMarket{price: decimal.NewFromInt(1)}).
		ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.CurrentBalance.Equal(report.TokensBought.Sub(report.TokensSold)) {
		t.Errorf("balance identity broken: %s != %s - %s",
			report.CurrentBalance, report.TokensBought, report.TokensSold)
	}
	if report.TokensBought.IsNegative() || report.TokensSold.IsNegative() {
		t.Error("token totals must be non-negative")
	}
}

func TestComputePositionDeterministic(t *testing.T) {
	ledger := &mockLedger{legs: []domain.TransferLeg{
		// Deliberately unsorted input: the fold must re-sort by timestamp.
		leg("0x03", pool, wallet, "15", 300),
		leg("0x01", pool, wallet, "100", 100),
		leg("0x02", wallet, pool, "30", 200),
	}}
	res := &mockResolver{details: map[common.Hash]domain.TransactionDetail{
		common.HexToHash("0x01"): detail("1.0", "0"),
		common.HexToHash("0x02"): detail("0", "0.4"),
		common.HexToHash("0x03"): detail("0.2", "0"),
	}}

	acc := newAccountant(ledger, res, &mockMarket{price: decimal.NewFromInt(1)})

	first, err := acc.ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := acc.ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.RealizedPnL.Equal(second.RealizedPnL) {
		t.Errorf("realized PnL not reproducible: %s vs %s", first.RealizedPnL, second.RealizedPnL)
	}
	// Sell at t=200 happens before the buy at t=300: basis at sell time is 0.01,
	// so realized = 0.4 - 30*0.01 = 0.1, not a value computed against the final
	// blended basis.
	if first.RealizedPnL.String() != "0.1" {
		t.Errorf("RealizedPnL = %s, want 0.1", first.RealizedPnL)
	}
}

func TestSwapAndUnknownExcludedButListed(t *testing.T) {
	ledger := &mockLedger{legs: []domain.TransferLeg{
		leg("0x01", pool, wallet, "100", 100),
		// Self-routing: wallet both sends and receives, no method, no stable.
		leg("0x02", wallet, pool, "50", 200),
		leg("0x02", pool, wallet, "50", 200),
	}}
	res := &mockResolver{details: map[common.Hash]domain.TransactionDetail{
		common.HexToHash("0x01"): detail("1.0", "0"),
	}}

	report, err := newAccountant(ledger, res, &mockMarket{price: decimal.NewFromInt(1)}).
		ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TokensSold.String() != "0" {
		t.Errorf("TokensSold = %s, want 0 (unknown excluded from accumulation)", report.TokensSold)
	}
	if len(report.Transactions) != 2 {
		t.Fatalf("Transactions = %d, want 2 (exclusion still listed)", len(report.Transactions))
	}

	var sawUnknown bool
	for _, tx := range report.Transactions {
		if tx.Intent == domain.IntentUnknown {
			sawUnknown = true
		}
	}
	if !sawUnknown {
		t.Error("ambiguous transaction missing from the report's transaction list")
	}
}

func TestNoActivity(t *testing.T) {
	acc := newAccountant(&mockLedger{}, &mockResolver{}, &mockMarket{})
	_, err := acc.ComputePosition(context.Background(), wallet, token)
	if !errors.Is(err, ErrNoActivity) {
		t.Errorf("err = %v, want ErrNoActivity", err)
	}
}

func TestTransportFailureIsNoActivity(t *testing.T) {
	acc := newAccountant(&mockLedger{err: errors.New("connection refused")}, &mockResolver{}, &mockMarket{})
	_, err := acc.ComputePosition(context.Background(), wallet, token)
	if !errors.Is(err, ErrNoActivity) {
		t.Errorf("transport failure should surface as ErrNoActivity, got %v", err)
	}
}

func TestSentinelPriceWhenSpotUnavailable(t *testing.T) {
	ledger := &mockLedger{legs: []domain.TransferLeg{
		leg("0x01", pool, wallet, "100", 100),
	}}
	res := &mockResolver{details: map[common.Hash]domain.TransactionDetail{
		common.HexToHash("0x01"): detail("1.0", "0"),
	}}

	report, err := newAccountant(ledger, res, &mockMarket{err: errors.New("down")}).
		ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("spot failure must not abort the report: %v", err)
	}

	if report.PriceKnown {
		t.Error("PriceKnown = true, want false")
	}
	// Sentinel is the cost basis: the holding is valued at cost.
	if !report.UnrealizedPnL.IsZero() {
		t.Errorf("UnrealizedPnL = %s, want 0 under the sentinel price", report.UnrealizedPnL)
	}
	if !report.CurrentPriceNative.Equal(report.CostBasisPerToken) {
		t.Errorf("sentinel price = %s, want cost basis %s",
			report.CurrentPriceNative, report.CostBasisPerToken)
	}
}

func TestNegativeBalanceIsInvariantViolation(t *testing.T) {
	// Only an outgoing leg: the tokens were acquired through a transaction this
	// wallet/token view never saw (or an excluded swap), so selling more than
	// was bought must be refused, not reported.
	ledger := &mockLedger{legs: []domain.TransferLeg{
		leg("0x01", wallet, pool, "40", 100),
	}}
	res := &mockResolver{details: map[common.Hash]domain.TransactionDetail{
		common.HexToHash("0x01"): detail("0", "0.6"),
	}}

	_, err := newAccountant(ledger, res, &mockMarket{price: decimal.NewFromInt(1)}).
		ComputePosition(context.Background(), wallet, token)
	if err == nil {
		t.Fatal("expected an invariant error for a negative balance, got a report")
	}
	if errors.Is(err, ErrNoActivity) {
		t.Fatalf("negative balance must not masquerade as no activity: %v", err)
	}
}

func TestReportCarriesUSDFigures(t *testing.T) {
	ledger := &mockLedger{legs: []domain.TransferLeg{
		leg("0x01", pool, wallet, "100", 100),
		leg("0x02", wallet, pool, "40", 200),
	}}
	res := &mockResolver{details: map[common.Hash]domain.TransactionDetail{
		common.HexToHash("0x01"): detail("1.0", "0"),
		common.HexToHash("0x02"): detail("0", "0.6"),
	}}
	market := &mockMarket{price: decimal.RequireFromString("0.012"), usd: decimal.NewFromInt(2000)}

	report, err := newAccountant(ledger, res, market).ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !report.USDKnown {
		t.Fatal("USDKnown = false, want true")
	}
	if report.NativeCoinPriceUSD.String() != "2000" {
		t.Errorf("NativeCoinPriceUSD = %s, want 2000", report.NativeCoinPriceUSD)
	}
	if report.RealizedPnLUSD.String() != "400" {
		t.Errorf("RealizedPnLUSD = %s, want 400 (0.2 * 2000)", report.RealizedPnLUSD)
	}
	if report.UnrealizedPnLUSD.String() != "240" {
		t.Errorf("UnrealizedPnLUSD = %s, want 240 (0.12 * 2000)", report.UnrealizedPnLUSD)
	}
	// 60 tokens * 0.012 native * 2000 USD
	if report.CurrentHoldingsUSD.String() != "1440" {
		t.Errorf("CurrentHoldingsUSD = %s, want 1440", report.CurrentHoldingsUSD)
	}
}

func TestUSDFiguresDegradeWhenSpotUnavailable(t *testing.T) {
	ledger := &mockLedger{legs: []domain.TransferLeg{
		leg("0x01", pool, wallet, "100", 100),
	}}
	res := &mockResolver{details: map[common.Hash]domain.TransactionDetail{
		common.HexToHash("0x01"): detail("1.0", "0"),
	}}
	market := &mockMarket{price: decimal.NewFromInt(1), usdErr: errors.New("down")}

	report, err := newAccountant(ledger, res, market).ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("USD spot failure must not abort the report: %v", err)
	}

	if report.USDKnown {
		t.Error("USDKnown = true, want false")
	}
	if !report.RealizedPnLUSD.IsZero() || !report.UnrealizedPnLUSD.IsZero() || !report.CurrentHoldingsUSD.IsZero() {
		t.Errorf("USD figures = %s/%s/%s, want all zero without a spot price",
			report.RealizedPnLUSD, report.UnrealizedPnLUSD, report.CurrentHoldingsUSD)
	}
}

func TestFeesChargedForEveryTransaction(t *testing.T) {
	gasLeg := leg("0x01", pool, wallet, "100", 100)
	gasLeg.GasUsed = decimal.NewFromInt(100000)
	gasLeg.GasPrice = decimal.NewFromInt(20000000000)

	// Second leg of the same transaction; its gas must not be double-charged.
	twin := leg("0x01", wallet, pool, "1", 100)
	twin.GasUsed = gasLeg.GasUsed
	twin.GasPrice = gasLeg.GasPrice

	ledger := &mockLedger{legs: []domain.TransferLeg{gasLeg, twin}}
	res := &mockResolver{}

	report, err := newAccountant(ledger, res, &mockMarket{price: decimal.NewFromInt(1)}).
		ComputePosition(context.Background(), wallet, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.FeesPaid.String() != "0.002" {
		t.Errorf("FeesPaid = %s, want 0.002 (charged once per transaction)", report.FeesPaid)
	}
}
