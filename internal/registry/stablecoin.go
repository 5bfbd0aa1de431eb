// Package registry holds the static table of recognized stable-value tokens.
package registry

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// Peg classifies which fiat currency a stable token tracks.
type Peg string

const (
	PegUSD Peg = "USD"
	PegEUR Peg = "EUR"
)

// Record describes one recognized stable-value token. Entries with Active=false
// are deprecated or renamed tokens kept so that historical transactions still
// classify correctly.
type Record struct {
	Address  common.Address
	Symbol   string
	Decimals int32
	Peg      Peg
	Active   bool
}

// stablecoins is the fixed registry table. Addresses are Ethereum mainnet.
var stablecoins = []Record{
	{Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Symbol: "USDC", Decimals: 6, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), Symbol: "USDT", Decimals: 6, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Symbol: "DAI", Decimals: 18, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0x4Fabb145d64652a948d72533023f6E7A623C7C53"), Symbol: "BUSD", Decimals: 18, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0x0000000000085d4780B73119b644AE5ecd22b376"), Symbol: "TUSD", Decimals: 18, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0x8E870D67F660D95d5be530380D0eC0bd388289E1"), Symbol: "USDP", Decimals: 18, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0x056Fd409E1d7A124BD7017459dFEa2F387b6d5Cd"), Symbol: "GUSD", Decimals: 2, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0x853d955aCEf822Db058eb8505911ED77F175b99e"), Symbol: "FRAX", Decimals: 18, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0x5f98805A4E8be255a32880FDeC7F6728C6568bA0"), Symbol: "LUSD", Decimals: 18, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0x57Ab1ec28D129707052df4dF418D58a2D46d5f51"), Symbol: "sUSD", Decimals: 18, Peg: PegUSD, Active: true},
	{Address: common.HexToAddress("0xdB25f211AB05b1c97D595516F45794528a807ad8"), Symbol: "EURS", Decimals: 2, Peg: PegEUR, Active: true},
	{Address: common.HexToAddress("0xC581b735A1688071A1746c968e0798D642EDE491"), Symbol: "EURT", Decimals: 6, Peg: PegEUR, Active: true},
	{Address: common.HexToAddress("0x1a7e4e63778B4f12a199C062f3eFdD288afCBce8"), Symbol: "agEUR", Decimals: 18, Peg: PegEUR, Active: true},
	// Single-collateral DAI, renamed to SAI after the MCD migration.
	{Address: common.HexToAddress("0x89d24A6b4CcB1B6fAA2625fE562bDD9a23260359"), Symbol: "SAI", Decimals: 18, Peg: PegUSD, Active: false},
}

// byAddress indexes the table for O(1) lookup. common.HexToAddress normalizes
// case, so lookups are case-insensitive by construction.
var byAddress = lo.SliceToMap(stablecoins, func(r Record) (common.Address, Record) {
	return r.Address, r
})

// All returns every registry record, active and legacy.
func All() []Record {
	return stablecoins
}

// Active returns only the currently active records.
func Active() []Record {
	return lo.Filter(stablecoins, func(r Record, _ int) bool { return r.Active })
}

// IsStable reports whether the address is a recognized stable-value token.
// Legacy entries still match.
func IsStable(addr common.Address) bool {
	_, ok := byAddress[addr]
	return ok
}

// Info returns the registry record for an address. Absence is a valid, silent result.
func Info(addr common.Address) (Record, bool) {
	r, ok := byAddress[addr]
	return r, ok
}
