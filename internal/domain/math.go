package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// weiDecimals is the fractional-unit count of the native coin.
const weiDecimals = 18

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromWei converts a raw wei quantity to native-coin units.
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -weiDecimals)
}

// ScaleAmount converts a raw token quantity string to token units using the
// token's fractional-unit count. Invalid input yields zero.
func ScaleAmount(raw string, decimals int32) decimal.Decimal {
	return SafeParse(raw).Shift(-decimals)
}

// GasFee returns gasUsed*gasPrice scaled from wei to native-coin units.
func GasFee(gasUsed, gasPrice decimal.Decimal) decimal.Decimal {
	return gasUsed.Mul(gasPrice).Shift(-weiDecimals)
}
