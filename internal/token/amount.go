// internal/token/amount.go
package token

import (
	"math/big"
	"strings"

	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/shopspring/decimal"
)

// MaxDecimals is the largest decimals value a mint may be created with here.
const MaxDecimals = 9

var maxBaseUnits = decimal.NewFromBigInt(new(big.Int).SetUint64(^uint64(0)), 0)

// ValidateDecimals checks that decimals lies in [0, MaxDecimals].
func ValidateDecimals(decimals int) error {
	if decimals < 0 || decimals > MaxDecimals {
		return domain.Errorf(domain.KindInvalidDecimals, "decimals must be between 0 and %d, got %d", MaxDecimals, decimals)
	}
	return nil
}

// ToBaseUnits converts user-entered amount text into integer base units.
// Fractional digits beyond decimals are truncated toward zero.
func ToBaseUnits(amountText string, decimals int) (uint64, error) {
	if err := ValidateDecimals(decimals); err != nil {
		return 0, err
	}

	d, err := parseAmount(amountText)
	if err != nil {
		return 0, err
	}

	scaled := d.Shift(int32(decimals)).Floor()
	if scaled.GreaterThan(maxBaseUnits) {
		return 0, domain.Errorf(domain.KindInvalidAmount, "amount %q exceeds the maximum representable value", amountText)
	}
	return scaled.BigInt().Uint64(), nil
}

// ToDisplay renders base units as the shortest exact decimal string.
func ToDisplay(baseUnits uint64, decimals int) (string, error) {
	if err := ValidateDecimals(decimals); err != nil {
		return "", err
	}
	return ToDecimal(baseUnits, uint8(decimals)).String(), nil
}

// ToDecimal returns base units as a decimal value scaled down by decimals.
func ToDecimal(baseUnits uint64, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(baseUnits), -int32(decimals))
}

// parseAmount accepts only plain non-negative decimal notation: digits with at
// most one dot. decimal.NewFromString alone would also take signs and exponents.
func parseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, domain.Errorf(domain.KindInvalidAmount, "amount is empty")
	}

	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return decimal.Zero, domain.Errorf(domain.KindInvalidAmount, "amount %q is not a non-negative decimal number", text)
		}
	}
	if digits == 0 || dots > 1 {
		return decimal.Zero, domain.Errorf(domain.KindInvalidAmount, "amount %q is not a non-negative decimal number", text)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.Wrap(domain.KindInvalidAmount, err, "amount %q", text)
	}
	return d, nil
}

// ValidateAmountText checks the syntax of amount text without knowing decimals.
func ValidateAmountText(amountText string) error {
	_, err := parseAmount(amountText)
	return err
}
