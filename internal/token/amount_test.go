package token

import (
	"testing"

	"github.com/oyevasu/spl-token-studio/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		decimals int
		want     uint64
		wantKind domain.ErrorKind
	}{
		{name: "whole with nine decimals", text: "1.5", decimals: 9, want: 1_500_000_000},
		{name: "integer", text: "42", decimals: 0, want: 42},
		{name: "floors extra precision", text: "3.4", decimals: 0, want: 3},
		{name: "floors beyond decimals", text: "0.123456789", decimals: 6, want: 123456},
		{name: "leading dot", text: ".5", decimals: 1, want: 5},
		{name: "trailing dot", text: "7.", decimals: 2, want: 700},
		{name: "surrounding whitespace", text: "  2.25 ", decimals: 2, want: 225},
		{name: "zero", text: "0", decimals: 9, want: 0},
		{name: "max uint64", text: "18446744073709551615", decimals: 0, want: ^uint64(0)},
		{name: "overflow", text: "18446744073709551616", decimals: 0, wantKind: domain.KindInvalidAmount},
		{name: "overflow after scaling", text: "18446744074", decimals: 9, wantKind: domain.KindInvalidAmount},
		{name: "negative", text: "-1", decimals: 2, wantKind: domain.KindInvalidAmount},
		{name: "plus sign", text: "+1", decimals: 2, wantKind: domain.KindInvalidAmount},
		{name: "exponent", text: "1e3", decimals: 2, wantKind: domain.KindInvalidAmount},
		{name: "letters", text: "abc", decimals: 2, wantKind: domain.KindInvalidAmount},
		{name: "empty", text: "", decimals: 2, wantKind: domain.KindInvalidAmount},
		{name: "only dot", text: ".", decimals: 2, wantKind: domain.KindInvalidAmount},
		{name: "two dots", text: "1.2.3", decimals: 2, wantKind: domain.KindInvalidAmount},
		{name: "decimals too large", text: "1", decimals: 10, wantKind: domain.KindInvalidDecimals},
		{name: "decimals negative", text: "1", decimals: -1, wantKind: domain.KindInvalidDecimals},
		{name: "decimals checked before text", text: "abc", decimals: 12, wantKind: domain.KindInvalidDecimals},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.text, tt.decimals)
			if tt.wantKind != domain.KindNone {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToDisplay(t *testing.T) {
	tests := []struct {
		base     uint64
		decimals int
		want     string
	}{
		{1_500_000_000, 9, "1.5"},
		{0, 9, "0"},
		{1, 9, "0.000000001"},
		{100, 2, "1"},
		{12345, 0, "12345"},
	}

	for _, tt := range tests {
		got, err := ToDisplay(tt.base, tt.decimals)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ToDisplay(1, 10)
	assert.Equal(t, domain.KindInvalidDecimals, domain.KindOf(err))
}

func TestAmountRoundTrip(t *testing.T) {
	for _, text := range []string{"1.5", "0.000001", "1000", "123.456789"} {
		base, err := ToBaseUnits(text, 6)
		require.NoError(t, err)
		back, err := ToDisplay(base, 6)
		require.NoError(t, err)

		want, err := parseAmount(text)
		require.NoError(t, err)
		got, err := parseAmount(back)
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "%s -> %d -> %s", text, base, back)
	}
}
