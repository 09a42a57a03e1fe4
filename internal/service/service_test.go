package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discord-economy-bot/internal/game/bombs"
	"discord-economy-bot/internal/model"
	"discord-economy-bot/internal/shop"
)

func TestParseOptionList(t *testing.T) {
	opts, err := ParseOptionList("s1mple:1.5, m0NESY : 2.4 ,ZywOo:3")
	require.NoError(t, err)
	require.Len(t, opts, 3)

	assert.Equal(t, "s1mple", opts["s1mple"].Name)
	assert.Equal(t, "m0NESY", opts["m0nesy"].Name)
	assert.True(t, opts["m0nesy"].Coeff.Equal(decimal.RequireFromString("2.4")))
	assert.True(t, opts["zywoo"].Coeff.Equal(decimal.NewFromInt(3)))
}

func TestParseOptionList_Rejects(t *testing.T) {
	tests := []struct {
		data string
		want error
	}{
		{"", ErrInvalidOptionList},
		{"solo:1.5", ErrNotEnoughOptions},
		{"a:1.5, A:2", ErrNotEnoughOptions},
		{"a:1.5, b", ErrInvalidOptionList},
		{"a:1.5, b:x", ErrInvalidOptionList},
		{"a:1.5, :2", ErrInvalidOptionList},
		{"a:1.5, b:0.9", ErrInvalidCoefficient},
		{"a:1.5, b:1000000", ErrInvalidCoefficient},
	}
	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			_, err := ParseOptionList(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseCoefficient(t *testing.T) {
	c, err := ParseCoefficient(" 1.23456 ")
	require.NoError(t, err)
	assert.Equal(t, "1.23456", c.String())

	for _, in := range []string{"", "x", "0.99", "1000000", "2e6"} {
		_, err := ParseCoefficient(in)
		assert.ErrorIs(t, err, ErrInvalidCoefficient, in)
	}
}

func TestOptionKey(t *testing.T) {
	assert.Equal(t, "navi", OptionKey("  NaVi "))
	assert.Equal(t, "over", OptionKey("Over"))
}

func TestParseExpiry(t *testing.T) {
	got, err := ParseExpiry("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseExpiry("2025-03-01 18:30")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)))

	_, err = ParseExpiry("01.03.2025")
	assert.ErrorIs(t, err, ErrInvalidExpiry)
}

func TestValidateTransfer(t *testing.T) {
	a := model.AccountKey{UserID: 1, CommunityID: 10}
	b := model.AccountKey{UserID: 2, CommunityID: 10}

	assert.NoError(t, ValidateTransfer(a, b, 1))
	assert.ErrorIs(t, ValidateTransfer(a, b, 0), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateTransfer(a, b, -5), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateTransfer(a, a, 5), ErrSelfTransfer)
	assert.ErrorIs(t, ValidateTransfer(a, model.AccountKey{UserID: 2, CommunityID: 11}, 5), ErrCrossCommunity)
}

func TestOptionError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &OptionError{Choice: "green", Valid: []string{"blue", "red"}})

	assert.ErrorIs(t, err, ErrInvalidOption)
	assert.True(t, IsUserError(err))

	oe, ok := IsOptionError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"blue", "red"}, oe.Valid)
	assert.Contains(t, oe.Error(), "blue, red")
}

func TestIsUserError(t *testing.T) {
	for _, err := range []error{
		ErrInsufficientBalance,
		fmt.Errorf("ctx: %w", ErrPromoExpired),
		shop.ErrInvalidPrice,
		bombs.ErrNotOwner,
	} {
		assert.True(t, IsUserError(err), "%v", err)
	}
	assert.False(t, IsUserError(errors.New("connection reset")))
}

func TestReasons(t *testing.T) {
	stake, payout := reasons("slots")
	assert.Equal(t, model.ReasonSlotStake, stake)
	assert.Equal(t, model.ReasonSlotPayout, payout)

	stake, payout = reasons("roulette")
	assert.Equal(t, model.ReasonRouletteStake, stake)
	assert.Equal(t, model.ReasonRoulettePayout, payout)
}
