// Package pricing derives share counts and prices from total asset values.
// All functions are pure; the platform minimum price is injected, never
// hard-coded here.
package pricing

import (
	"agroshare-backend/internal/pkg/apperr"
)

// Divisibility reports how a total value splits into shares. A non-zero
// Remainder is a soft warning: the caller decides whether to block submission,
// the engine only reports the discrepancy.
type Divisibility struct {
	Shares    int64 `json:"shares"`
	Remainder int64 `json:"remainder"`
}

// ShareCount returns floor(totalValue / sharePrice).
func ShareCount(totalValue, sharePrice int64) (int64, error) {
	if totalValue <= 0 {
		return 0, apperr.InvalidInput("total_value must be positive")
	}
	if sharePrice <= 0 {
		return 0, apperr.InvalidInput("share_price must be positive")
	}
	return totalValue / sharePrice, nil
}

// SharePrice returns floor(totalValue / shareCount).
func SharePrice(totalValue, shareCount int64) (int64, error) {
	if totalValue <= 0 {
		return 0, apperr.InvalidInput("total_value must be positive")
	}
	if shareCount < 1 {
		return 0, apperr.InvalidInput("share_count must be at least 1")
	}
	return totalValue / shareCount, nil
}

// CheckDivisibility computes the share count and the remainder left over when
// totalValue does not divide evenly by sharePrice.
func CheckDivisibility(totalValue, sharePrice int64) (Divisibility, error) {
	shares, err := ShareCount(totalValue, sharePrice)
	if err != nil {
		return Divisibility{}, err
	}
	remainder := totalValue - shares*sharePrice
	if remainder < 0 {
		remainder = -remainder
	}
	return Divisibility{Shares: shares, Remainder: remainder}, nil
}

// EnforceMinimumPrice fails when price is below the platform minimum.
func EnforceMinimumPrice(price, minimum int64) error {
	if price < minimum {
		return apperr.BelowMinimumPrice(price, minimum)
	}
	return nil
}
