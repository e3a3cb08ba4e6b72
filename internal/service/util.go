package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// FormatSAR renders halalas as "1,250.50 ر.س".
func FormatSAR(halalas int64) string {
	sign := ""
	if halalas < 0 {
		sign = "-"
		halalas = -halalas
	}
	riyals := halalas / 100
	frac := halalas % 100
	s := fmt.Sprintf("%d", riyals)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if frac == 0 {
		return fmt.Sprintf("%s%s ر.س", sign, s)
	}
	return fmt.Sprintf("%s%s.%02d ر.س", sign, s, frac)
}

// notFound maps gorm.ErrRecordNotFound to the given sentinel and wraps anything else.
func notFound(err error, sentinel error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", op, err)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
