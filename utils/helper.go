package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func ParseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

// QuarterOf returns the calendar quarter label ("2027-Q1") and the quarter
// start date for a timestamp. Quarter starts sort chronologically, labels
// are for display.
func QuarterOf(t time.Time) (string, time.Time) {
	q := (int(t.Month())-1)/3 + 1
	start := time.Date(t.Year(), time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	label := start.Format("2006") + "-Q" + string(rune('0'+q))
	return label, start
}

func FindOldestDate(dates ...*time.Time) *time.Time {
	var oldest *time.Time
	for _, d := range dates {
		if d == nil {
			continue
		}
		if oldest == nil || d.Before(*oldest) {
			oldest = d
		}
	}
	return oldest
}
