package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpectedDoses(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		ageDays int
		want    int
	}{
		{name: "newborn", ageDays: 0, want: 3},
		{name: "last day of birth bracket", ageDays: 41, want: 3},
		{name: "six weeks exactly moves to the next bracket", ageDays: 42, want: 6},
		{name: "twelve weeks", ageDays: 84, want: 9},
		{name: "eighteen weeks", ageDays: 126, want: 12},
		{name: "just under one year", ageDays: 364, want: 12},
		{name: "one year", ageDays: 365, want: 15},
		{name: "just under two years", ageDays: 729, want: 15},
		{name: "two years and beyond", ageDays: 730, want: 18},
		{name: "ten years", ageDays: 3650, want: 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dob := now.AddDate(0, 0, -tt.ageDays)
			assert.Equal(t, tt.want, ExpectedDoses(dob, now))
		})
	}
}

func TestUpToDate(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	dob := now.AddDate(0, 0, -100) // 9 doses expected

	assert.True(t, UpToDate(dob, now, 9))
	assert.True(t, UpToDate(dob, now, 12))
	assert.False(t, UpToDate(dob, now, 8))
}

func TestAgeInDays(t *testing.T) {
	dob := time.Date(2026, time.January, 1, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, AgeInDays(dob, dob))
	assert.Equal(t, 0, AgeInDays(dob, dob.Add(23*time.Hour)))
	assert.Equal(t, 1, AgeInDays(dob, dob.Add(24*time.Hour)))
	assert.Equal(t, 0, AgeInDays(dob, dob.Add(-time.Hour)), "future birth date clamps to zero")
}
