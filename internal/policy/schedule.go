// Package policy holds the national immunization schedule used to judge
// whether a child's record is up to date.
package policy

import "time"

// UpcomingWindow is how far ahead the upcoming-vaccination view looks for
// due follow-up doses.
const UpcomingWindow = 30 * 24 * time.Hour

// ageBracket maps an age band to the doses a child of that age should have
// received. Brackets are half-open: a child is in the bracket while
// ageDays < upTo.
type ageBracket struct {
	upTo  int // age in days, exclusive
	doses int
}

// Dose counts follow the expanded program on immunization schedule: three
// birth doses, then three more at each of weeks 6, 12 and 18, then annual
// boosters through the second year.
var schedule = []ageBracket{
	{upTo: 42, doses: 3},
	{upTo: 84, doses: 6},
	{upTo: 126, doses: 9},
	{upTo: 365, doses: 12},
	{upTo: 730, doses: 15},
}

// dosesAfterSchedule applies to every child older than the last bracket.
const dosesAfterSchedule = 18

// ExpectedDoses returns how many doses a child born at dob should have
// received by now. A child exactly on a bracket boundary falls into the
// older bracket.
func ExpectedDoses(dob, now time.Time) int {
	days := AgeInDays(dob, now)
	for _, bracket := range schedule {
		if days < bracket.upTo {
			return bracket.doses
		}
	}
	return dosesAfterSchedule
}

// UpToDate reports whether received doses meet the expectation for the age.
func UpToDate(dob, now time.Time, received int) bool {
	return received >= ExpectedDoses(dob, now)
}

// AgeInDays is the whole days elapsed between birth and now, never negative.
func AgeInDays(dob, now time.Time) int {
	if now.Before(dob) {
		return 0
	}
	return int(now.Sub(dob) / (24 * time.Hour))
}
