// Package services holds the business logic over payment snapshots: derived
// views, the status engine and the delinquency reports.
package services

import (
	"sort"

	"mensalidades/internal/core"
)

// DefaultPaymentDay is assumed for children with no dated payment history.
const DefaultPaymentDay = 13

// UniqueMonths returns the distinct non-blank months present among the
// records, in calendar order with unrecognized names last, prefixed with the
// AllMonths sentinel.
func UniqueMonths(records []core.Payment) []string {
	seen := map[core.Month]struct{}{}
	var months []core.Month
	for _, p := range records {
		if p.Month == "" {
			continue
		}
		if _, ok := seen[p.Month]; ok {
			continue
		}
		seen[p.Month] = struct{}{}
		months = append(months, p.Month)
	}
	sort.SliceStable(months, func(i, j int) bool {
		return months[i].Order() < months[j].Order()
	})
	out := make([]string, 0, len(months)+1)
	out = append(out, core.AllMonths)
	for _, m := range months {
		out = append(out, string(m))
	}
	return out
}

// UniqueChildren returns the distinct non-blank child names, sorted.
func UniqueChildren(records []core.Payment) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, p := range records {
		if p.ChildName == "" {
			continue
		}
		if _, ok := seen[p.ChildName]; ok {
			continue
		}
		seen[p.ChildName] = struct{}{}
		names = append(names, p.ChildName)
	}
	sort.Strings(names)
	return names
}

// UsualPaymentDay returns the most frequent day-of-month among the child's
// dated records. Ties go to the lowest day so results are reproducible.
// Children with no dated history get DefaultPaymentDay.
func UsualPaymentDay(records []core.Payment, child string) int {
	counts := map[int]int{}
	for _, p := range records {
		if p.ChildName != child || p.PaidOn.IsZero() {
			continue
		}
		counts[p.PaidOn.Day()]++
	}
	if len(counts) == 0 {
		return DefaultPaymentDay
	}
	best, bestCount := 0, 0
	for day, n := range counts {
		if n > bestCount || (n == bestCount && day < best) {
			best, bestCount = day, n
		}
	}
	return best
}

// LastPayment returns the latest internal date among the child's dated
// records across all schools. Undated records are skipped.
func LastPayment(records []core.Payment, child string) (core.Date, bool) {
	var last core.Date
	found := false
	for _, p := range records {
		if p.ChildName != child || p.PaidOn.IsZero() {
			continue
		}
		if !found || p.PaidOn.After(last.Time) {
			last = p.PaidOn
			found = true
		}
	}
	return last, found
}

// LastPairPayment is LastPayment restricted to one (child, school) pair.
func LastPairPayment(records []core.Payment, child, school string) (core.Date, bool) {
	var last core.Date
	found := false
	for _, p := range records {
		if p.ChildName != child || p.School != school || p.PaidOn.IsZero() {
			continue
		}
		if !found || p.PaidOn.After(last.Time) {
			last = p.PaidOn
			found = true
		}
	}
	return last, found
}
