package services

import (
	"sort"
	"time"

	"mensalidades/internal/core"
)

// NeverPaid is the sentinel shown for children without any dated payment.
const NeverPaid = "Nunca pagou"

// DelinquentRow is one line of the delinquency report: a child behind on
// payments across all schools.
type DelinquentRow struct {
	Child       string `json:"nome"`
	LastPayment string `json:"ultimo_pagamento"`
}

// Delinquents lists every known child whose latest dated payment, across all
// schools, is older than the overdue threshold, or who never paid at all.
// Rows come out sorted by child name.
func (e Engine) Delinquents(records []core.Payment, now time.Time) []DelinquentRow {
	var out []DelinquentRow
	for _, child := range UniqueChildren(records) {
		last, ok := LastPayment(records, child)
		if ok && core.DaysSince(last, now) <= e.OverdueAfterDays {
			continue
		}
		label := NeverPaid
		if ok {
			label = last.Display()
		}
		out = append(out, DelinquentRow{Child: child, LastPayment: label})
	}
	return out
}

// OverdueEntry is one line of the overdue dashboard, grouped per
// (child, school) pair.
type OverdueEntry struct {
	Child       string `json:"nome"`
	School      string `json:"escola"`
	LastPayment string `json:"ultimo_pagamento"`
	DaysOverdue int    `json:"dias_em_atraso"`
	NeverPaid   bool   `json:"nunca_pagou"`
}

// OverdueDashboard applies the delinquency criterion per (child, school)
// pair, using each pair's own latest dated record, and exposes the days
// elapsed. Sorted by school then child.
func (e Engine) OverdueDashboard(records []core.Payment, now time.Time) []OverdueEntry {
	seen := map[pair]struct{}{}
	var out []OverdueEntry
	for _, p := range records {
		if p.ChildName == "" {
			continue
		}
		key := pair{p.ChildName, p.School}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		last, ok := LastPairPayment(records, key.child, key.school)
		if ok && core.DaysSince(last, now) <= e.OverdueAfterDays {
			continue
		}
		entry := OverdueEntry{
			Child:       key.child,
			School:      key.school,
			LastPayment: NeverPaid,
			NeverPaid:   !ok,
		}
		if ok {
			entry.LastPayment = last.Display()
			entry.DaysOverdue = core.DaysSince(last, now)
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].School != out[j].School {
			return out[i].School < out[j].School
		}
		return out[i].Child < out[j].Child
	})
	return out
}
