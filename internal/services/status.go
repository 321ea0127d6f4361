package services

import (
	"fmt"
	"sort"
	"time"

	"mensalidades/internal/core"
)

// Status of a (child, school) pair for the selected month.
type Status string

const (
	StatusPaid    Status = "Pago"
	StatusNotPaid Status = "Não Pago"
	StatusOverdue Status = "Pagamento Atrasado"
)

// StatusFilter selects which pairs the engine evaluates. Zero-value fields
// mean "all".
type StatusFilter struct {
	Month  string
	Child  string
	School string
}

func (f StatusFilter) normalized() StatusFilter {
	if f.Month == "" {
		f.Month = core.AllMonths
	}
	if f.Child == "" {
		f.Child = core.AllChildren
	}
	if f.School == "" {
		f.School = core.AllSchools
	}
	return f
}

func (f StatusFilter) matchChild(name string) bool {
	return f.Child == core.AllChildren || f.Child == name
}

func (f StatusFilter) matchSchool(school string) bool {
	return f.School == core.AllSchools || f.School == school
}

// StatusRow is one evaluated (child, school) pair.
type StatusRow struct {
	Child       string     `json:"nome"`
	School      string     `json:"escola"`
	Month       string     `json:"mes"`
	PaymentDate string     `json:"data"`
	Status      Status     `json:"status"`
	Amount      core.Money `json:"valor"`
}

// StatusResult carries the evaluated rows, the accumulated paid total and
// the label for the synthetic trailing total row. Message is set instead of
// rows when nothing matches the filters.
type StatusResult struct {
	Rows       []StatusRow `json:"rows"`
	Total      core.Money  `json:"total"`
	TotalLabel string      `json:"total_label"`
	Message    string      `json:"message,omitempty"`
}

// Engine evaluates payment status. OverdueAfterDays is the quiet period a
// pair may go without a dated payment before counting as overdue.
// ReferenceDay is the fixed day-of-month used by the older-month due-day
// rule.
type Engine struct {
	OverdueAfterDays int
	ReferenceDay     int
}

// NewEngine returns an engine with the historical defaults: 25 quiet days
// and a reference day of 15.
func NewEngine() Engine {
	return Engine{OverdueAfterDays: 25, ReferenceDay: 15}
}

type pair struct {
	child  string
	school string
}

// Evaluate produces one status row per candidate (child, school) pair
// under the filters, sorted by school then child, plus the paid total.
//
// Candidate selection depends on the selected month's calendar order.
// From Outubro on (and for AllMonths, order 13) every pair known to the
// store is a candidate, so children who stopped paying remain visible. For
// Janeiro through Setembro only pairs with a record in the exact selected
// month are considered. The asymmetry is a deliberate business rule.
func (e Engine) Evaluate(records []core.Payment, f StatusFilter, now time.Time) StatusResult {
	f = f.normalized()
	res := StatusResult{
		TotalLabel: fmt.Sprintf("Total para %s - %s - %s:", f.Month, f.Child, f.School),
	}

	if len(records) == 0 {
		res.Message = "Nenhum pagamento cadastrado."
		return res
	}

	broad := core.MonthOrderOf(f.Month) >= 10

	seen := map[pair]struct{}{}
	var candidates []pair
	for _, p := range records {
		if !f.matchChild(p.ChildName) || !f.matchSchool(p.School) {
			continue
		}
		if !broad && string(p.Month) != f.Month {
			continue
		}
		key := pair{p.ChildName, p.School}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, key)
	}

	if len(candidates) == 0 {
		res.Message = fmt.Sprintf("Nenhum pagamento para %s - %s - %s.", f.Month, f.Child, f.School)
		return res
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].school != candidates[j].school {
			return candidates[i].school < candidates[j].school
		}
		return candidates[i].child < candidates[j].child
	})

	for _, c := range candidates {
		row, emit := e.resolve(records, c, f.Month, broad, now)
		if !emit {
			continue
		}
		if row.Status == StatusPaid {
			res.Total.Cents += row.Amount.Cents
		}
		res.Rows = append(res.Rows, row)
	}

	return res
}

// resolve classifies a single candidate pair. The bool result is false when
// the pair is silently omitted (older-month rule with no due date reached).
func (e Engine) resolve(records []core.Payment, c pair, month string, broad bool, now time.Time) (StatusRow, bool) {
	row := StatusRow{
		Child:       c.child,
		School:      c.school,
		Month:       month,
		PaymentDate: "--",
	}

	// 1. An exact record for the selected month means paid.
	if p, ok := findMonthRecord(records, c, month); ok {
		row.PaymentDate = p.DisplayDateOrDash()
		row.Status = StatusPaid
		row.Amount = p.Amount
		return row, true
	}

	// 2. Outubro grace: a Setembro record at the same school keeps the pair
	// at merely Not-Paid, regardless of how dated the history is.
	if month == string(core.Outubro) {
		if _, ok := findMonthRecord(records, c, string(core.Setembro)); ok {
			row.Status = StatusNotPaid
			return row, true
		}
	}

	if broad {
		// 3. Recent months judge by the pair's latest dated payment.
		last, ok := LastPairPayment(records, c.child, c.school)
		if !ok {
			// Never paid: current-period delinquent.
			row.Status = StatusOverdue
			return row, true
		}
		if core.DaysSince(last, now) > e.OverdueAfterDays {
			row.Status = StatusOverdue
		} else {
			row.Status = StatusNotPaid
		}
		return row, true
	}

	// 4. Older months fall back to the personalized due day. Pairs not yet
	// past due emit no row at all.
	dueDay := UsualPaymentDay(records, c.child) + 5
	if e.ReferenceDay > dueDay {
		row.Status = StatusOverdue
		return row, true
	}
	return StatusRow{}, false
}

// findMonthRecord returns the first record for (child, school, month).
// Duplicate (child, month) pairs are tolerated; first in insertion order
// wins.
func findMonthRecord(records []core.Payment, c pair, month string) (core.Payment, bool) {
	for _, p := range records {
		if p.ChildName == c.child && string(p.Month) == month && p.School == c.school {
			return p, true
		}
	}
	return core.Payment{}, false
}
