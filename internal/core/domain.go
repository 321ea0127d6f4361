package core

import (
	"errors"
	"strings"
)

// Month is one of the twelve Portuguese month names used on payment records.
type Month string

const (
	Janeiro   Month = "Janeiro"
	Fevereiro Month = "Fevereiro"
	Marco     Month = "Marco"
	Abril     Month = "Abril"
	Maio      Month = "Maio"
	Junho     Month = "Junho"
	Julho     Month = "Julho"
	Agosto    Month = "Agosto"
	Setembro  Month = "Setembro"
	Outubro   Month = "Outubro"
	Novembro  Month = "Novembro"
	Dezembro  Month = "Dezembro"
)

// Filter sentinels accepted wherever a month, child or school is selected.
const (
	AllMonths   = "Todos os Meses"
	AllChildren = "Todas as Crianças"
	AllSchools  = "Todas as Escolas"
)

// UnknownMonthOrder sorts blank or unrecognized months after Dezembro.
// AllMonths shares this order, which routes it to the broad
// candidate-selection branch of the status engine.
const UnknownMonthOrder = 13

var monthOrder = map[Month]int{
	Janeiro: 1, Fevereiro: 2, Marco: 3, Abril: 4, Maio: 5, Junho: 6,
	Julho: 7, Agosto: 8, Setembro: 9, Outubro: 10, Novembro: 11, Dezembro: 12,
}

var monthNames = []Month{
	Janeiro, Fevereiro, Marco, Abril, Maio, Junho,
	Julho, Agosto, Setembro, Outubro, Novembro, Dezembro,
}

// MonthNames returns the twelve months in calendar order.
func MonthNames() []Month {
	out := make([]Month, len(monthNames))
	copy(out, monthNames)
	return out
}

// Order returns the calendar position of the month (Janeiro=1 .. Dezembro=12).
// Lookup ignores case so legacy records with odd capitalization still sort.
func (m Month) Order() int {
	if n, ok := monthOrder[m]; ok {
		return n
	}
	for name, n := range monthOrder {
		if strings.EqualFold(string(name), string(m)) {
			return n
		}
	}
	return UnknownMonthOrder
}

// MonthOrderOf is Order for an arbitrary selection string, including AllMonths.
func MonthOrderOf(s string) int {
	return Month(s).Order()
}

// IsKnownMonth reports whether s names one of the twelve months.
func IsKnownMonth(s string) bool {
	return Month(s).Order() != UnknownMonthOrder
}

// Schools is the fixed catalog of school/shift entries.
var Schools = []string{
	"Altenfelder - Manhã", "Altenfelder - Tarde",
	"Josué de Castro - Manhã", "Josué de Castro - Tarde",
	"Paulo Nogueira - Manhã", "Paulo Nogueira - Tarde",
	"Antonio Candido - Manhã", "Antonio Candido - Tarde",
	"Gepan", "Creche VP", "Creche dos Anjos", "Creche EC", "Parquinho", "CCA",
}

// SchoolCatalog returns a copy of the school catalog.
func SchoolCatalog() []string {
	out := make([]string, len(Schools))
	copy(out, Schools)
	return out
}

var (
	ErrEmptyChildName = errors.New("empty child name")
	ErrUnknownMonth   = errors.New("unknown month")
	ErrEmptySchool    = errors.New("empty school")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
)

// Payment is a single monthly payment record for a child.
//
// The JSON field names are the on-disk format of pagamentos.json and must not
// change: legacy files predate this implementation. PaidOn may be zero and
// DisplayDate empty on records imported from older files.
type Payment struct {
	ChildName   string `json:"nome"`
	Month       Month  `json:"mes"`
	School      string `json:"escola"`
	PaidOn      Date   `json:"data"`
	DisplayDate string `json:"data_exibicao"`
	Amount      Money  `json:"valor"`
}

// Validate checks the invariants enforced on newly entered records.
// Records loaded from disk are accepted as-is.
func (p Payment) Validate() error {
	if strings.TrimSpace(p.ChildName) == "" {
		return ErrEmptyChildName
	}
	if !IsKnownMonth(string(p.Month)) {
		return ErrUnknownMonth
	}
	if strings.TrimSpace(p.School) == "" {
		return ErrEmptySchool
	}
	return p.Amount.Validate()
}

// DisplayDateOrDash returns the stored display date, a formatted internal
// date as fallback, or "--" when the record carries no date at all.
func (p Payment) DisplayDateOrDash() string {
	if p.DisplayDate != "" {
		return p.DisplayDate
	}
	if !p.PaidOn.IsZero() {
		return p.PaidOn.Display()
	}
	return "--"
}
