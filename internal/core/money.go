// Package core holds the payment domain: records, months, dates and money.
//
// Money is stored in integer cents to keep totals exact; the JSON form stays
// a plain decimal number for compatibility with files written by older
// versions of the system.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in cents (centavos).
type Money struct {
	Cents int64
}

// Validate rejects negative amounts. Zero is allowed: the store keeps
// whatever amount was entered.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Reais returns the decimal value for display purposes only.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// BRL formats the amount as "R$ 123.45".
func (m Money) BRL() string {
	return fmt.Sprintf("R$ %d.%02d", m.Cents/100, m.Cents%100)
}

// ParseDecimalToCents converts a user-entered decimal string to cents with
// half-up rounding on the third decimal place. Both "12.34" and "12,34" are
// accepted. Negative values are rejected; zero is allowed.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// MarshalJSON writes the amount as a decimal number, e.g. 100.5.
func (m Money) MarshalJSON() ([]byte, error) {
	if m.Cents%100 == 0 {
		return []byte(strconv.FormatInt(m.Cents/100, 10)), nil
	}
	return []byte(strconv.FormatFloat(float64(m.Cents)/100.0, 'f', -1, 64)), nil
}

// UnmarshalJSON reads any JSON number, rounding to cents. Legacy files may
// carry arbitrary floats; they are kept as-is rather than rejected.
func (m *Money) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	if f >= 0 {
		m.Cents = int64(f*100.0 + 0.5)
	} else {
		m.Cents = int64(f*100.0 - 0.5)
	}
	return nil
}
