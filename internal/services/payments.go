package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"mensalidades/internal/amqp"
	"mensalidades/internal/core"
	"mensalidades/internal/ledger"
)

// ValidationError reports which input field of a form was rejected. Month is
// set when the field belongs to one row of the monthly grid.
type ValidationError struct {
	Field string
	Month core.Month
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Month != "" {
		return fmt.Sprintf("%s (%s): %v", e.Field, e.Month, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PaymentForm is the raw add-payment input, validated as a whole before any
// mutation is applied.
type PaymentForm struct {
	Name   string
	Month  string
	School string
	Date   string
	Amount string
}

// Parse validates the form and builds the record, or returns a
// *ValidationError naming the offending field.
func (f PaymentForm) Parse() (core.Payment, error) {
	name := strings.TrimSpace(f.Name)
	if name == "" {
		return core.Payment{}, &ValidationError{Field: "nome", Err: core.ErrEmptyChildName}
	}
	if !core.IsKnownMonth(f.Month) {
		return core.Payment{}, &ValidationError{Field: "mes", Err: core.ErrUnknownMonth}
	}
	if strings.TrimSpace(f.School) == "" {
		return core.Payment{}, &ValidationError{Field: "escola", Err: core.ErrEmptySchool}
	}
	date, err := core.ParseDisplayDate(strings.TrimSpace(f.Date))
	if err != nil {
		return core.Payment{}, &ValidationError{Field: "data", Err: err}
	}
	cents, err := core.ParseDecimalToCents(f.Amount)
	if err != nil {
		return core.Payment{}, &ValidationError{Field: "valor", Err: err}
	}
	return core.Payment{
		ChildName:   name,
		Month:       core.Month(f.Month),
		School:      f.School,
		PaidOn:      date,
		DisplayDate: date.Display(),
		Amount:      core.Money{Cents: cents},
	}, nil
}

// GridEntry is one month row of the per-child grid editor. Unchecked rows
// delete the month's record; checked rows add or replace it.
type GridEntry struct {
	Month  core.Month
	Paid   bool
	Date   string
	School string
	Amount string
}

// PaymentService applies ledger mutations, persists the full snapshot after
// each one and, when a broker client is configured, publishes payment
// events for the sheets mirror.
type PaymentService struct {
	ledger *ledger.Ledger
	repo   ledger.Repository
	events *amqp.Client
}

func NewPaymentService(led *ledger.Ledger, repo ledger.Repository, events *amqp.Client) *PaymentService {
	return &PaymentService{ledger: led, repo: repo, events: events}
}

// Ledger exposes the underlying record collection for queries.
func (s *PaymentService) Ledger() *ledger.Ledger {
	return s.ledger
}

// AddPayment validates the form, appends the record and persists. The
// in-memory mutation survives a persistence failure; the error is returned
// so the caller can surface it.
func (s *PaymentService) AddPayment(ctx context.Context, form PaymentForm) (core.Payment, error) {
	p, err := form.Parse()
	if err != nil {
		return core.Payment{}, err
	}
	s.ledger.Add(p)
	s.publish(ctx, amqp.ActionRecorded, p)
	if err := s.persist(ctx); err != nil {
		return p, err
	}
	slog.InfoContext(ctx, "Payment added",
		"child", p.ChildName, "month", p.Month, "school", p.School,
		"amount_cents", p.Amount.Cents)
	return p, nil
}

// RenameChild rewrites the name on every record of oldName.
func (s *PaymentService) RenameChild(ctx context.Context, oldName, newName string) (int, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return 0, &ValidationError{Field: "nome", Err: core.ErrEmptyChildName}
	}
	n := s.ledger.RenameChild(oldName, newName)
	if n == 0 {
		return 0, nil
	}
	if err := s.persist(ctx); err != nil {
		return n, err
	}
	slog.InfoContext(ctx, "Child renamed", "old", oldName, "new", newName, "records", n)
	return n, nil
}

// RemoveChild deletes every record of the child.
func (s *PaymentService) RemoveChild(ctx context.Context, name string) (int, error) {
	var removed []core.Payment
	n := s.ledger.RemoveWhere(func(p core.Payment) bool {
		if p.ChildName == name {
			removed = append(removed, p)
			return true
		}
		return false
	})
	if n == 0 {
		return 0, nil
	}
	for _, p := range removed {
		s.publish(ctx, amqp.ActionRemoved, p)
	}
	if err := s.persist(ctx); err != nil {
		return n, err
	}
	slog.InfoContext(ctx, "Child removed", "child", name, "records", n)
	return n, nil
}

// EditSchool rewrites the school on the first record matching (child, month,
// currentSchool). Returns false when no record matches.
func (s *PaymentService) EditSchool(ctx context.Context, child string, month core.Month, currentSchool, newSchool string) (bool, error) {
	if strings.TrimSpace(newSchool) == "" {
		return false, &ValidationError{Field: "escola", Err: core.ErrEmptySchool}
	}
	if !s.ledger.SetSchool(child, month, currentSchool, newSchool) {
		return false, nil
	}
	if p, ok := s.ledger.FindMonth(child, month); ok {
		s.publish(ctx, amqp.ActionUpdated, p)
	}
	if err := s.persist(ctx); err != nil {
		return true, err
	}
	slog.InfoContext(ctx, "School edited",
		"child", child, "month", month, "school", newSchool)
	return true, nil
}

// SaveMonthlyGrid applies the full 12-month grid for one child in a single
// transaction: every checked row is validated before any record changes, so
// an invalid row leaves the ledger untouched.
func (s *PaymentService) SaveMonthlyGrid(ctx context.Context, child string, entries []GridEntry) error {
	child = strings.TrimSpace(child)
	if child == "" {
		return &ValidationError{Field: "nome", Err: core.ErrEmptyChildName}
	}

	type change struct {
		month  core.Month
		remove bool
		record core.Payment
	}
	var changes []change

	for _, entry := range entries {
		if !core.IsKnownMonth(string(entry.Month)) {
			return &ValidationError{Field: "mes", Month: entry.Month, Err: core.ErrUnknownMonth}
		}
		if !entry.Paid {
			changes = append(changes, change{month: entry.Month, remove: true})
			continue
		}
		date, err := core.ParseDisplayDate(strings.TrimSpace(entry.Date))
		if err != nil {
			return &ValidationError{Field: "data", Month: entry.Month, Err: err}
		}
		if strings.TrimSpace(entry.School) == "" {
			return &ValidationError{Field: "escola", Month: entry.Month, Err: core.ErrEmptySchool}
		}
		cents, err := core.ParseDecimalToCents(entry.Amount)
		if err != nil {
			return &ValidationError{Field: "valor", Month: entry.Month, Err: err}
		}
		changes = append(changes, change{
			month: entry.Month,
			record: core.Payment{
				ChildName:   child,
				Month:       entry.Month,
				School:      entry.School,
				PaidOn:      date,
				DisplayDate: date.Display(),
				Amount:      core.Money{Cents: cents},
			},
		})
	}

	for _, ch := range changes {
		if ch.remove {
			if existing, ok := s.ledger.FindMonth(child, ch.month); ok {
				s.ledger.RemoveMonth(child, ch.month)
				s.publish(ctx, amqp.ActionRemoved, existing)
			}
			continue
		}
		if s.ledger.UpsertMonth(ch.record) {
			s.publish(ctx, amqp.ActionUpdated, ch.record)
		} else {
			s.publish(ctx, amqp.ActionRecorded, ch.record)
		}
	}

	if err := s.persist(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Monthly grid saved", "child", child, "months", len(entries))
	return nil
}

func (s *PaymentService) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, s.ledger.Snapshot()); err != nil {
		slog.ErrorContext(ctx, "Failed to persist records", "error", err)
		return fmt.Errorf("save records: %w", err)
	}
	return nil
}

// publish sends a payment event when a broker client is configured. Event
// failures never fail the mutation: the record is already applied locally.
func (s *PaymentService) publish(ctx context.Context, action string, p core.Payment) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPaymentEvent(ctx, amqp.NewPaymentEvent(action, p)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment event",
			"action", action, "child", p.ChildName, "error", err)
	}
}

// Close releases the broker connection, if any.
func (s *PaymentService) Close() error {
	if s.events != nil {
		return s.events.Close()
	}
	return nil
}
