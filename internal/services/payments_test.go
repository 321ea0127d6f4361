package services

import (
	"context"
	"errors"
	"testing"

	"mensalidades/internal/core"
	"mensalidades/internal/ledger"
)

type fakeRepo struct {
	saved   [][]core.Payment
	saveErr error
}

func (r *fakeRepo) Load(ctx context.Context) ([]core.Payment, error) { return nil, nil }
func (r *fakeRepo) Save(ctx context.Context, records []core.Payment) error {
	r.saved = append(r.saved, records)
	return r.saveErr
}

func newTestService(records []core.Payment) (*PaymentService, *fakeRepo) {
	repo := &fakeRepo{}
	return NewPaymentService(ledger.New(records), repo, nil), repo
}

func TestPaymentFormParse(t *testing.T) {
	form := PaymentForm{
		Name:   "  Ana Silva  ",
		Month:  "Novembro",
		School: "Gepan",
		Date:   "13/11/2024",
		Amount: "150,00",
	}
	p, err := form.Parse()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if p.ChildName != "Ana Silva" {
		t.Fatalf("name not trimmed: %q", p.ChildName)
	}
	if p.PaidOn.Internal() != "2024-11-13" || p.DisplayDate != "13/11/2024" {
		t.Fatalf("got %q / %q", p.PaidOn.Internal(), p.DisplayDate)
	}
	if p.Amount.Cents != 15000 {
		t.Fatalf("got %d cents", p.Amount.Cents)
	}
}

func TestPaymentFormParseErrors(t *testing.T) {
	base := PaymentForm{Name: "Ana", Month: "Novembro", School: "Gepan", Date: "13/11/2024", Amount: "150"}

	cases := []struct {
		mutate func(*PaymentForm)
		field  string
		err    error
	}{
		{func(f *PaymentForm) { f.Name = "  " }, "nome", core.ErrEmptyChildName},
		{func(f *PaymentForm) { f.Month = "Movember" }, "mes", core.ErrUnknownMonth},
		{func(f *PaymentForm) { f.School = "" }, "escola", core.ErrEmptySchool},
		{func(f *PaymentForm) { f.Date = "31/02/2024" }, "data", core.ErrInvalidDate},
		{func(f *PaymentForm) { f.Amount = "-1" }, "valor", core.ErrInvalidAmount},
	}
	for i, tc := range cases {
		form := base
		tc.mutate(&form)
		_, err := form.Parse()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("case %d expected ValidationError, got %v", i, err)
		}
		if verr.Field != tc.field || !errors.Is(err, tc.err) {
			t.Fatalf("case %d got field %q err %v", i, verr.Field, err)
		}
	}
}

func TestAddPaymentPersists(t *testing.T) {
	svc, repo := newTestService(nil)
	form := PaymentForm{Name: "Ana", Month: "Novembro", School: "Gepan", Date: "13/11/2024", Amount: "150"}

	p, err := svc.AddPayment(context.Background(), form)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if p.ChildName != "Ana" {
		t.Fatalf("got %+v", p)
	}
	if len(repo.saved) != 1 || len(repo.saved[0]) != 1 {
		t.Fatalf("snapshot not persisted: %v", repo.saved)
	}
}

func TestAddPaymentInvalidFormTouchesNothing(t *testing.T) {
	svc, repo := newTestService(nil)
	form := PaymentForm{Name: "", Month: "Novembro", School: "Gepan", Date: "13/11/2024", Amount: "150"}

	if _, err := svc.AddPayment(context.Background(), form); err == nil {
		t.Fatalf("expected error")
	}
	if svc.Ledger().Len() != 0 || len(repo.saved) != 0 {
		t.Fatalf("invalid form must not mutate or persist")
	}
}

func TestAddPaymentSurvivesSaveFailure(t *testing.T) {
	svc, repo := newTestService(nil)
	repo.saveErr = errors.New("disk full")
	form := PaymentForm{Name: "Ana", Month: "Novembro", School: "Gepan", Date: "13/11/2024", Amount: "150"}

	_, err := svc.AddPayment(context.Background(), form)
	if err == nil {
		t.Fatalf("expected save error")
	}
	if svc.Ledger().Len() != 1 {
		t.Fatalf("in-memory record must survive a failed save")
	}
}

func TestRenameChild(t *testing.T) {
	svc, repo := newTestService([]core.Payment{
		dated("Ana", core.Janeiro, "Gepan", 2024, 1, 10),
		dated("Ana", core.Fevereiro, "Gepan", 2024, 2, 10),
	})

	n, err := svc.RenameChild(context.Background(), "Ana", "Ana Clara")
	if err != nil || n != 2 {
		t.Fatalf("got %d %v", n, err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("rename must persist")
	}

	// Unknown child: no-op, nothing persisted.
	n, err = svc.RenameChild(context.Background(), "Bruno", "B")
	if err != nil || n != 0 {
		t.Fatalf("got %d %v", n, err)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("no-op rename must not persist")
	}

	if _, err := svc.RenameChild(context.Background(), "Ana Clara", "   "); err == nil {
		t.Fatalf("expected error for blank new name")
	}
}

func TestRemoveChild(t *testing.T) {
	svc, _ := newTestService([]core.Payment{
		dated("Ana", core.Janeiro, "Gepan", 2024, 1, 10),
		dated("Bruno", core.Janeiro, "CCA", 2024, 1, 12),
		dated("Ana", core.Fevereiro, "Gepan", 2024, 2, 10),
	})

	n, err := svc.RemoveChild(context.Background(), "Ana")
	if err != nil || n != 2 {
		t.Fatalf("got %d %v", n, err)
	}
	if svc.Ledger().Len() != 1 {
		t.Fatalf("got %d records", svc.Ledger().Len())
	}
}

func TestEditSchool(t *testing.T) {
	svc, _ := newTestService([]core.Payment{
		dated("Ana", core.Janeiro, "Gepan", 2024, 1, 10),
	})

	changed, err := svc.EditSchool(context.Background(), "Ana", core.Janeiro, "Gepan", "CCA")
	if err != nil || !changed {
		t.Fatalf("got %v %v", changed, err)
	}
	p, _ := svc.Ledger().FindMonth("Ana", core.Janeiro)
	if p.School != "CCA" {
		t.Fatalf("got %s", p.School)
	}

	changed, err = svc.EditSchool(context.Background(), "Ana", core.Janeiro, "Gepan", "CCA")
	if err != nil || changed {
		t.Fatalf("stale current school must not match, got %v %v", changed, err)
	}

	if _, err := svc.EditSchool(context.Background(), "Ana", core.Janeiro, "CCA", " "); err == nil {
		t.Fatalf("expected error for blank school")
	}
}

func TestSaveMonthlyGrid(t *testing.T) {
	svc, repo := newTestService([]core.Payment{
		dated("Ana", core.Janeiro, "Gepan", 2024, 1, 10),
		dated("Ana", core.Fevereiro, "Gepan", 2024, 2, 10),
	})

	entries := []GridEntry{
		{Month: core.Janeiro, Paid: true, Date: "15/01/2024", School: "CCA", Amount: "200"},
		{Month: core.Fevereiro, Paid: false},
		{Month: core.Marco, Paid: true, Date: "10/03/2024", School: "CCA", Amount: "200"},
	}
	if err := svc.SaveMonthlyGrid(context.Background(), "Ana", entries); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	if svc.Ledger().Len() != 2 {
		t.Fatalf("got %d records", svc.Ledger().Len())
	}
	jan, _ := svc.Ledger().FindMonth("Ana", core.Janeiro)
	if jan.School != "CCA" || jan.Amount.Cents != 20000 {
		t.Fatalf("got %+v", jan)
	}
	if _, ok := svc.Ledger().FindMonth("Ana", core.Fevereiro); ok {
		t.Fatalf("unchecked month must be removed")
	}
	if _, ok := svc.Ledger().FindMonth("Ana", core.Marco); !ok {
		t.Fatalf("checked new month must be added")
	}
	if len(repo.saved) != 1 {
		t.Fatalf("grid must persist once, got %d saves", len(repo.saved))
	}
}

func TestSaveMonthlyGridAtomicValidation(t *testing.T) {
	svc, repo := newTestService([]core.Payment{
		dated("Ana", core.Janeiro, "Gepan", 2024, 1, 10),
	})

	entries := []GridEntry{
		{Month: core.Janeiro, Paid: false},
		{Month: core.Fevereiro, Paid: true, Date: "not a date", School: "CCA", Amount: "200"},
	}
	err := svc.SaveMonthlyGrid(context.Background(), "Ana", entries)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Month != core.Fevereiro {
		t.Fatalf("got %v", err)
	}

	// The invalid row must prevent the valid removal from applying.
	if _, ok := svc.Ledger().FindMonth("Ana", core.Janeiro); !ok {
		t.Fatalf("ledger mutated despite validation failure")
	}
	if len(repo.saved) != 0 {
		t.Fatalf("nothing may persist on validation failure")
	}
}
