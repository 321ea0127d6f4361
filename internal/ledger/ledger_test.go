package ledger

import (
	"context"
	"errors"
	"testing"

	"mensalidades/internal/core"
)

func rec(child string, month core.Month, school string) core.Payment {
	return core.Payment{
		ChildName: child,
		Month:     month,
		School:    school,
		Amount:    core.Money{Cents: 15000},
	}
}

func TestAddAndSnapshot(t *testing.T) {
	l := New(nil)
	l.Add(rec("Ana", core.Janeiro, "Gepan"))
	l.Add(rec("Bruno", core.Janeiro, "CCA"))

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("got %d records", len(snap))
	}
	if snap[0].ChildName != "Ana" || snap[1].ChildName != "Bruno" {
		t.Fatalf("insertion order not preserved: %v", snap)
	}

	snap[0].ChildName = "mutated"
	if l.Snapshot()[0].ChildName != "Ana" {
		t.Fatalf("snapshot must not alias internal slice")
	}
}

func TestUpdateOutOfRange(t *testing.T) {
	l := New([]core.Payment{rec("Ana", core.Janeiro, "Gepan")})
	if err := l.Update(0, rec("Ana", core.Fevereiro, "Gepan")); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := l.Update(1, rec("Ana", core.Marco, "Gepan")); err == nil {
		t.Fatalf("expected error for index past end")
	}
	if err := l.Update(-1, rec("Ana", core.Marco, "Gepan")); err == nil {
		t.Fatalf("expected error for negative index")
	}
}

func TestRemoveWhere(t *testing.T) {
	l := New([]core.Payment{
		rec("Ana", core.Janeiro, "Gepan"),
		rec("Bruno", core.Janeiro, "CCA"),
		rec("Ana", core.Fevereiro, "Gepan"),
	})
	n := l.RemoveWhere(func(p core.Payment) bool { return p.ChildName == "Ana" })
	if n != 2 {
		t.Fatalf("removed %d want 2", n)
	}
	snap := l.Snapshot()
	if len(snap) != 1 || snap[0].ChildName != "Bruno" {
		t.Fatalf("unexpected remainder: %v", snap)
	}
}

func TestRenameChild(t *testing.T) {
	l := New([]core.Payment{
		rec("Ana", core.Janeiro, "Gepan"),
		rec("Ana", core.Fevereiro, "Gepan"),
		rec("Bruno", core.Janeiro, "CCA"),
	})
	if n := l.RenameChild("Ana", "Ana Clara"); n != 2 {
		t.Fatalf("renamed %d want 2", n)
	}
	if n := l.RenameChild("Carla", "X"); n != 0 {
		t.Fatalf("renamed %d want 0", n)
	}
	for _, p := range l.Snapshot() {
		if p.ChildName == "Ana" {
			t.Fatalf("old name still present")
		}
	}
}

func TestFindMonthFirstMatch(t *testing.T) {
	l := New([]core.Payment{
		rec("Ana", core.Janeiro, "Gepan"),
		rec("Ana", core.Janeiro, "CCA"), // duplicate pair, different school
	})
	p, ok := l.FindMonth("Ana", core.Janeiro)
	if !ok || p.School != "Gepan" {
		t.Fatalf("expected first match, got %v %v", p, ok)
	}
	if _, ok := l.FindMonth("Ana", core.Marco); ok {
		t.Fatalf("expected no match")
	}
}

func TestUpsertMonth(t *testing.T) {
	l := New([]core.Payment{rec("Ana", core.Janeiro, "Gepan")})

	replaced := l.UpsertMonth(rec("Ana", core.Janeiro, "CCA"))
	if !replaced {
		t.Fatalf("expected replacement")
	}
	if l.Len() != 1 {
		t.Fatalf("replacement must not grow the ledger")
	}
	if p, _ := l.FindMonth("Ana", core.Janeiro); p.School != "CCA" {
		t.Fatalf("got %s", p.School)
	}

	replaced = l.UpsertMonth(rec("Ana", core.Fevereiro, "CCA"))
	if replaced {
		t.Fatalf("expected append")
	}
	if l.Len() != 2 {
		t.Fatalf("got %d records", l.Len())
	}
}

func TestAddThenRemoveMonthRestores(t *testing.T) {
	before := []core.Payment{
		rec("Ana", core.Janeiro, "Gepan"),
		rec("Bruno", core.Janeiro, "CCA"),
	}
	l := New(append([]core.Payment(nil), before...))

	l.Add(rec("Carla", core.Marco, "Parquinho"))
	if !l.RemoveMonth("Carla", core.Marco) {
		t.Fatalf("expected removal")
	}

	after := l.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("got %d records want %d", len(after), len(before))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Fatalf("record %d changed: %v != %v", i, after[i], before[i])
		}
	}
}

func TestSetSchool(t *testing.T) {
	l := New([]core.Payment{
		rec("Ana", core.Janeiro, "Gepan"),
		rec("Ana", core.Janeiro, "CCA"),
	})
	if !l.SetSchool("Ana", core.Janeiro, "CCA", "Parquinho") {
		t.Fatalf("expected match")
	}
	snap := l.Snapshot()
	if snap[0].School != "Gepan" || snap[1].School != "Parquinho" {
		t.Fatalf("wrong record updated: %v", snap)
	}
	if l.SetSchool("Ana", core.Janeiro, "Nope", "X") {
		t.Fatalf("expected no match")
	}
}

type stubRepo struct {
	records []core.Payment
	err     error
}

func (r *stubRepo) Load(ctx context.Context) ([]core.Payment, error) { return r.records, r.err }
func (r *stubRepo) Save(ctx context.Context, records []core.Payment) error {
	r.records = records
	return r.err
}

func TestOpen(t *testing.T) {
	l, err := Open(context.Background(), &stubRepo{records: []core.Payment{rec("Ana", core.Janeiro, "Gepan")}})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("got %d records", l.Len())
	}

	wantErr := errors.New("disk gone")
	if _, err := Open(context.Background(), &stubRepo{err: wantErr}); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped load error, got %v", err)
	}
}
