package memory

import (
	"context"
	"testing"

	"mensalidades/internal/core"
)

func TestAppendPayment(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.AppendPayment(ctx, core.Payment{ChildName: "Ana", Month: core.Janeiro, School: "Gepan"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Fatalf("got ref %q", ref)
	}

	ref, err = s.AppendPayment(ctx, core.Payment{ChildName: "Bruno", Month: core.Janeiro, School: "CCA"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:2" {
		t.Fatalf("got ref %q", ref)
	}

	rows := s.Rows()
	if len(rows) != 2 || rows[0].ChildName != "Ana" || rows[1].ChildName != "Bruno" {
		t.Fatalf("got %v", rows)
	}

	rows[0].ChildName = "mutated"
	if s.Rows()[0].ChildName != "Ana" {
		t.Fatalf("Rows must return a copy")
	}
}
