package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mensalidades/internal/core"
)

func TestLoadMissingFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "pagamentos.json"))
	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file must load empty, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records", len(records))
	}
}

func TestLoadCorruptFilePreserved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagamentos.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := New(path)
	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("corrupt file must load empty, got %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records", len(records))
	}

	// The corrupt file stays on disk until the next save.
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "{not json" {
		t.Fatalf("corrupt file was touched: %q %v", data, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "pagamentos.json")
	s := New(path)

	in := []core.Payment{
		{
			ChildName:   "Ana Silva",
			Month:       core.Novembro,
			School:      "Gepan",
			PaidOn:      core.NewDate(2024, 11, 13),
			DisplayDate: "13/11/2024",
			Amount:      core.Money{Cents: 15000},
		},
		{
			ChildName: "Bruno",
			Month:     core.Setembro,
			School:    "CCA",
			Amount:    core.Money{Cents: 12050},
		},
	}
	if err := s.Save(context.Background(), in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d records want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("record %d changed: %+v != %+v", i, out[i], in[i])
		}
	}
}

func TestSaveWritesIndentedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagamentos.json")
	s := New(path)

	if err := s.Save(context.Background(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("nil snapshot must serialize as empty array, got %q", data)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "pagamentos.json"))

	if err := s.Save(context.Background(), []core.Payment{{ChildName: "Ana", Month: core.Janeiro, School: "Gepan"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "pagamentos.json" {
		t.Fatalf("unexpected directory contents: %v", entries)
	}
}
