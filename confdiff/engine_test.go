package confdiff_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"conftrail/archive"
	"conftrail/confdiff"
)

func mustParse(t *testing.T, s string) archive.Timestamp {
	t.Helper()
	ts, err := archive.ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q) failed: %v", s, err)
	}
	return ts
}

func TestEngine_Diff(t *testing.T) {
	mem := archive.NewMemory()
	device := uuid.New()
	t1 := mustParse(t, "2024+03+01 09:30:00.000000")
	t2 := mustParse(t, "2024+03+02 09:30:00.000000")

	if err := mem.Record(device, t1, "interface eth0\nip 1.1.1.1\n"); err != nil {
		t.Fatal(err)
	}
	if err := mem.Record(device, t2, "interface eth0\nip 1.1.1.2\n"); err != nil {
		t.Fatal(err)
	}

	engine := confdiff.NewEngine(mem)
	result, err := engine.Diff(context.Background(), device, t1, t2)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}

	want := []confdiff.Opcode{
		{Tag: confdiff.TagEqual, AStart: 0, AEnd: 1, BStart: 0, BEnd: 1},
		{Tag: confdiff.TagReplace, AStart: 1, AEnd: 2, BStart: 1, BEnd: 2},
	}
	if len(result.Opcodes) != len(want) {
		t.Fatalf("Opcodes = %v, want %v", result.Opcodes, want)
	}
	for i := range want {
		if result.Opcodes[i] != want[i] {
			t.Errorf("opcode %d = %v, want %v", i, result.Opcodes[i], want[i])
		}
	}
}

func TestEngine_DiffSameTimestamp(t *testing.T) {
	mem := archive.NewMemory()
	device := uuid.New()
	t1 := mustParse(t, "2024+03+01 09:30:00.000000")

	if err := mem.Record(device, t1, "hostname edge-1\ninterface eth0\n"); err != nil {
		t.Fatal(err)
	}

	engine := confdiff.NewEngine(mem)
	result, err := engine.Diff(context.Background(), device, t1, t1)
	if err != nil {
		t.Fatalf("Diff failed: %v", err)
	}
	if len(result.Opcodes) != 1 || result.Opcodes[0].Tag != confdiff.TagEqual {
		t.Fatalf("self-diff opcodes = %v, want single equal", result.Opcodes)
	}
	op := result.Opcodes[0]
	if op.AEnd != len(result.First) || op.BEnd != len(result.Second) {
		t.Errorf("equal opcode %v does not span full ranges", op)
	}
}

func TestEngine_MissingSnapshot(t *testing.T) {
	mem := archive.NewMemory()
	device := uuid.New()
	t1 := mustParse(t, "2024+03+01 09:30:00.000000")
	t3 := mustParse(t, "2024+03+03 09:30:00.000000")

	if err := mem.Record(device, t1, "interface eth0\n"); err != nil {
		t.Fatal(err)
	}

	engine := confdiff.NewEngine(mem)
	_, err := engine.Diff(context.Background(), device, t1, t3)
	if !errors.Is(err, archive.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	_, err = engine.Diff(context.Background(), device, t3, t1)
	if !errors.Is(err, archive.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound for first timestamp, got %v", err)
	}
}
