package storage

import (
	"errors"
	"testing"

	"hopwalk/internal/model"
)

func TestRunCodecRoundTrip(t *testing.T) {
	run := model.RunRecord{
		VersionedRecord: Stamp(),
		ID:              "r1",
		Patterns:        [][]bool{{true, false, true}},
		Temp:            -0.25,
		Steps:           5000,
	}
	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != run.ID || decoded.Temp != run.Temp || len(decoded.Patterns[0]) != 3 {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}

func TestTablesCodecVersionMismatch(t *testing.T) {
	tables := model.RunTables{
		VersionedRecord: model.VersionedRecord{SchemaVersion: 99, CodecVersion: 1},
		RunID:           "r1",
	}
	data, err := EncodeTables(tables)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeTables(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestTablesCodecRoundTrip(t *testing.T) {
	tables := model.RunTables{
		VersionedRecord: Stamp(),
		RunID:           "r1",
		EntropyPeak:     0,
		Transitions:     []model.TransitionBin{{Energy: -2, Delta: 4, Count: 7}},
		DOS:             []model.DOSBin{{Energy: -2, LnDOS: -0.5}},
	}
	data, err := EncodeTables(tables)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeTables(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Transitions[0].Delta != 4 || decoded.DOS[0].LnDOS != -0.5 {
		t.Fatalf("unexpected decode: %+v", decoded)
	}
}
