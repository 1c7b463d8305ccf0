package storage

import (
	"encoding/json"
	"errors"

	"hopwalk/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp fills in the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
	}
}

func EncodeRun(run model.RunRecord) ([]byte, error) {
	return json.Marshal(run)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeTables(tables model.RunTables) ([]byte, error) {
	return json.Marshal(tables)
}

func DecodeTables(data []byte) (model.RunTables, error) {
	var tables model.RunTables
	if err := json.Unmarshal(data, &tables); err != nil {
		return model.RunTables{}, err
	}
	if err := checkVersion(tables.VersionedRecord); err != nil {
		return model.RunTables{}, err
	}
	return tables, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
