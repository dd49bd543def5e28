package ssp

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://schemas.screen-inventory/ssp/batch.json"

//go:embed batch.schema.json
var batchSchemaJSON []byte

var batchSchema, recordSchema = mustCompileSchemas()

var (
	// ErrInvalidPayload is returned when a feed payload is neither an array of records
	// nor a records envelope.
	ErrInvalidPayload = errors.New("ssp: payload does not match batch schema")
	// ErrInvalidRecord marks a single entry that failed the record schema or decoding.
	ErrInvalidRecord = errors.New("ssp: record does not match record schema")
)

func mustCompileSchemas() (*jsonschema.Schema, *jsonschema.Schema) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(batchSchemaJSON)); err != nil {
		panic(fmt.Sprintf("ssp: add schema resource: %v", err))
	}
	batch, err := compiler.Compile(schemaURL)
	if err != nil {
		panic(fmt.Sprintf("ssp: compile schema: %v", err))
	}
	record, err := compiler.Compile(schemaURL + "#/definitions/record")
	if err != nil {
		panic(fmt.Sprintf("ssp: compile record schema: %v", err))
	}
	return batch, record
}

// DecodeBatch checks the shape of body and decodes each record on its own.
// Both a bare array of records and a {"source_id", "records"} envelope are accepted;
// records without their own source_id inherit the envelope's.
// Only a malformed document or a wrong envelope fails the call. An entry that breaks the
// record schema, or carries a number its field cannot hold, comes back with DecodeErr set
// so the rest of the batch is still ingested.
func DecodeBatch(body []byte) ([]Record, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("ssp: decode payload: %w", err)
	}
	if err := batchSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var (
		items    []json.RawMessage
		envelope string
	)
	if _, isArray := raw.([]any); isArray {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("ssp: decode records: %w", err)
		}
	} else {
		var batch struct {
			SourceID *string           `json:"source_id"`
			Records  []json.RawMessage `json:"records"`
		}
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, fmt.Errorf("ssp: decode batch: %w", err)
		}
		items = batch.Records
		if batch.SourceID != nil {
			envelope = *batch.SourceID
		}
	}

	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = decodeRecord(item)
		if records[i].SourceID == "" {
			records[i].SourceID = envelope
		}
	}
	return records, nil
}

func decodeRecord(item json.RawMessage) Record {
	var raw any
	if err := json.Unmarshal(item, &raw); err != nil {
		return salvage(item, err)
	}
	if err := recordSchema.Validate(raw); err != nil {
		return salvage(item, err)
	}
	var rec Record
	if err := json.Unmarshal(item, &rec); err != nil {
		return salvage(item, err)
	}
	return rec
}

// salvage keeps the fields encoding/json could still fill so the failure can be
// attributed to a source and venue.
func salvage(item json.RawMessage, cause error) Record {
	var rec Record
	_ = json.Unmarshal(item, &rec)
	rec.DecodeErr = fmt.Errorf("%w: %v", ErrInvalidRecord, cause)
	return rec
}
