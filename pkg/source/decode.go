package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"workerscope/internal/model"
)

// ErrNoData means the command succeeded but produced nothing usable
var ErrNoData = errors.New("no data")

// ErrMalformedOutput means the command output was not the expected JSON
var ErrMalformedOutput = errors.New("malformed output")

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

// decodeRecords decodes a JSON array of objects, as printed by fly --json
func decodeRecords(data []byte) ([]model.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var records []model.Record
	if err := newDecoder(data).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return records, nil
}

// boshOutput is the envelope printed by bosh --json
type boshOutput struct {
	Tables []struct {
		Content string         `json:"Content"`
		Header  map[string]any `json:"Header"`
		Rows    []model.Record `json:"Rows"`
	} `json:"Tables"`
	Blocks []string `json:"Blocks"`
	Lines  []string `json:"Lines"`
}

// decodeBoshRows extracts the rows of the first table of a bosh --json document
func decodeBoshRows(data []byte) ([]model.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty bosh output", ErrNoData)
	}
	var out boshOutput
	if err := newDecoder(data).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if len(out.Tables) == 0 {
		return nil, fmt.Errorf("%w: no tables in bosh output", ErrMalformedOutput)
	}
	return out.Tables[0].Rows, nil
}
