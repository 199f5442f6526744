package v1alpha1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var ErrMalformedNugget = errors.New("malformed nugget descriptor")

type rawNuggetDescriptor struct {
	Document *struct {
		Name *string `json:"name"`
		Text *string `json:"text"`
	} `json:"document"`
	StartChar json.RawMessage `json:"start_char"`
	EndChar   json.RawMessage `json:"end_char"`
}

// UnmarshalJSON never fails: a descriptor that does not have the expected
// shape is kept with Err set so the rest of the payload still decodes.
func (d *NuggetDescriptor) UnmarshalJSON(data []byte) error {
	*d = NuggetDescriptor{}

	var raw rawNuggetDescriptor
	if err := json.Unmarshal(data, &raw); err != nil {
		d.err = fmt.Errorf("%w: %v", ErrMalformedNugget, err)
		return nil
	}
	if raw.Document == nil || raw.Document.Name == nil || raw.Document.Text == nil {
		d.err = fmt.Errorf("%w: document name and text are required", ErrMalformedNugget)
		return nil
	}
	d.Document = NuggetDocument{Name: *raw.Document.Name, Text: *raw.Document.Text}

	start, err := decodeOffset("start_char", raw.StartChar)
	if err != nil {
		d.err = err
		return nil
	}
	end, err := decodeOffset("end_char", raw.EndChar)
	if err != nil {
		d.err = err
		return nil
	}
	d.StartChar, d.EndChar = start, end
	return nil
}

// Err reports why the descriptor could not be decoded.
func (d NuggetDescriptor) Err() error {
	return d.err
}

// decodeOffset accepts JSON numbers with an integral value, so 5 and 5.0
// are both read as 5.
func decodeOffset(field string, raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, fmt.Errorf("%w: %s is missing", ErrMalformedNugget, field)
	}
	if raw[0] == '"' {
		return 0, fmt.Errorf("%w: %s is not a number", ErrMalformedNugget, field)
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", ErrMalformedNugget, field)
	}
	if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s is not an integer: %s", ErrMalformedNugget, field, raw)
	}
	return int(v), nil
}
