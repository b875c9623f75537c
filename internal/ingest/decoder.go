// Package ingest recovers an ingestion payload from a webhook body whose
// encoding the sender does not reliably declare.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/maheshrc27/postsync/internal/models"
	"github.com/maheshrc27/postsync/internal/transfer"
)

// PayloadFormField is the form field the automation platform uses when it
// sends the payload url-encoded.
const PayloadFormField = "payload"

const maxDiagnosticFieldLen = 64

// Decoder is one strategy in the chain.
type Decoder interface {
	Name() string
	Decode(body []byte) (*transfer.IngestionPayload, error)
}

// Chain tries each decoder in order and returns the first success.
type Chain []Decoder

// DefaultChain is raw JSON first, then a url-encoded form carrying JSON in
// its payload field.
func DefaultChain() Chain {
	return Chain{JSONDecoder{}, FormDecoder{Field: PayloadFormField}}
}

// Decode returns a *models.DecodeError when every strategy fails. Its Fields
// come from the form strategy, if one ran.
func (c Chain) Decode(body []byte) (*transfer.IngestionPayload, error) {
	derr := &models.DecodeError{}
	var causes []error

	for _, d := range c {
		payload, err := d.Decode(body)
		if err == nil {
			return payload, nil
		}
		var fe *formFieldsError
		if errors.As(err, &fe) {
			derr.Fields = fe.fields
		}
		causes = append(causes, fmt.Errorf("%s: %w", d.Name(), err))
	}

	derr.Err = errors.Join(causes...)
	return nil, derr
}

// JSONDecoder parses the body as the payload itself.
type JSONDecoder struct{}

func (JSONDecoder) Name() string { return "json" }

func (JSONDecoder) Decode(body []byte) (*transfer.IngestionPayload, error) {
	return unmarshalPayload(body)
}

// FormDecoder parses the body as application/x-www-form-urlencoded data and
// the named field as the JSON payload.
type FormDecoder struct {
	Field string
}

func (FormDecoder) Name() string { return "form" }

func (d FormDecoder) Decode(body []byte) (*transfer.IngestionPayload, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, &formFieldsError{fields: fieldNames(values), err: err}
	}

	raw, ok := values[d.Field]
	if !ok || len(raw) == 0 {
		return nil, &formFieldsError{fields: fieldNames(values), err: fmt.Errorf("field %q absent", d.Field)}
	}

	payload, err := unmarshalPayload([]byte(raw[0]))
	if err != nil {
		return nil, &formFieldsError{fields: fieldNames(values), err: fmt.Errorf("field %q: %w", d.Field, err)}
	}
	return payload, nil
}

type formFieldsError struct {
	fields []string
	err    error
}

func (e *formFieldsError) Error() string { return e.err.Error() }
func (e *formFieldsError) Unwrap() error { return e.err }

func unmarshalPayload(data []byte) (*transfer.IngestionPayload, error) {
	var payload transfer.IngestionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// fieldNames returns the sorted form keys, truncated so an unencoded body
// mistaken for a key does not end up verbatim in diagnostics.
func fieldNames(values url.Values) []string {
	names := make([]string, 0, len(values))
	for k := range values {
		if len(k) > maxDiagnosticFieldLen {
			k = k[:maxDiagnosticFieldLen] + "..."
		}
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
