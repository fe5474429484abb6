package httputil

import (
	"bytes"
	"encoding/json"

	docsysSvc "vault/internal/domain/services/docsystem"
)

// OptionalString tracks presence and value for JSON merge-patch semantics (RFC 7396):
//   - Present=false: field absent from JSON (don't change)
//   - Present=true, Value=nil: field is JSON null (clear)
//   - Present=true, Value=&"text": field has value
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only called when the field is present in the JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Domain converts to the service-layer representation
func (o OptionalString) Domain() docsysSvc.OptionalString {
	return docsysSvc.OptionalString{Present: o.Present, Value: o.Value}
}
