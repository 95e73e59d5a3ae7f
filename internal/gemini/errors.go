package gemini

import "fmt"

// TransportError is a non-success HTTP status from the service, kept with
// the response body for diagnostics.
type TransportError struct {
	Op     string
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gemini %s: http %d: %s", e.Op, e.Status, e.Body)
}

// ProcessingError means an uploaded file reached the FAILED state on the
// service side. Terminal for that file.
type ProcessingError struct {
	Name string
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("gemini: file %s failed remote processing", e.Name)
}

// ShapeError is a success response that is missing the expected content.
// Distinct from TransportError; Raw holds a truncated copy of the payload.
type ShapeError struct {
	Op  string
	Raw string
}

const shapeErrorRawLimit = 2000

func (e *ShapeError) Error() string {
	raw := e.Raw
	if len(raw) > shapeErrorRawLimit {
		raw = raw[:shapeErrorRawLimit]
	}
	return fmt.Sprintf("gemini %s: unexpected response shape: %s", e.Op, raw)
}
