package errors

import (
	"encoding/json"
	"net/http"
)

const problemBase = "https://foodgram.io/problems/"

// Problem type URIs
const (
	TypeValidationError = problemBase + "validation-error"
	TypeUnauthorized    = problemBase + "unauthorized"
	TypeForbidden       = problemBase + "forbidden"
	TypeNotFound        = problemBase + "not-found"
	TypeConflict        = problemBase + "conflict"
	TypeRateLimit       = problemBase + "rate-limit"
	TypeInternalError   = problemBase + "internal-error"
)

type problemKind struct {
	typ   string
	title string
}

var problemKinds = map[int]problemKind{
	http.StatusBadRequest:      {TypeValidationError, "Validation Error"},
	http.StatusUnauthorized:    {TypeUnauthorized, "Unauthorized"},
	http.StatusForbidden:       {TypeForbidden, "Forbidden"},
	http.StatusNotFound:        {TypeNotFound, "Not Found"},
	http.StatusConflict:        {TypeConflict, "Conflict"},
	http.StatusTooManyRequests: {TypeRateLimit, "Rate Limit Exceeded"},
}

var internalProblem = problemKind{TypeInternalError, "Internal Server Error"}

// ValidationError is one entry of a problem's "errors" member.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	TraceID  string            `json:"trace_id,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Extra    map[string]any    `json:"-"`
}

func (p *ProblemDetails) Error() string {
	return p.Detail
}

func (p *ProblemDetails) WithTraceID(traceID string) *ProblemDetails {
	p.TraceID = traceID
	return p
}

// WithExtra adds a member serialized next to the standard ones.
func (p *ProblemDetails) WithExtra(key string, value any) *ProblemDetails {
	if p.Extra == nil {
		p.Extra = make(map[string]any)
	}
	p.Extra[key] = value
	return p
}

func (p *ProblemDetails) MarshalJSON() ([]byte, error) {
	result := map[string]any{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}
	if p.Detail != "" {
		result["detail"] = p.Detail
	}
	if p.Instance != "" {
		result["instance"] = p.Instance
	}
	if p.TraceID != "" {
		result["trace_id"] = p.TraceID
	}
	if len(p.Errors) > 0 {
		result["errors"] = p.Errors
	}
	for k, v := range p.Extra {
		result[k] = v
	}
	return json.Marshal(result)
}

// ToProblemDetails renders the error for the request path instance.
func (e *Error) ToProblemDetails(instance string) *ProblemDetails {
	status := e.StatusCode()
	pk, ok := problemKinds[status]
	if !ok {
		pk = internalProblem
	}

	detail := e.Message
	if detail == "" {
		detail = http.StatusText(status)
	}
	problem := &ProblemDetails{
		Type:     pk.typ,
		Title:    pk.title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
	for _, f := range e.Fields {
		problem.Errors = append(problem.Errors, ValidationError{Field: f.Field, Message: f.Message, Code: f.Kind})
	}
	return problem
}
