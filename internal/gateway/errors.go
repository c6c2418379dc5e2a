package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"

	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldIssue `json:"fields,omitempty"`
}

type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders err with the HTTP status matching its gRPC code.
// Retryable failures carry Retry-After.
func writeError(w http.ResponseWriter, err error) {
	st := status.Convert(svcErr.Map(err))
	body := APIError{Code: st.Code().String(), Message: st.Message()}

	for _, d := range st.Details() {
		switch d := d.(type) {
		case *errdetails.BadRequest:
			for _, v := range d.GetFieldViolations() {
				body.Fields = append(body.Fields, FieldIssue{Field: v.GetField(), Reason: v.GetDescription()})
			}
		case *errdetails.RetryInfo:
			secs := max(int64(d.GetRetryDelay().AsDuration().Seconds()), 1)
			w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
		}
	}
	writeJSON(w, svcErr.HTTPStatus(st.Err()), body)
}

func badField(w http.ResponseWriter, field, reason string) {
	writeError(w, svcErr.Invalid(field, reason))
}
