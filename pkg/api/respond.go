package api

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/vitalsgrid/pkg/errors"
	"github.com/matzehuels/vitalsgrid/pkg/layout"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeOutOfBounds, errors.ErrCodeBelowMinimum, errors.ErrCodeOverlap,
		errors.ErrCodeDuplicateTile, errors.ErrCodeInvalidTransition:
		return http.StatusConflict
	case errors.ErrCodeTileNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTile, errors.ErrCodeInvalidTimeRange:
		return http.StatusBadRequest
	case errors.ErrCodeDataSource, errors.ErrCodeNetwork, errors.ErrCodeFeedDisconnected:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Code: code, Message: errors.UserMessage(err)})
}

// resultBody reports a mutation outcome.
type resultBody struct {
	Status  string `json:"status"`
	Version uint64 `json:"version"`
	Tile    any    `json:"tile,omitempty"`
}

// writeResult answers 200 for applied or unchanged results and the coded
// error otherwise.
func writeResult(w http.ResponseWriter, r layout.Result, body resultBody) {
	if !r.OK() {
		writeError(w, r.Err)
		return
	}
	body.Status = r.Status.String()
	writeJSON(w, http.StatusOK, body)
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
