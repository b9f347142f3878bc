package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rickgao/mock-auction/internal/auction"
	"github.com/rickgao/mock-auction/internal/auth"
)

// Error codes returned in the JSON error body.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeEmptyName          = "EMPTY_NAME"
	CodeInvalidName        = "INVALID_NAME"
	CodeDuplicateTeam      = "DUPLICATE_TEAM"
	CodeUnknownTeam        = "UNKNOWN_TEAM"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeInsufficientBudget = "INSUFFICIENT_BUDGET"
	CodeInvalidAmount      = "INVALID_AMOUNT"
	CodeInvalidRating      = "INVALID_RATING"
	CodeInvalidCategory    = "INVALID_CATEGORY"
	CodeInvalidNationality = "INVALID_NATIONALITY"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeAdminDisabled      = "ADMIN_DISABLED"
	CodeInternal           = "INTERNAL"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one error.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorMappings = []struct {
	err    error
	status int
	code   string
}{
	{auction.ErrEmptyName, http.StatusBadRequest, CodeEmptyName},
	{auction.ErrInvalidName, http.StatusBadRequest, CodeInvalidName},
	{auction.ErrInvalidAmount, http.StatusBadRequest, CodeInvalidAmount},
	{auction.ErrInvalidRating, http.StatusBadRequest, CodeInvalidRating},
	{auction.ErrInvalidCategory, http.StatusBadRequest, CodeInvalidCategory},
	{auction.ErrInvalidNationality, http.StatusBadRequest, CodeInvalidNationality},
	{auction.ErrDuplicateTeam, http.StatusConflict, CodeDuplicateTeam},
	{auction.ErrUnknownTeam, http.StatusNotFound, CodeUnknownTeam},
	{auction.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
	{auction.ErrInsufficientBudget, http.StatusUnprocessableEntity, CodeInsufficientBudget},
	{auth.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
	{auth.ErrAdminDisabled, http.StatusForbidden, CodeAdminDisabled},
}

// errBadRequest marks malformed request bodies or parameters.
var errBadRequest = errors.New("bad request")

// classify maps an error to a status and code. Unknown errors are 500.
func classify(err error) (int, string) {
	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest, CodeBadRequest
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		msg = "internal error"
	}

	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
