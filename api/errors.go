package api

import (
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"

	"github.com/petscheit/sn-mpt/batch"
	"github.com/petscheit/sn-mpt/trie"
)

// ErrInvalidHexString is raised when a POST /batches body entry fails to
// decode as hex (spec.md §7's InvalidHexString taxonomy entry).
var ErrInvalidHexString = errors.New("api: invalid hex string")

// errorCode is the taxonomy-to-wire-code mapping of spec.md §7.
type errorCode uint16

const (
	codeBadRequestInputs          errorCode = 400
	codeBatchNotFound             errorCode = 401
	codeParentBatchNotFinalized   errorCode = 402
	codeInvalidBatchStatus        errorCode = 500
	codeProofGenerationError      errorCode = 501
	codeStorageInconsistency      errorCode = 502
	codeInternal                  errorCode = 599
)

// httpError carries an HTTP status alongside its cause, mirroring
// vechain-thor's api/utils/http.go httpError wrapper.
type httpError struct {
	cause  error
	status int
	code   errorCode
}

func (e *httpError) Error() string { return e.cause.Error() }
func (e *httpError) Cause() error  { return e.cause }

func badRequest(cause error, code errorCode) error {
	return &httpError{cause: cause, status: http.StatusBadRequest, code: code}
}

func internalError(cause error, code errorCode) error {
	return &httpError{cause: cause, status: http.StatusInternalServerError, code: code}
}

// classify maps a coordinator/trie/storage error to the wire taxonomy of
// spec.md §7, wrapping causes with pkg/errors the way vechain-thor's request
// handlers attach a message to an underlying error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidHexString):
		return badRequest(pkgerrors.WithMessage(err, "malformed hex input"), codeBadRequestInputs)
	case errors.Is(err, batch.ErrBatchNotFound):
		return badRequest(pkgerrors.WithMessage(err, "batch not found"), codeBatchNotFound)
	case errors.Is(err, batch.ErrBatchParentNotFinalized):
		return badRequest(pkgerrors.WithMessage(err, "parent batch not finalized"), codeParentBatchNotFinalized)
	case errors.Is(err, batch.ErrInvalidBatchStatus):
		return internalError(pkgerrors.WithMessage(err, "invalid batch status"), codeInvalidBatchStatus)
	case errors.Is(err, batch.ErrTrieWriteError):
		return badRequest(pkgerrors.WithMessage(err, "trie write error"), codeBadRequestInputs)
	case errors.Is(err, trie.ErrNodeNotFound), errors.Is(err, trie.ErrNodeEncodingError):
		return internalError(pkgerrors.WithMessage(err, "storage inconsistency"), codeStorageInconsistency)
	case errors.Is(err, trie.ErrProofGenerationError):
		return internalError(pkgerrors.WithMessage(err, "proof generation error"), codeProofGenerationError)
	default:
		return internalError(pkgerrors.WithMessage(err, "internal error"), codeInternal)
	}
}

// errorBody is spec.md §6's error response shape.
type errorBody struct {
	Code    uint16 `json:"code"`
	Message string `json:"message"`
}

// handlerFunc mirrors net/http.HandlerFunc but returns an error, following
// vechain-thor's api/utils/http.go HandlerFunc/WrapHandlerFunc split.
type handlerFunc func(http.ResponseWriter, *http.Request) error

func wrap(f handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		var he *httpError
		if !errors.As(err, &he) {
			he = &httpError{cause: err, status: http.StatusInternalServerError, code: codeInternal}
		}
		writeError(w, he)
	}
}

func writeError(w http.ResponseWriter, he *httpError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: uint16(he.code), Message: he.cause.Error()})
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(v)
}
