package api

import (
	"net/http"

	commonerrors "github.com/follownet/backend/internal/common/errors"
	commonhttp "github.com/follownet/backend/internal/common/http"
	"github.com/follownet/backend/internal/common/logger"
	"github.com/follownet/backend/internal/common/result"
)

// Every expected outcome is written as HTTP 200 with a __typename-tagged
// union payload; success and failure are both first-class response shapes.
// Only internal failures surface as a protocol-level 500, and even then with
// the generic message, never internal detail.

func errTypename(category commonerrors.ErrorCategory) string {
	switch category {
	case commonerrors.CategoryNotFound:
		return "NotFoundError"
	case commonerrors.CategoryValidation:
		return "ValidationError"
	case commonerrors.CategoryConflict:
		return "DuplicateKeyError"
	case commonerrors.CategoryAuthentication:
		return "AuthenticationError"
	case commonerrors.CategoryUnauthorized:
		return "UnauthorizedError"
	default:
		return "InternalError"
	}
}

func writeSuccess(w http.ResponseWriter, typename, field string, value any) {
	commonhttp.WriteJSON(w, http.StatusOK, map[string]any{
		"__typename": typename,
		field:        value,
	})
}

func writeFailure(w http.ResponseWriter, log *logger.Logger, err error) {
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		log.Errorf("unclassified error reached the edge: %v", err)
		de = commonerrors.ErrInternal
	}

	status := http.StatusOK
	if de.Category() == commonerrors.CategoryInternal {
		status = http.StatusInternalServerError
	}

	commonhttp.WriteJSON(w, status, map[string]any{
		"__typename": errTypename(de.Category()),
		"message":    de.Message(),
	})
}

// writeResult unwraps a service Result into the response union.
func writeResult[T any](w http.ResponseWriter, log *logger.Logger, res result.Result[T], typename, field string) {
	if res.IsOk() {
		writeSuccess(w, typename, field, res.Value())
		return
	}
	writeFailure(w, log, res.Err())
}
