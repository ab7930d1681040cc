package handler

import (
	"net/http"

	t "github.com/nurbek-a/driver-dispatch/internal/domain/types"
)

func errorResponse(w http.ResponseWriter, status int, message any) {
	env := envelope{"error": message}

	// Write the response using the writeJSON() helper. If this happens to return an
	// error then log it, and fall back to sending the client an empty response with a
	// 500 Internal Server Error status code.
	if err := writeJSON(w, status, env, nil); err != nil {
		w.WriteHeader(500)
	}
}

// domainErrorResponse maps a domain error to its HTTP status and includes
// the stable numeric sub-code so clients can disambiguate rejections.
func domainErrorResponse(w http.ResponseWriter, err error) {
	env := envelope{"error": err.Error()}
	if code := t.Code(err); code != 0 {
		env["code"] = code
	}

	if werr := writeJSON(w, GetCode(err), env, nil); werr != nil {
		w.WriteHeader(500)
	}
}

// failedValidationResponse returns 422 UnprocessableEntity status.
// The syntax of the request content was correct, but the server was unable
// to process the contained instructions. Repeating the request without
// modification will fail with the same error.
func failedValidationResponse(w http.ResponseWriter, errors map[string]string) {
	errorResponse(w, http.StatusUnprocessableEntity, errors)
}

// badRequestResponse returns 400 BadRequest status
func badRequestResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusBadRequest, message)
}

// internalErrorResponse returns 500 InternalServerError status
func internalErrorResponse(w http.ResponseWriter, message any) {
	errorResponse(w, http.StatusInternalServerError, message)
}
