package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&ErrorWithStatusCode{Message: "teapot", StatusCode: http.StatusTeapot}, http.StatusTeapot},
		{&NotFound{What: "board"}, http.StatusNotFound},
		{&VerificationRequired{SiteKey: "k"}, http.StatusUnauthorized},
		{&ContentTooShort{Field: "本文", Min: 1}, http.StatusBadRequest},
		{&ContentTooLong{Field: "本文", Max: 9192}, http.StatusRequestEntityTooLarge},
		{&PostRateLimit{Remaining: 10}, http.StatusTooManyRequests},
		// user-facing but still a failure of the backend, not the request shape
		{&BackendError{Code: "UNKNOWN_EMOJI", Message: "x"}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StatusCode(c.err), "error %v", c.err)
		// wrapping must not change the mapping
		assert.Equal(t, c.want, StatusCode(fmt.Errorf("context: %w", c.err)))
	}
}

func TestDetail(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", Detail(&NotFound{What: "thread"}))
	assert.Equal(t, "VERIFICATION_REQUIRED", Detail(&VerificationRequired{}))
	assert.Equal(t, "CONTENT_TOO_SHORT", Detail(&ContentTooShort{Field: "本文", Min: 1}))
	assert.Equal(t, "CONTENT_TOO_LONG", Detail(&ContentTooLong{Field: "本文", Max: 9192}))
	assert.Equal(t, "OTITUITE", Detail(&PostRateLimit{Remaining: 3}))
	assert.Equal(t, "THREAD_FULL", Detail(&BackendError{Code: "THREAD_FULL", Message: "x"}))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", Detail(errors.New("boom")))
}
