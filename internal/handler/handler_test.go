package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ekomarov/planfact/internal/engine"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewHandler(nil, log)
}

func TestRespondError_StatusMapping(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation error maps to 400",
			err:  &engine.ValidationError{Field: "amount", Msg: "must be positive"},
			want: http.StatusBadRequest,
		},
		{
			name: "wrapped validation error maps to 400",
			err:  fmt.Errorf("create planned: %w", &engine.ValidationError{Field: "interval", Msg: "must be >= 1"}),
			want: http.StatusBadRequest,
		},
		{
			name: "not found maps to 404",
			err:  fmt.Errorf("occurrence 42: %w", engine.ErrNotFound),
			want: http.StatusNotFound,
		},
		{
			name: "lifecycle violation maps to 409",
			err:  fmt.Errorf("occurrence 42 is EXECUTED: %w", engine.ErrLifecycleViolation),
			want: http.StatusConflict,
		},
		{
			name: "anything else maps to 500",
			err:  fmt.Errorf("connection refused"),
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.respondError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, 15, d.Day())

	_, err = parseDate("15.03.2026")
	require.Error(t, err)
	assert.True(t, engine.IsValidation(err))
}

func TestParseDateOr_EmptyFallsBack(t *testing.T) {
	fallback, err := parseDate("2026-01-01")
	require.NoError(t, err)

	got, err := parseDateOr("", fallback)
	require.NoError(t, err)
	assert.True(t, got.Equal(fallback))

	got, err = parseDateOr("2026-06-30", fallback)
	require.NoError(t, err)
	assert.False(t, got.Equal(fallback))
}
