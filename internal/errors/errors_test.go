package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message only",
			err:  &AppError{Code: ErrCodeValidation, Message: "end_year before start_year"},
			want: "end_year before start_year",
		},
		{
			name: "message with cause",
			err: &AppError{
				Code:    ErrCodePersistence,
				Message: "insert sections",
				Cause:   errors.New("connection reset"),
			},
			want: "insert sections: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := Wrap(cause, ErrCodeAnalysisFailure, "analysis raised")
	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	wrapped := fmt.Errorf("outer: %w", err)
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrCodeAnalysisFailure, appErr.Code)
}

func TestCodePredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"validation matches", Validation("bad year"), IsValidation, true},
		{"validation mismatch", Validation("bad year"), IsNotFound, false},
		{"not found", NotFoundf("job %s", "abc"), IsNotFound, true},
		{"analysis failure", AnalysisFailure("raised"), IsAnalysisFailure, true},
		{"persistence", Persistence("write failed"), IsPersistence, true},
		{"incomplete cache hit", IncompleteCacheHitf("found %d sections", 2), IsIncompleteCacheHit, true},
		{"internal", Internal("oops"), IsInternal, true},
		{"plain error is nothing", errors.New("plain"), IsValidation, false},
		{"nil error", nil, IsValidation, false},
		{
			name:  "wrapped chain preserves code",
			err:   fmt.Errorf("ctx: %w", IncompleteCacheHit("3 of 5 sections")),
			check: IsIncompleteCacheHit,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, ErrCodeInternal, "unused"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "unused %d", 1))
}

func TestCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrCodeValidation, Code(Validation("bad")))
	assert.Equal(t, ErrCodeIncompleteCacheHit, Code(fmt.Errorf("w: %w", IncompleteCacheHit("short"))))
	assert.Equal(t, ErrCodeInternal, Code(errors.New("plain")))
}

func TestValidationField(t *testing.T) {
	t.Parallel()

	err := ValidationField("start_year", "must be a four digit year")
	assert.Equal(t, "start_year", err.Field)
	assert.True(t, IsValidation(err))
}
