package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:   http.StatusBadRequest,
		CodeNotFound:     http.StatusNotFound,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeRateLimited:  http.StatusTooManyRequests,
		CodePersistence:  http.StatusInternalServerError,
		CodeQuery:        http.StatusInternalServerError,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := NotFoundf("category %q not found", "autos")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))
}

func TestPersistenceKeepsCause(t *testing.T) {
	cause := stderrors.New("duplicate key value violates unique constraint")
	err := Persistence(cause, "upsert categories")

	assert.Equal(t, "upsert categories: duplicate key value violates unique constraint", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrPersistence))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeQuery, CodeOf(Query(stderrors.New("boom"), "search listings")))
	assert.Equal(t, CodeInternal, CodeOf(stderrors.New("plain")))
}

func TestWithDetails(t *testing.T) {
	base := Validation("invalid taxonomy")
	detailed := base.WithDetails([]string{"empty slug"})

	assert.Nil(t, base.Details)
	assert.Equal(t, []string{"empty slug"}, detailed.Details)
	assert.True(t, Is(detailed, ErrValidation))
}
