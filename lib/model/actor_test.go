package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActor(t *testing.T) {
	t.Parallel()

	a, err := NewActor("  Jane Doe ", " Jane.Doe@Example.COM ", testTime)
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", a.Name())
	assert.Equal(t, "jane.doe@example.com", a.Email())
	assert.True(t, testTime.Equal(a.Timestamp()))
}

func TestNewActorLowercasesUnicodeEmail(t *testing.T) {
	t.Parallel()

	a, err := NewActor("Émile", "ÉMILE@EXAMPLE.FR", testTime)
	require.NoError(t, err)

	assert.Equal(t, "émile@example.fr", a.Email())
}

func TestNewActorDoesNotValidateEmailFormat(t *testing.T) {
	t.Parallel()

	a, err := NewActor("bot", "not an email", testTime)
	require.NoError(t, err)

	assert.Equal(t, "not an email", a.Email())
}

func TestNewActorCollectsAllErrors(t *testing.T) {
	t.Parallel()

	_, err := NewActor(" ", "", time.Time{})

	verr := requireValidationError(t, err)
	assert.Equal(t, "Actor", verr.Entity)
	assert.Equal(t, []string{"name", "email", "timestamp"}, verr.Fields())
	assert.ErrorIs(t, err, ErrEmpty)
	assert.ErrorIs(t, err, ErrMissing)
	assert.True(t, verr.HasKind(FieldInvalid))
	assert.False(t, verr.HasKind(CrossFieldInvariant))
}

func TestNewActorLengthBounds(t *testing.T) {
	t.Parallel()

	_, err := NewActor(strings.Repeat("n", MaxActorNameLength), strings.Repeat("e", MaxActorEmailLength), testTime)
	assert.NoError(t, err)

	_, err = NewActor(strings.Repeat("n", MaxActorNameLength+1), strings.Repeat("e", MaxActorEmailLength+1), testTime)
	verr := requireValidationError(t, err)
	assert.Equal(t, []string{"name", "email"}, verr.Fields())
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestActorString(t *testing.T) {
	t.Parallel()

	a := newTestActor(t)

	assert.Equal(t, "Jane Doe <jane@example.com> 1705332600 -0500", a.String())
	assert.Equal(t, "Actor(name=\"Jane Doe\", email=\"jane@example.com\", timestamp=2024-01-15T10:30:00-05:00)", a.GoString())
}

func TestActorEqual(t *testing.T) {
	t.Parallel()

	a := newTestActor(t)
	b, err := NewActor("Jane Doe", "JANE@example.com", testTime.UTC())
	require.NoError(t, err)
	c, err := NewActor("John Doe", "jane@example.com", testTime)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}
