package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/store"
)

func TestAllowList(t *testing.T) {
	l := store.NewAllowList([]string{" Admin@Example.com ", "", "ops"})

	assert.NoError(t, l.Check("admin@example.com"))
	assert.NoError(t, l.Check("OPS"))
	assert.ErrorIs(t, l.Check("guest"), errors.ErrForbidden)
	assert.ErrorIs(t, l.Check(""), errors.ErrForbidden)

	var empty store.AllowList
	assert.ErrorIs(t, empty.Check("ops"), errors.ErrForbidden)
}
