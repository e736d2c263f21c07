package stack_error

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackErrorStack(t *testing.T) {
	cause := errors.New("boom")

	te := TrackErrorStack(cause).
		AddContext("path", "sections[0].components[1]").
		AddContext("component", "Paragraph")

	require.Len(t, te.ErrStack, 1)
	assert.Equal(t, "boom", te.Error())
	assert.True(t, errors.Is(te, cause))

	t.Run("rewrap appends trace and keeps deepest context", func(t *testing.T) {
		again := TrackErrorStack(te).AddContext("path", "sections[0]")

		assert.Same(t, te, again)
		assert.Len(t, again.ErrStack, 2)
		assert.Equal(t, "sections[0].components[1]", again.Context["path"])
	})

	t.Run("attrs expose context", func(t *testing.T) {
		assert.Len(t, te.Attrs(), 2)
	})
}
