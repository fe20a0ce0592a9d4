package inbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySeen(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2)

	seen, err := m.Seen(ctx, "a")
	require.NoError(t, err)
	assert.False(t, seen)
	seen, _ = m.Seen(ctx, "a")
	assert.True(t, seen)

	_, _ = m.Seen(ctx, "b")
	_, _ = m.Seen(ctx, "c")
	seen, _ = m.Seen(ctx, "a")
	assert.False(t, seen, "oldest id is evicted once the limit is hit")
	seen, _ = m.Seen(ctx, "c")
	assert.True(t, seen)
}
