package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestRendersCategoriesInOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Write(ctx, WriteRequest{Category: "user-preferences", Key: "tone", Value: "direct"})
	require.NoError(t, err)
	_, err = s.Write(ctx, WriteRequest{Category: "patterns", Key: "retries", Value: "backoff", Reason: "flaky network"})
	require.NoError(t, err)

	dr, err := s.Digest(ctx, DigestRequest{})
	require.NoError(t, err)
	assert.True(t, dr.Success)
	assert.Contains(t, dr.Markdown, "### user-preferences")
	assert.Contains(t, dr.Markdown, "### patterns")
	assert.Contains(t, dr.Markdown, "**tone**: direct")
	assert.Contains(t, dr.Markdown, "flaky network")

	prefIdx := strings.Index(dr.Markdown, "### user-preferences")
	patIdx := strings.Index(dr.Markdown, "### patterns")
	assert.Less(t, prefIdx, patIdx, "sections follow canonical category order")
}

func TestDigestRespectsBudget(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	long := strings.Repeat("words and more words ", 200)
	_, err := s.Write(ctx, WriteRequest{Category: "user-preferences", Key: "big", Value: long})
	require.NoError(t, err)
	_, err = s.Write(ctx, WriteRequest{Category: "patterns", Key: "small", Value: "tiny"})
	require.NoError(t, err)

	dr, err := s.Digest(ctx, DigestRequest{Budget: 50})
	require.NoError(t, err)
	assert.True(t, dr.Truncated)
	assert.LessOrEqual(t, dr.Tokens, 50)
	assert.NotContains(t, dr.Markdown, "big", "the oversized section is dropped, not split")
}

func TestDigestEmptyStore(t *testing.T) {
	s := newTestStore(t)

	dr, err := s.Digest(context.Background(), DigestRequest{})
	require.NoError(t, err)
	assert.True(t, dr.Success)
	assert.Empty(t, dr.Markdown)
	assert.Zero(t, dr.Tokens)
}
