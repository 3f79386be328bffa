package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestGeneratedTokensAreValidUUIDs(t *testing.T) {
	g := NewUUID()
	first := g.GenerateSessionToken()
	second := g.GenerateSessionToken()

	require.NotEqual(t, first, second)
	_, err := uuid.Parse(string(first))
	require.NoError(t, err)
}
