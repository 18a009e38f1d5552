package namegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateProducesAdjectiveNounPair(t *testing.T) {
	name := Generate()
	parts := strings.Split(name, "-")
	require.Len(t, parts, 2)
	require.Contains(t, adjectives, parts[0])
	require.Contains(t, nouns, parts[1])
}
