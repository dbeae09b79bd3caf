package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	n, err := parseAmount(" 25 ")
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	_, err = parseAmount("12abc")
	assert.Error(t, err)
}

func TestResolveUserAcceptsUUIDWithoutLookup(t *testing.T) {
	id := uuid.New()
	got, err := resolveUser(context.Background(), nil, id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestResolveUserRejectsGarbage(t *testing.T) {
	_, err := resolveUser(context.Background(), nil, "not-a-user")
	assert.Error(t, err)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["migrate"])
	assert.True(t, names["bootstrap"])
	assert.True(t, names["credits"])
}
