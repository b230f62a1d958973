package container

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Build(t *testing.T) {
	reg, err := Catalog{Name: "base", Single: "Shiny", Multi: "Chest", Containers: []Definition{chest, shiny, totem}}.Build()
	require.NoError(t, err)

	assert.Equal(t, "Shiny", reg.DefaultSingle().Name)
	assert.Equal(t, "Chest", reg.DefaultMulti().Name)
	assert.Equal(t, 3, reg.Len())
}

func TestCatalog_BuildRejectsMissingDefault(t *testing.T) {
	_, err := Catalog{Single: "Shiny", Multi: "Gone", Containers: []Definition{shiny}}.Build()
	assert.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestCatalog_BuildRejectsDuplicates(t *testing.T) {
	_, err := Catalog{Single: "Shiny", Multi: "Shiny", Containers: []Definition{shiny, shiny}}.Build()
	var dup *DuplicateContainerError
	assert.True(t, errors.As(err, &dup))
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	reg, err := NewRegistry(shiny, shiny)
	require.NoError(t, err)

	clone := reg.Clone()
	require.NoError(t, clone.Define(chest))

	assert.False(t, reg.Has("Chest"))
	assert.True(t, clone.Has("Chest"))
	assert.Equal(t, "Shiny", clone.DefaultSingle().Name)
}
