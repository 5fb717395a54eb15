package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAgeGroup(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{key: "15_49", valid: true},
		{key: "15_24", valid: true},
		{key: "adults-2024", valid: true},
		{key: "", valid: false},
		{key: "..", valid: false},
		{key: "../15_49", valid: false},
		{key: "15/49", valid: false},
		{key: ".hidden", valid: false},
		{key: "_15", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			err := ValidateAgeGroup(tt.key)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAgeGroup)
			}
		})
	}
}

func TestAgeGroupLabel(t *testing.T) {
	assert.Equal(t, "Ages 15-49", AgeGroupLabel("15_49"))
	assert.Equal(t, "Ages 15-24", AgeGroupLabel("15_24"))
	assert.Equal(t, "adults", AgeGroupLabel("adults"))
	assert.Equal(t, "15_x", AgeGroupLabel("15_x"))
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog([]string{"15_49", " 15_24 "})
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []AgeGroup{
		{Key: "15_49", Label: "Ages 15-49"},
		{Key: "15_24", Label: "Ages 15-24"},
	}, c.All())
	assert.Equal(t, []string{"15_24", "15_49"}, c.Keys())

	g, ok := c.Get("15_24")
	assert.True(t, ok)
	assert.Equal(t, "Ages 15-24", g.Label)

	_, ok = c.Get("15_64")
	assert.False(t, ok)
}

func TestNewCatalog_Rejects(t *testing.T) {
	_, err := NewCatalog([]string{"15_49", "15_49"})
	assert.ErrorContains(t, err, "listed twice")

	_, err = NewCatalog([]string{"../etc"})
	assert.ErrorIs(t, err, ErrInvalidAgeGroup)
}

func TestCatalog_AllIsACopy(t *testing.T) {
	c, err := NewCatalog([]string{"15_49"})
	require.NoError(t, err)

	all := c.All()
	all[0].Label = "changed"
	g, _ := c.Get("15_49")
	assert.Equal(t, "Ages 15-49", g.Label)
}
