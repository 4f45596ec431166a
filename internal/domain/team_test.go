package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeams_ThirtyCanonical(t *testing.T) {
	assert.Len(t, Teams(), 30)
	assert.Len(t, CanonicalNames(), 30)
}

func TestResolveTeam_AllFormats(t *testing.T) {
	for _, name := range []string{
		"Los Angeles Lakers", // canónico
		"lakers",             // apodo
		"LAL",                // abreviatura
	} {
		team, ok := ResolveTeam(name)
		assert.True(t, ok, name)
		assert.Equal(t, "Los Angeles Lakers", team.Name)
	}
}

func TestResolveTeam_Aliases(t *testing.T) {
	team, ok := ResolveTeam("Portland Trailblazers")
	assert.True(t, ok)
	assert.Equal(t, "Portland Trail Blazers", team.Name)

	team, ok = ResolveTeam("sixers")
	assert.True(t, ok)
	assert.Equal(t, "Philadelphia 76ers", team.Name)
}

func TestResolveTeam_NoSubstringMatching(t *testing.T) {
	// "Los Angeles" ambiguo entre dos equipos: jamás resolver por prefijo
	_, ok := ResolveTeam("Los Angeles")
	assert.False(t, ok)

	_, ok = ResolveTeam("")
	assert.False(t, ok)
}

func TestCanonicalize_UnknownPassesThrough(t *testing.T) {
	assert.Equal(t, "Seattle SuperSonics", Canonicalize(" Seattle SuperSonics "))
	assert.Equal(t, "Golden State Warriors", Canonicalize("GSW"))
}

func TestIsCanonical_ExactOnly(t *testing.T) {
	assert.True(t, IsCanonical("Utah Jazz"))
	assert.False(t, IsCanonical("jazz"))
	assert.False(t, IsCanonical("UTA"))
}
