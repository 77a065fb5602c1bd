package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/c360/modhostbridge/plugin"
)

func searchTestCatalog() plugin.Catalog {
	return plugin.Catalog{
		"urn:reverb": {
			URI:     "urn:reverb",
			Name:    "Plate Reverb",
			Comment: "a classic plate-style reverb algorithm",
			Author:  plugin.Author{Name: "Acme Audio"},
			Ports: plugin.PortSet{
				AudioInput:  []plugin.Port{{Index: 0, Symbol: "in"}},
				AudioOutput: []plugin.Port{{Index: 0, Symbol: "out"}},
				ControlInput: []plugin.Port{{Index: 1, Symbol: "decay"}},
			},
			Categories: []string{"Reverb"},
		},
		"urn:delay": {
			URI:     "urn:delay",
			Name:    "Tape Delay",
			Comment: "warm analog-modeled delay line",
			Author:  plugin.Author{Name: "Beta Instruments"},
			Ports: plugin.PortSet{
				AudioInput:   []plugin.Port{{Index: 0, Symbol: "in"}},
				AudioOutput:  []plugin.Port{{Index: 0, Symbol: "out"}},
				ControlInput: []plugin.Port{{Index: 1, Symbol: "feedback"}},
			},
			Categories: []string{"Delay"},
		},
	}
}

func TestSearchCatalog_FreeTextMatchesComment(t *testing.T) {
	catalog := searchTestCatalog()

	results := searchCatalog(catalog, plugin.SearchCriteria{}, "plate-style")
	assert.Len(t, results, 1)
	assert.Equal(t, "urn:reverb", results[0].URI)
}

func TestSearchCatalog_FreeTextMatchesNameAndAuthor(t *testing.T) {
	catalog := searchTestCatalog()

	byName := searchCatalog(catalog, plugin.SearchCriteria{}, "tape")
	assert.Len(t, byName, 1)
	assert.Equal(t, "urn:delay", byName[0].URI)

	byAuthor := searchCatalog(catalog, plugin.SearchCriteria{}, "acme")
	assert.Len(t, byAuthor, 1)
	assert.Equal(t, "urn:reverb", byAuthor[0].URI)
}

func TestSearchCatalog_EmptyQueryReturnsWholeCatalog(t *testing.T) {
	catalog := searchTestCatalog()

	results := searchCatalog(catalog, plugin.SearchCriteria{}, "")
	assert.Len(t, results, 2)
	assert.Equal(t, "urn:delay", results[0].URI) // sorted by URI
	assert.Equal(t, "urn:reverb", results[1].URI)
}

func TestSearchCatalog_StructuredCriteriaIgnoresQuery(t *testing.T) {
	catalog := searchTestCatalog()

	results := searchCatalog(catalog, plugin.SearchCriteria{Category: "Delay"}, "reverb")
	assert.Len(t, results, 1)
	assert.Equal(t, "urn:delay", results[0].URI)
}

func TestSearchCatalog_ParameterSymbolCriteria(t *testing.T) {
	catalog := searchTestCatalog()

	results := searchCatalog(catalog, plugin.SearchCriteria{ParameterSymbol: "decay"}, "")
	assert.Len(t, results, 1)
	assert.Equal(t, "urn:reverb", results[0].URI)
}
