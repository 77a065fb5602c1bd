package registry

import (
	"sort"
	"strings"

	"github.com/c360/modhostbridge/plugin"
)

// searchCatalog returns catalog entries matching criteria, sorted by URI for
// stable ordering. When every structured field is empty, query is matched as
// a case-insensitive substring against name, author, comment, and URI; an
// empty query with no other criteria returns the whole catalog.
func searchCatalog(catalog plugin.Catalog, criteria plugin.SearchCriteria, query string) []plugin.CatalogEntry {
	var results []plugin.CatalogEntry

	if hasStructuredCriteria(criteria) {
		for _, entry := range catalog {
			if matchesCriteria(entry, criteria) {
				results = append(results, entry)
			}
		}
	} else {
		q := strings.ToLower(strings.TrimSpace(query))
		for _, entry := range catalog {
			if q == "" || matchesQuery(entry, q) {
				results = append(results, entry)
			}
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].URI < results[j].URI })
	return results
}

func hasStructuredCriteria(c plugin.SearchCriteria) bool {
	return c.Category != "" || c.Author != "" || c.ParameterSymbol != "" ||
		c.MinAudioInputs != nil || c.MaxAudioInputs != nil ||
		c.MinAudioOutputs != nil || c.MaxAudioOutputs != nil
}

func matchesQuery(entry plugin.CatalogEntry, lowerQuery string) bool {
	searchable := strings.ToLower(strings.Join([]string{
		entry.Name, entry.Author.Name, entry.Comment, entry.URI,
	}, " "))
	return strings.Contains(searchable, lowerQuery)
}

func matchesCriteria(entry plugin.CatalogEntry, c plugin.SearchCriteria) bool {
	if c.Category != "" {
		found := false
		lowerCat := strings.ToLower(c.Category)
		for _, cat := range entry.Categories {
			if strings.Contains(strings.ToLower(cat), lowerCat) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.Author != "" && !strings.Contains(strings.ToLower(entry.Author.Name), strings.ToLower(c.Author)) {
		return false
	}

	audioIn := len(entry.Ports.AudioInput)
	audioOut := len(entry.Ports.AudioOutput)

	if c.MinAudioInputs != nil && audioIn < *c.MinAudioInputs {
		return false
	}
	if c.MaxAudioInputs != nil && audioIn > *c.MaxAudioInputs {
		return false
	}
	if c.MinAudioOutputs != nil && audioOut < *c.MinAudioOutputs {
		return false
	}
	if c.MaxAudioOutputs != nil && audioOut > *c.MaxAudioOutputs {
		return false
	}

	if c.ParameterSymbol != "" {
		found := false
		lowerSym := strings.ToLower(c.ParameterSymbol)
		for _, port := range entry.Ports.ControlInput {
			if strings.Contains(strings.ToLower(port.Symbol), lowerSym) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
