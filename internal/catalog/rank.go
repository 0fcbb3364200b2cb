package catalog

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stevehedden/kgcatalog/internal/sparql"
	"github.com/stevehedden/kgcatalog/pkg/logger"
)

const wikidataEntityPrefix = "http://www.wikidata.org/entity/"

// Cleaner turns raw SPARQL rows into ranked catalog resources. It is a pure
// transformation: identical input always yields identical ordered output.
type Cleaner struct {
	weights ScoringWeights
	log     *zap.Logger
}

// NewCleaner constructs a Cleaner with the supplied scoring weights.
func NewCleaner(weights ScoringWeights) *Cleaner {
	return &Cleaner{
		weights: weights,
		log:     logger.WithModule("catalog"),
	}
}

// Clean normalises raw rows into Resources: rows without an identifier are
// dropped, duplicate identifiers collapse keeping the most complete variant,
// missing optional fields get the "unknown" sentinel, and the result is
// ordered by completeness score descending with label as the tie-break.
// It returns the cleaned rows and the number of dropped rows.
func (c *Cleaner) Clean(kind Kind, rows []sparql.Row) ([]Resource, int) {
	byID := make(map[string]Resource, len(rows))
	order := make([]string, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		res, ok := c.parseRow(kind, row)
		if !ok {
			dropped++
			continue
		}

		existing, seen := byID[res.ID]
		if !seen {
			byID[res.ID] = res
			order = append(order, res.ID)
			continue
		}
		// Keep the most complete variant of a duplicate identifier.
		if res.Score > existing.Score {
			byID[res.ID] = res
		}
	}

	cleaned := make([]Resource, 0, len(order))
	for _, id := range order {
		cleaned = append(cleaned, fillSentinels(byID[id]))
	}

	sortRanked(kind, cleaned)
	return cleaned, dropped
}

// parseRow maps one binding row onto a Resource. Returns false when the row
// has no usable identifier.
func (c *Cleaner) parseRow(kind Kind, row sparql.Row) (Resource, bool) {
	uri := strings.TrimSpace(row["item"])
	id := strings.TrimPrefix(uri, wikidataEntityPrefix)
	if id == "" || strings.Contains(id, "/") {
		c.log.Debug("dropping row without a usable identifier", zap.String("item", uri))
		return Resource{}, false
	}

	res := Resource{
		ID:          id,
		Label:       strings.TrimSpace(row["itemLabel"]),
		Description: strings.TrimSpace(row["itemDescription"]),
		Kind:        kind,
		Website:     firstWebsite(row["officialWebsites"]),
		License:     strings.TrimSpace(row["licenses"]),
		PartOf:      strings.TrimSpace(row["partOf"]),
		WikidataURL: wikidataEntityPrefix + id,
	}

	if kind == KindSoftware {
		res.LatestVersion = strings.TrimSpace(row["latestVersion"])
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row["latestReleaseDate"])); err == nil {
			utc := ts.UTC()
			res.LatestRelease = &utc
		}
	}

	res.Score = c.score(res)
	return res, true
}

// score is a weighted count of populated descriptive fields.
func (c *Cleaner) score(res Resource) int {
	score := 0
	if res.Label != "" {
		score += c.weights.Label
	}
	if res.Description != "" {
		score += c.weights.Description
	}
	if res.Website != "" {
		score += c.weights.Website
	}
	if res.License != "" {
		score += c.weights.License
	}
	return score
}

// firstWebsite picks the first of the pipe-concatenated website values so the
// table renders a single clickable link.
func firstWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if idx := strings.Index(raw, " | "); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.TrimSpace(raw)
}

func fillSentinels(res Resource) Resource {
	if res.Label == "" {
		res.Label = Unknown
	}
	if res.Description == "" {
		res.Description = Unknown
	}
	if res.Website == "" {
		res.Website = Unknown
	}
	if res.License == "" {
		res.License = Unknown
	}
	if res.PartOf == "" {
		res.PartOf = Unknown
	}
	return res
}

// sortRanked orders rows for presentation. Software surfaces fresh releases
// first, mirroring the source catalogue; both kinds then rank by completeness
// score with label and identifier as deterministic tie-breaks.
func sortRanked(kind Kind, rows []Resource) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		if kind == KindSoftware {
			switch {
			case a.LatestRelease != nil && b.LatestRelease == nil:
				return true
			case a.LatestRelease == nil && b.LatestRelease != nil:
				return false
			case a.LatestRelease != nil && b.LatestRelease != nil && !a.LatestRelease.Equal(*b.LatestRelease):
				return a.LatestRelease.After(*b.LatestRelease)
			}
		}

		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if la, lb := strings.ToLower(a.Label), strings.ToLower(b.Label); la != lb {
			return la < lb
		}
		return a.ID < b.ID
	})
}

// Filter returns the rows whose column value contains the substring,
// case-insensitively. An empty substring returns the input unchanged.
func Filter(rows []Resource, column, substring string) []Resource {
	substring = strings.ToLower(strings.TrimSpace(substring))
	if substring == "" {
		return rows
	}

	filtered := make([]Resource, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(columnValue(row, column)), substring) {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// Sort reorders rows by a single column, overriding the default rank order.
// Unknown columns leave the order untouched.
func Sort(rows []Resource, column string, descending bool) {
	if column == "" {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]

		var less bool
		switch column {
		case "score":
			if a.Score == b.Score {
				return false
			}
			less = a.Score < b.Score
		case "latest_release":
			switch {
			case a.LatestRelease == nil:
				return false
			case b.LatestRelease == nil:
				return true
			case a.LatestRelease.Equal(*b.LatestRelease):
				return false
			default:
				less = a.LatestRelease.Before(*b.LatestRelease)
			}
		default:
			va, vb := strings.ToLower(columnValue(a, column)), strings.ToLower(columnValue(b, column))
			if va == vb {
				return false
			}
			less = va < vb
		}

		if descending {
			return !less
		}
		return less
	})
}

func columnValue(res Resource, column string) string {
	switch column {
	case "id":
		return res.ID
	case "description":
		return res.Description
	case "website":
		return res.Website
	case "license":
		return res.License
	case "part_of":
		return res.PartOf
	case "latest_version":
		return res.LatestVersion
	default:
		return res.Label
	}
}
