package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stevehedden/kgcatalog/internal/sparql"
)

func entity(id string) string { return wikidataEntityPrefix + id }

func TestCleanScoresAndRanks(t *testing.T) {
	cleaner := NewCleaner(DefaultWeights())

	raw := []sparql.Row{
		{
			"item":             entity("Q2"),
			"itemLabel":        "Foo",
			"officialWebsites": "",
			"licenses":         "",
		},
		{
			"item":             entity("Q1"),
			"itemLabel":        "OWL",
			"officialWebsites": "http://owl.org",
			"licenses":         "CC0",
		},
	}

	rows, dropped := cleaner.Clean(KindOntology, raw)
	require.Zero(t, dropped)
	require.Len(t, rows, 2)

	// Q1 ranks first on completeness: label + website + license.
	require.Equal(t, "Q1", rows[0].ID)
	require.Equal(t, 3, rows[0].Score)
	require.Equal(t, "Q2", rows[1].ID)
	require.Equal(t, 1, rows[1].Score)
}

func TestCleanIsDeterministic(t *testing.T) {
	cleaner := NewCleaner(DefaultWeights())

	raw := []sparql.Row{
		{"item": entity("Q3"), "itemLabel": "abc", "licenses": "MIT"},
		{"item": entity("Q1"), "itemLabel": "abc"},
		{"item": entity("Q2"), "itemLabel": "abc"},
		{"item": entity("Q4"), "itemLabel": "zzz", "officialWebsites": "https://z.example"},
	}

	first, _ := cleaner.Clean(KindOntology, raw)
	second, _ := cleaner.Clean(KindOntology, raw)
	require.Equal(t, first, second)

	// Same label and score fall back to identifier order.
	require.Equal(t, []string{first[0].ID, first[1].ID, first[2].ID, first[3].ID},
		[]string{"Q3", "Q4", "Q1", "Q2"})
}

func TestCleanCollapsesDuplicatesKeepingMostComplete(t *testing.T) {
	cleaner := NewCleaner(DefaultWeights())

	raw := []sparql.Row{
		{"item": entity("Q5"), "itemLabel": "SKOS"},
		{"item": entity("Q5"), "itemLabel": "SKOS", "officialWebsites": "https://www.w3.org/skos"},
	}

	rows, dropped := cleaner.Clean(KindOntology, raw)
	require.Zero(t, dropped)
	require.Len(t, rows, 1)
	require.Equal(t, "https://www.w3.org/skos", rows[0].Website)
}

func TestCleanFillsUnknownSentinels(t *testing.T) {
	cleaner := NewCleaner(DefaultWeights())

	rows, _ := cleaner.Clean(KindOntology, []sparql.Row{
		{"item": entity("Q6"), "itemLabel": "FOAF"},
	})
	require.Len(t, rows, 1)
	require.Equal(t, Unknown, rows[0].License)
	require.Equal(t, Unknown, rows[0].Website)
	require.Equal(t, Unknown, rows[0].Description)
	require.Equal(t, "FOAF", rows[0].Label)
}

func TestCleanDropsRowsWithoutIdentifier(t *testing.T) {
	cleaner := NewCleaner(DefaultWeights())

	rows, dropped := cleaner.Clean(KindOntology, []sparql.Row{
		{"itemLabel": "orphan"},
		{"item": entity("Q7"), "itemLabel": "kept"},
	})
	require.Equal(t, 1, dropped)
	require.Len(t, rows, 1)
	require.Equal(t, "Q7", rows[0].ID)
}

func TestCleanPicksFirstWebsite(t *testing.T) {
	cleaner := NewCleaner(DefaultWeights())

	rows, _ := cleaner.Clean(KindOntology, []sparql.Row{
		{"item": entity("Q8"), "itemLabel": "x", "officialWebsites": "https://a.example | https://b.example"},
	})
	require.Equal(t, "https://a.example", rows[0].Website)
}

func TestCleanSoftwareOrdersByLatestRelease(t *testing.T) {
	cleaner := NewCleaner(DefaultWeights())

	raw := []sparql.Row{
		{"item": entity("Q10"), "itemLabel": "oldtool", "latestReleaseDate": "2020-01-01T00:00:00Z", "licenses": "MIT", "officialWebsites": "https://old.example"},
		{"item": entity("Q11"), "itemLabel": "newtool", "latestReleaseDate": "2024-06-01T00:00:00Z"},
		{"item": entity("Q12"), "itemLabel": "undated", "licenses": "Apache-2.0"},
	}

	rows, _ := cleaner.Clean(KindSoftware, raw)
	require.Equal(t, []string{"Q11", "Q10", "Q12"},
		[]string{rows[0].ID, rows[1].ID, rows[2].ID})
	require.NotNil(t, rows[0].LatestRelease)
	require.Nil(t, rows[2].LatestRelease)
}

func TestCustomWeights(t *testing.T) {
	cleaner := NewCleaner(ScoringWeights{Label: 0, Description: 0, Website: 5, License: 2})

	rows, _ := cleaner.Clean(KindOntology, []sparql.Row{
		{"item": entity("Q1"), "itemLabel": "a", "licenses": "CC0"},
		{"item": entity("Q2"), "itemLabel": "b", "officialWebsites": "https://b.example"},
	})

	require.Equal(t, "Q2", rows[0].ID)
	require.Equal(t, 5, rows[0].Score)
	require.Equal(t, 2, rows[1].Score)
}

func TestFilterIsCaseInsensitiveSubstring(t *testing.T) {
	rows := []Resource{
		{ID: "Q1", Label: "OWL"},
		{ID: "Q2", Label: "Foo"},
		{ID: "Q3", Label: "growl vocabulary"},
	}

	filtered := Filter(rows, "label", "owl")
	require.Len(t, filtered, 2)
	require.Equal(t, "Q1", filtered[0].ID)
	require.Equal(t, "Q3", filtered[1].ID)

	// Other columns are filterable too.
	rows[1].License = "CC0"
	require.Len(t, Filter(rows, "license", "cc0"), 1)

	// Empty filter returns everything.
	require.Len(t, Filter(rows, "label", ""), 3)
}

func TestSortOverridesRankOrder(t *testing.T) {
	rows := []Resource{
		{ID: "Q1", Label: "zebra", Score: 3},
		{ID: "Q2", Label: "ant", Score: 1},
		{ID: "Q3", Label: "mole", Score: 2},
	}

	Sort(rows, "label", false)
	require.Equal(t, []string{"ant", "mole", "zebra"},
		[]string{rows[0].Label, rows[1].Label, rows[2].Label})

	Sort(rows, "score", true)
	require.Equal(t, 3, rows[0].Score)

	Sort(rows, "score", false)
	require.Equal(t, 1, rows[0].Score)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("")
	require.NoError(t, err)
	require.Equal(t, KindOntology, kind)

	kind, err = ParseKind("Software")
	require.NoError(t, err)
	require.Equal(t, KindSoftware, kind)

	_, err = ParseKind("datasets")
	require.Error(t, err)
}
