package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Unknown is the sentinel rendered for optional fields the knowledge graph
// does not populate. Rows never carry empty optional fields in API output.
const Unknown = "unknown"

// Kind selects which catalog query is executed.
type Kind string

const (
	// KindOntology covers ontologies, controlled vocabularies, and taxonomies.
	KindOntology Kind = "ontology"
	// KindSoftware covers semantic / knowledge-graph software.
	KindSoftware Kind = "software"
)

// ParseKind normalises a user-supplied kind string.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(KindOntology):
		return KindOntology, nil
	case string(KindSoftware):
		return KindSoftware, nil
	default:
		return "", fmt.Errorf("unknown resource kind %q", value)
	}
}

// Resource is one cleaned catalog row. Instances are immutable once produced
// by the cleaner for a query cycle.
type Resource struct {
	// ID is the external knowledge-base identifier, e.g. Q324254.
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Kind        Kind   `json:"kind"`
	Website     string `json:"website"`
	License     string `json:"license"`
	PartOf      string `json:"part_of"`
	WikidataURL string `json:"wikidata_url"`

	// Software-only fields.
	LatestVersion string     `json:"latest_version,omitempty"`
	LatestRelease *time.Time `json:"latest_release,omitempty"`

	// Score is the derived completeness rank; higher sorts first.
	Score int `json:"score"`
}

// ScoringWeights controls how much each populated field contributes to the
// completeness score. These are configuration defaults, not contracts.
type ScoringWeights struct {
	Label       int `mapstructure:"label" validate:"min=0"`
	Description int `mapstructure:"description" validate:"min=0"`
	Website     int `mapstructure:"website" validate:"min=0"`
	License     int `mapstructure:"license" validate:"min=0"`
}

// DefaultWeights counts every populated descriptive field once.
func DefaultWeights() ScoringWeights {
	return ScoringWeights{Label: 1, Description: 1, Website: 1, License: 1}
}
