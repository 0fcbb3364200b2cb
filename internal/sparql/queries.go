package sparql

import "fmt"

// Query texts are fixed configuration; only the inner result limit varies.
// The label service resolves labels in the reader's language with
// multilingual/English fallback.

// OntologyVocabularyQuery selects ontologies, controlled vocabularies, and
// taxonomies with their websites, licenses, and parent projects.
func OntologyVocabularyQuery(limit int) string {
	return fmt.Sprintf(`SELECT
  ?item
  ?itemLabel
  ?itemDescription
  (GROUP_CONCAT(DISTINCT STR(?officialWebsite); separator=" | ") AS ?officialWebsites)
  (GROUP_CONCAT(DISTINCT ?licenseLabel; separator=" | ") AS ?licenses)
  (GROUP_CONCAT(DISTINCT ?partOfLabel; separator=" | ") AS ?partOf)
WHERE {
  SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],mul,en". }

  {
    SELECT DISTINCT ?item WHERE {
      {
        ?item p:P31 ?statement0 .
        ?statement0 (ps:P31/(wdt:P279*)) wd:Q324254 .   # ontology
      }
      UNION
      {
        ?item p:P31 ?statement1 .
        ?statement1 (ps:P31/(wdt:P279*)) wd:Q1469824 .  # controlled vocabulary
      }
      UNION
      {
        ?item p:P31 ?statement2 .
        ?statement2 (ps:P31/(wdt:P279*)) wd:Q8269924 .  # taxonomy
      }
    }
    LIMIT %d
  }

  OPTIONAL { ?item wdt:P856 ?officialWebsite . }
  OPTIONAL { ?item wdt:P275 ?license . }
  OPTIONAL { ?item wdt:P361 ?partOfEntity . }

  SERVICE wikibase:label {
    bd:serviceParam wikibase:language "[AUTO_LANGUAGE],mul,en".
    ?license rdfs:label ?licenseLabel .
    ?partOfEntity rdfs:label ?partOfLabel .
  }
}
GROUP BY ?item ?itemLabel ?itemDescription`, limit)
}

// SoftwareQuery selects semantic / knowledge-graph software together with the
// latest version statement and its publication date qualifier.
func SoftwareQuery(limit int) string {
	return fmt.Sprintf(`SELECT
  ?item
  ?itemLabel
  ?itemDescription
  (GROUP_CONCAT(DISTINCT STR(?officialWebsite); separator=" | ") AS ?officialWebsites)
  (GROUP_CONCAT(DISTINCT ?licenseLabel; separator=" | ") AS ?licenses)
  (GROUP_CONCAT(DISTINCT ?partOfLabel; separator=" | ") AS ?partOf)
  (SAMPLE(?version) AS ?latestVersion)
  (MAX(?pubDate) AS ?latestReleaseDate)
WHERE {
  SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],mul,en". }

  {
    SELECT DISTINCT ?item WHERE {
      ?item wdt:P31/wdt:P279* wd:Q124653107 .  # software
    }
    LIMIT %d
  }

  OPTIONAL { ?item wdt:P856 ?officialWebsite . }
  OPTIONAL { ?item wdt:P275 ?license . }
  OPTIONAL { ?item wdt:P361 ?partOfEntity . }

  # P348 statement + P577 qualifier on that statement
  OPTIONAL {
    ?item p:P348 ?verStmt .
    ?verStmt ps:P348 ?version .
    OPTIONAL { ?verStmt pq:P577 ?pubDate . }
  }

  SERVICE wikibase:label {
    bd:serviceParam wikibase:language "[AUTO_LANGUAGE],mul,en".
    ?license rdfs:label ?licenseLabel .
    ?partOfEntity rdfs:label ?partOfLabel .
  }
}
GROUP BY ?item ?itemLabel ?itemDescription`, limit)
}
