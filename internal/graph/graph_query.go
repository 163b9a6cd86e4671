package graph

import (
	"context"
	"fmt"

	"kvloc/internal/localization"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// CategoryCoverage is the coverage of one category as stored in the graph.
type CategoryCoverage struct {
	Category string
	localization.Coverage
}

// GraphQuerier reads coverage back from the Neo4j graph.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// Coverage returns per-category coverage for a language, ordered by category.
func (gq *GraphQuerier) Coverage(ctx context.Context, language string) ([]CategoryCoverage, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (c:Category)-[:HAS_RECORD]->(:Record)-[t:TRANSLATED_IN]->(:Language {name: $language})
		RETURN c.name AS category,
		       count(t) AS total,
		       sum(CASE WHEN t.localized THEN 1 ELSE 0 END) AS localized
		ORDER BY category
	`, map[string]any{"language": language})
	if err != nil {
		return nil, fmt.Errorf("query coverage: %w", err)
	}

	var out []CategoryCoverage
	for result.Next(ctx) {
		record := result.Record()
		category, _ := record.Get("category")
		total, _ := record.Get("total")
		localized, _ := record.Get("localized")

		out = append(out, CategoryCoverage{
			Category: fmt.Sprintf("%v", category),
			Coverage: localization.Coverage{
				Localized: toInt(localized),
				Total:     toInt(total),
			},
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read coverage: %w", err)
	}

	return out, nil
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
