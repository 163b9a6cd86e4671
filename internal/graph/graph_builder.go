package graph

import (
	"context"
	"fmt"

	"kvloc/internal/localization"
	"kvloc/internal/table"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// GraphBuilder publishes translation coverage into Neo4j:
// (:Category)-[:HAS_RECORD]->(:Record)-[:TRANSLATED_IN]->(:Language).
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Category) REQUIRE c.name IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (r:Record) REQUIRE r.key IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (l:Language) REQUIRE l.name IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// recordParams flattens merged records into query parameters.
func recordParams(category string, records []table.Record) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		rows = append(rows, map[string]any{
			"key":       category + "/" + r.ID,
			"id":        r.ID,
			"english":   r.English,
			"text":      r.Localized,
			"localized": localization.Classify(r),
		})
	}
	return rows
}

// PublishCategory upserts one merged table for a language. Any previous
// TRANSLATED_IN edge of these records for the language is replaced.
func (gb *GraphBuilder) PublishCategory(ctx context.Context, language, category string, records []table.Record) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	rows := recordParams(category, records)
	_, err := session.Run(ctx, `
		MERGE (c:Category {name: $category})
		MERGE (l:Language {name: $language})
		WITH c, l
		UNWIND $rows AS row
		MERGE (r:Record {key: row.key})
		SET r.id = row.id, r.english = row.english
		MERGE (c)-[:HAS_RECORD]->(r)
		MERGE (r)-[t:TRANSLATED_IN]->(l)
		SET t.text = row.text, t.localized = row.localized
	`, map[string]any{
		"category": category,
		"language": language,
		"rows":     rows,
	})
	if err != nil {
		return fmt.Errorf("publish %s/%s: %w", language, category, err)
	}

	log.Debug().Str("language", language).Str("category", category).Int("records", len(rows)).Msg("Published category")
	return nil
}
