//go:build integration

package integration

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/physiokg/internal/config"
	"github.com/agenthands/physiokg/internal/core"
	"github.com/agenthands/physiokg/internal/driver"
	"github.com/agenthands/physiokg/internal/logger"
)

// seedFrozenShoulder writes one condition with an entity in every category.
// Every node carries the seed tag so cleanup only touches what this test wrote.
const seedFrozenShoulder = `
CREATE (c:Condition {name: $name, seed: $seed})
CREATE (c)-[:HAS_IMPAIRMENT]->(:Impairment {name: 'Reduced ER ROM', severity: 'Severe', evidence: 'Capsular pattern', seed: $seed})
CREATE (c)-[:HAS_IMPAIRMENT]->(:Impairment {name: 'Night pain', severity: 'Moderate', seed: $seed})
CREATE (c)-[:ASSESSED_BY]->(:Assessment {name: 'Goniometry', type: 'Objective', priority: 'Medium', seed: $seed})
CREATE (c)-[:ASSESSED_BY]->(:Assessment {name: 'SPADI', type: 'PROM', priority: 'High', seed: $seed})
CREATE (c)-[:TREATED_WITH]->(:Intervention {name: 'Joint mobilisation', category: 'Manual therapy', evidence: 'Moderate', seed: $seed})
CREATE (c)-[:PRESCRIBES_EXERCISE]->(:Exercise {name: 'Pendulum', phase: 'Early', dosage: '3x daily', seed: $seed})
CREATE (c)-[:PRESCRIBES_EXERCISE]->(:Exercise {name: 'Sleeper stretch', phase: 'Late', seed: $seed})
CREATE (c)-[:HAS_RED_FLAG]->(:RedFlag {flag: 'Unexplained weight loss', action: 'Refer to GP', urgency: 'High', seed: $seed})
CREATE (c)-[:MANAGED_WITH]->(:Medication {name: 'Corticosteroid injection', indication: 'Freezing phase', seed: $seed})
CREATE (c)-[:MEASURED_BY]->(:OutcomeMeasure {name: 'SPADI', type: 'PROM', frequency: 'Every 4 weeks', seed: $seed})
`

// seedCaseVariant adds a second condition node whose name differs only in case.
// Its entities must never leak into the canonical record.
const seedCaseVariant = `
CREATE (c:Condition {name: $name, seed: $seed})
CREATE (c)-[:HAS_IMPAIRMENT]->(:Impairment {name: 'Variant-only impairment', seed: $seed})
CREATE (c)-[:HAS_RED_FLAG]->(:RedFlag {flag: 'Variant-only flag', urgency: 'Low', seed: $seed})
`

const cleanupSeed = `MATCH (n {seed: $seed}) DETACH DELETE n`

type fixture struct {
	Engine    *core.Engine
	Driver    *driver.Neo4jDriver
	Condition string
	Seed      string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	_ = godotenv.Load("../../.env")

	uri := os.Getenv("MEMGRAPH_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MEMGRAPH_URI not set")
	}

	cfg := config.Default()
	cfg.ApplyEnv(os.Getenv)
	log := logger.NewNop()

	ctx := context.Background()
	d, err := driver.NewNeo4jDriver(ctx, cfg.Store, log)
	require.NoError(t, err)

	seed := uuid.NewString()
	f := &fixture{
		Engine:    core.NewEngine(d, log, cfg.Reasoning),
		Driver:    d,
		Condition: "Frozen Shoulder " + seed[:8],
		Seed:      seed,
	}

	// fixtures write, so they go to the writer like BuildIndices does
	_, err = d.ExecuteWrite(ctx, seedFrozenShoulder, map[string]interface{}{"name": f.Condition, "seed": seed})
	require.NoError(t, err)
	_, err = d.ExecuteWrite(ctx, seedCaseVariant, map[string]interface{}{"name": strings.ToLower(f.Condition), "seed": seed})
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = d.ExecuteWrite(context.Background(), cleanupSeed, map[string]interface{}{"seed": seed})
		_ = d.Close(context.Background())
	})
	return f
}
