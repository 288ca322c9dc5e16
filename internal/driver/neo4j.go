package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/physiokg/internal/config"
	"github.com/agenthands/physiokg/internal/logger"
)

// Neo4jDriver talks Bolt to Memgraph or Neo4j. Queries are routed to readers.
type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	Database string
	log      *logger.Logger
}

func NewNeo4jDriver(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (*Neo4jDriver, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	auth := neo4j.NoAuth()
	if cfg.User != "" {
		auth = neo4j.BasicAuth(cfg.User, cfg.Password, "")
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
		if timeout > 0 {
			c.SocketConnectTimeout = timeout
		}
	})
	if err != nil {
		return nil, fmt.Errorf("init driver: %w", err)
	}

	vctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(vctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify connectivity: %w", err)
	}

	log = log.With("client", "Neo4jDriver")
	log.Info("connected to graph store", "uri", cfg.URI, "database", cfg.Database)
	return &Neo4jDriver{Driver: driver, Database: cfg.Database, log: log}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return d.execute(ctx, query, params, neo4j.ExecuteQueryWithReadersRouting())
}

// ExecuteWrite runs query on the cluster writer. Only administrative callers
// and test fixtures use it.
func (d *Neo4jDriver) ExecuteWrite(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	return d.execute(ctx, query, params, neo4j.ExecuteQueryWithWritersRouting())
}

func (d *Neo4jDriver) execute(ctx context.Context, query string, params map[string]interface{}, routing neo4j.ExecuteQueryConfigurationOption) (neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{routing}
	if d.Database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.Database))
	}

	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

// BuildIndices creates lookup indexes on the name property of every label the
// reasoning queries touch. It is an administrative operation; the read path
// never calls it.
func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX ON :Condition(name);",
		"CREATE INDEX ON :Impairment(name);",
		"CREATE INDEX ON :Assessment(name);",
		"CREATE INDEX ON :Intervention(name);",
		"CREATE INDEX ON :Exercise(name);",
		"CREATE INDEX ON :RedFlag(flag);",
		"CREATE INDEX ON :Medication(name);",
		"CREATE INDEX ON :OutcomeMeasure(name);",
	}

	for _, q := range queries {
		if _, err := d.ExecuteWrite(ctx, q, nil); err != nil {
			// the index may already exist
			d.log.Warn("failed to create index", "query", q, "error", err)
		}
	}

	return nil
}
