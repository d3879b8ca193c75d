package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/File-Sharing-BondBridg/Image-Service/internal/services"
	_ "github.com/lib/pq"
)

// PostgresStorage is one shard of the scan ledger.
type PostgresStorage struct {
	Db *sql.DB
}

var (
	shardsMu       sync.RWMutex
	postgresShards []*PostgresStorage
)

// Connect establishes connection to PostgreSQL and prepares the schema.
func (p *PostgresStorage) Connect(connectionString string) error {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p.Db = db

	if err := p.createTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("[DB] connected to PostgreSQL")
	return nil
}

// InitializePostgresShards connects every ledger shard. The order of
// connections decides which author lands on which shard.
func InitializePostgresShards(connections []string) error {
	shards := make([]*PostgresStorage, 0, len(connections))
	for i, conn := range connections {
		pg := &PostgresStorage{}
		if err := pg.Connect(conn); err != nil {
			for _, s := range shards {
				_ = s.Db.Close()
			}
			return fmt.Errorf("failed to connect shard %d: %w", i, err)
		}
		shards = append(shards, pg)
	}

	SetPostgresShards(shards...)
	return nil
}

// SetPostgresShards installs already opened shards.
func SetPostgresShards(shards ...*PostgresStorage) {
	shardsMu.Lock()
	postgresShards = shards
	shardsMu.Unlock()
}

// ClosePostgresShards closes and forgets every shard.
func ClosePostgresShards() {
	shardsMu.Lock()
	defer shardsMu.Unlock()
	for _, s := range postgresShards {
		if s != nil && s.Db != nil {
			_ = s.Db.Close()
		}
	}
	postgresShards = nil
}

// GetPostgresForAuthor returns the shard owning author's rows, or nil when
// the ledger is not configured.
func GetPostgresForAuthor(author string) *PostgresStorage {
	shardsMu.RLock()
	defer shardsMu.RUnlock()

	if len(postgresShards) == 0 {
		return nil
	}
	shard := services.ResolveShard(author, len(postgresShards))
	log.Printf("[DB] author=%s -> shard=%d", author, shard)
	return postgresShards[shard]
}

// GetStats returns per-shard ledger counters.
func GetStats(ctx context.Context) map[string]any {
	shardsMu.RLock()
	defer shardsMu.RUnlock()

	stats := map[string]any{}
	for i, shard := range postgresShards {
		stats[fmt.Sprintf("shard_%d", i)] = shard.getStats(ctx)
	}
	return stats
}
