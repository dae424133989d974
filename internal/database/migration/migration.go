package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id         UUID           PRIMARY KEY,
  owner_id   TEXT           NOT NULL,
  kind       TEXT           NOT NULL CHECK (kind IN ('invoice', 'receipt')),
  number     TEXT           NOT NULL,
  period     INTEGER        NOT NULL,
  sequence   INTEGER        NOT NULL CHECK (sequence >= 1),
  room_name  TEXT           NOT NULL DEFAULT '',
  amount     NUMERIC(18, 2) NOT NULL CHECK (amount >= 0),
  status     TEXT           NOT NULL,
  due_date   TIMESTAMPTZ,
  created_at TIMESTAMPTZ    NOT NULL DEFAULT now()
);`,
	},
	{
		// The arbiter of concurrent sequence allocations.
		Name: "create_unique_index_documents_scope_sequence",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS ux_documents_scope_sequence
  ON documents (owner_id, kind, period, sequence);`,
	},
	{
		Name: "create_index_documents_due_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_due_date ON documents (due_date) WHERE due_date IS NOT NULL;`,
	},
	{
		Name: "create_table_contracts",
		SQL: `CREATE TABLE IF NOT EXISTS contracts (
  id          UUID        PRIMARY KEY,
  owner_id    TEXT        NOT NULL,
  room_name   TEXT        NOT NULL,
  tenant_name TEXT        NOT NULL,
  status      TEXT        NOT NULL,
  start_date  TIMESTAMPTZ NOT NULL,
  end_date    TIMESTAMPTZ NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_contracts_end_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_contracts_end_date ON contracts (status, end_date);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id           UUID        PRIMARY KEY,
  recipient_id TEXT        NOT NULL,
  title        TEXT        NOT NULL,
  body         TEXT        NOT NULL,
  subject_ref  TEXT        NOT NULL DEFAULT '',
  dedupe_key   TEXT        NOT NULL DEFAULT '',
  read         BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_notifications_recipient",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient_id, created_at DESC);`,
	},
	{
		Name: "create_index_notifications_dedupe",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_notifications_dedupe ON notifications (dedupe_key, created_at);`,
	},
	{
		Name: "create_table_activity_events",
		SQL: `CREATE TABLE IF NOT EXISTS activity_events (
  id            UUID        PRIMARY KEY,
  actor_user_id TEXT        NOT NULL DEFAULT '',
  action        TEXT        NOT NULL,
  entity_kind   TEXT        NOT NULL,
  entity_id     TEXT        NOT NULL DEFAULT '',
  entity_name   TEXT        NOT NULL DEFAULT '',
  description   TEXT        NOT NULL DEFAULT '',
  metadata      JSONB,
  client_ip     TEXT        NOT NULL DEFAULT '',
  user_agent    TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_activity_events_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_activity_events_created_at ON activity_events (created_at);`,
	},
}

// EnsureMigrated checks whether the documents table exists and runs the
// migration steps if it does not.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	start := time.Now()

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass('public.documents') IS NOT NULL").Scan(&exists); err != nil {
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}
	if exists {
		log.Info("schema already exists, skipping migration")
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("migration step failed",
				zap.String("step", step.Name),
				zap.Error(err),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Info("migration step applied",
			zap.String("step", step.Name),
			zap.Duration("took", time.Since(stepStart)),
		)
	}

	log.Info("migration finished", zap.Duration("took", time.Since(start)))
	return nil
}
