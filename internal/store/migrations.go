package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// runMigrations creates the schema and seeds a demo pipeline if the database
// is empty.
func runMigrations(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pipelines (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stages (
		id TEXT PRIMARY KEY,
		pipeline_id TEXT NOT NULL,
		name TEXT NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (pipeline_id) REFERENCES pipelines(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		website TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		company_id TEXT,
		FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE SET NULL
	);

	CREATE TABLE IF NOT EXISTS deals (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount INTEGER NOT NULL DEFAULT 0,
		company_id TEXT,
		contact_id TEXT,
		close_date TIMESTAMP,
		probability INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'open',
		stage_id TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (stage_id) REFERENCES stages(id),
		FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE SET NULL,
		FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE SET NULL
	);

	CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage_id, created_at);

	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		deal_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		summary TEXT NOT NULL,
		due_date TIMESTAMP,
		done INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_activities_deal ON activities(deal_id);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	return seedDemoPipeline(ctx, db)
}

// seedDemoPipeline inserts a starter pipeline with a handful of records when
// the pipelines table is empty, so a fresh install shows a working board.
func seedDemoPipeline(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pipelines").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	pipelineID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO pipelines (id, name) VALUES (?, ?)", pipelineID, "Sales"); err != nil {
		return err
	}

	stageNames := []string{"Qualification", "Proposal", "Negotiation", "Closed"}
	stageIDs := make([]string, len(stageNames))
	for i, name := range stageNames {
		stageIDs[i] = uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO stages (id, pipeline_id, name, position) VALUES (?, ?, ?, ?)",
			stageIDs[i], pipelineID, name, i); err != nil {
			return err
		}
	}

	companyID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO companies (id, name, website, city) VALUES (?, ?, ?, ?)",
		companyID, "Acme Corp", "acme.example", "Portland"); err != nil {
		return err
	}
	contactID := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO contacts (id, first_name, last_name, email, company_id) VALUES (?, ?, ?, ?, ?)",
		contactID, "Dana", "Reyes", "dana@acme.example", companyID); err != nil {
		return err
	}

	seedDeals := []struct {
		name   string
		amount int64
		prob   int
		stage  string
	}{
		{"Acme renewal", 1200000, 60, stageIDs[0]},
		{"Acme expansion", 450000, 30, stageIDs[0]},
		{"Starter plan pilot", 90000, 45, stageIDs[1]},
	}
	for _, d := range seedDeals {
		dealID := uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO deals (id, name, amount, company_id, contact_id, close_date, probability, status, stage_id, notes)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 'open', ?, ?)`,
			dealID, d.name, d.amount, companyID, contactID,
			time.Now().AddDate(0, 1, 0), d.prob, d.stage,
			"## Next steps\n\n- schedule follow-up call\n"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO activities (id, deal_id, kind, summary, due_date, done) VALUES (?, ?, 'task', ?, ?, 0)",
			uuid.NewString(), dealID, "Send intro deck", time.Now().AddDate(0, 0, 7)); err != nil {
			return err
		}
	}

	return tx.Commit()
}
