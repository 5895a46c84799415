package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens (or creates) the SQLite database and ensures the schema exists.
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite serializes writers anyway; a single pooled connection avoids
	// SQLITE_BUSY and keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
    CREATE TABLE IF NOT EXISTS extractions (
        id TEXT PRIMARY KEY,
        project_name TEXT,
        meeting_date TEXT,
        summary TEXT NOT NULL,
        raw_json BLOB,
        needs_review INTEGER NOT NULL DEFAULT 0,
        created_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS tasks (
        id TEXT PRIMARY KEY,
        extraction_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        status TEXT NOT NULL,
        priority TEXT NOT NULL,
        owner TEXT NOT NULL,
        deadline TEXT,
        source_evidence TEXT,
        created_at TEXT NOT NULL,
        FOREIGN KEY (extraction_id) REFERENCES extractions(id)
    );

    CREATE TABLE IF NOT EXISTS commits (
        commit_hash TEXT PRIMARY KEY,
        author TEXT NOT NULL,
        message TEXT NOT NULL,
        timestamp TEXT NOT NULL,
        branch TEXT NOT NULL,
        embedding_text TEXT NOT NULL,
        created_at TEXT NOT NULL
    );
    `

	_, err := db.Exec(schema)
	return err
}
