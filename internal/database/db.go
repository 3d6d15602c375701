package database

import (
	"database/sql"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver
)

// Database represents the detection log connection and operations.
// The connection is single-writer: every insert and query serializes
// through one mutex, callers block until the statement commits.
type Database struct {
	mu sync.Mutex
	db *sql.DB
}

// New creates a new Database instance
func New(path string) (*Database, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Verify connection
	if err = db.Ping(); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// Init creates the detections table and its indexes if they don't exist
func (d *Database) Init() error {
	createTables := `
	CREATE TABLE IF NOT EXISTS detections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT,
		class TEXT,
		track_id INTEGER,
		confidence REAL,
		x1 INTEGER, y1 INTEGER, x2 INTEGER, y2 INTEGER,
		date TEXT, time TEXT,
		event TEXT,
		mime TEXT,
		thumbnail_b64 TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_dt ON detections(date, time);
	CREATE INDEX IF NOT EXISTS idx_label ON detections(label);
	CREATE INDEX IF NOT EXISTS idx_class ON detections(class);
	`

	_, err := d.db.Exec(createTables)
	return err
}

// Close closes the database connection
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db.Close()
}
