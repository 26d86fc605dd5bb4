package store

import "database/sql"

// initSchema creates the relational shape if it doesn't exist yet. Resources
// and bookings are written by external paths; this process only appends image
// files, never rows, so everything here is read by prepared statements.
//
// Timestamps are RFC3339 TEXT: lexicographic order matches chronological
// order, which the booking overlap comparison relies on.
func initSchema(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS resources (
			name TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			contact_info TEXT NOT NULL DEFAULT '',
			owner_account_id TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS resource_images (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource_name TEXT NOT NULL REFERENCES resources(name),
			image_url TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS resource_tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource_name TEXT NOT NULL REFERENCES resources(name),
			tag TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource_name TEXT NOT NULL REFERENCES resources(name),
			booker_account_id TEXT NOT NULL,
			start TEXT NOT NULL,
			"end" TEXT NOT NULL
		);
	`
	_, err := db.Exec(query)
	return err
}
