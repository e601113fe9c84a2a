package database

// migrationsSQL holds the forward-only schema migrations, keyed by
// version. Never edit an applied migration; add a new version instead.
var migrationsSQL = map[int]string{
	1: `
		CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			birth_date TEXT NOT NULL,            -- YYYY-MM-DD
			birth_time TEXT,                     -- HH:MM, NULL when unknown
			timezone TEXT NOT NULL,
			longitude REAL NOT NULL DEFAULT 0,
			latitude REAL NOT NULL DEFAULT 0,
			true_solar INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_profiles_name ON profiles(name);
	`,
}
