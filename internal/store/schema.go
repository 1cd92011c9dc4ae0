package store

const Schema = `
CREATE TABLE IF NOT EXISTS lookup_cache (
	key TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expires_at TIMESTAMP
);
`
