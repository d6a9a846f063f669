package graphstore

const schemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	node_id       TEXT PRIMARY KEY,
	kind          INTEGER NOT NULL,
	name          TEXT NOT NULL,
	file_path     TEXT NOT NULL,
	parent_id     TEXT,
	tracking_hash TEXT NOT NULL,
	start_byte    INTEGER NOT NULL DEFAULT 0,
	end_byte      INTEGER NOT NULL DEFAULT 0,
	payload       BLOB
);

CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(kind);
CREATE INDEX IF NOT EXISTS idx_nodes_file ON nodes(file_path);

CREATE TABLE IF NOT EXISTS embeddings (
	node_id    TEXT NOT NULL,
	model      TEXT NOT NULL,
	dims       INTEGER NOT NULL,
	vector     BLOB NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (node_id, model, dims)
);

CREATE TABLE IF NOT EXISTS active_embedding_set (
	id    INTEGER PRIMARY KEY CHECK (id = 0),
	model TEXT NOT NULL,
	dims  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_turn (
	id           TEXT NOT NULL,
	role         TEXT NOT NULL,
	content      TEXT NOT NULL,
	valid_millis INTEGER NOT NULL,
	is_valid     INTEGER NOT NULL,
	PRIMARY KEY (id, valid_millis)
);

CREATE TABLE IF NOT EXISTS tool_call (
	id           TEXT NOT NULL,
	request_id   TEXT NOT NULL,
	tool_name    TEXT NOT NULL,
	args_json    TEXT NOT NULL,
	result_json  TEXT NOT NULL,
	valid_millis INTEGER NOT NULL,
	is_valid     INTEGER NOT NULL,
	PRIMARY KEY (id, valid_millis)
);
`
