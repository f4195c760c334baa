package sqlite

// Schema DDL for all tables. Flags are 0/1 integers guarded by CHECK
// constraints; timestamps are fixed-width UTC text so they sort as text.
// archived_via holds the id of the entity whose archive cascaded onto the
// row, and is NULL for rows archived directly.
const (
	createProjectTable = `CREATE TABLE IF NOT EXISTS project (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL CHECK (title <> ''),
    description TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL,
    archived INTEGER NOT NULL DEFAULT 0 CHECK (archived IN (0, 1)),
    archived_via TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createListTable = `CREATE TABLE IF NOT EXISTS project_list (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    title TEXT NOT NULL CHECK (title <> ''),
    position INTEGER NOT NULL,
    archived INTEGER NOT NULL DEFAULT 0 CHECK (archived IN (0, 1)),
    archived_via TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES project(id) ON DELETE CASCADE ON UPDATE CASCADE
);`

	createLabelTable = `CREATE TABLE IF NOT EXISTS project_label (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    title TEXT NOT NULL CHECK (title <> ''),
    color TEXT NOT NULL CHECK (color <> ''),
    position INTEGER NOT NULL,
    archived INTEGER NOT NULL DEFAULT 0 CHECK (archived IN (0, 1)),
    archived_via TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES project(id) ON DELETE CASCADE ON UPDATE CASCADE
);`

	createCardTable = `CREATE TABLE IF NOT EXISTS project_card (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    list_id TEXT NOT NULL,
    title TEXT NOT NULL CHECK (title <> ''),
    description TEXT NOT NULL DEFAULT '',
    important INTEGER NOT NULL DEFAULT 0 CHECK (important IN (0, 1)),
    start_date TEXT,
    due_date TEXT,
    reminder INTEGER,
    completed INTEGER NOT NULL DEFAULT 0 CHECK (completed IN (0, 1)),
    position INTEGER NOT NULL,
    archived INTEGER NOT NULL DEFAULT 0 CHECK (archived IN (0, 1)),
    archived_via TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES project(id) ON DELETE CASCADE ON UPDATE CASCADE,
    FOREIGN KEY (list_id) REFERENCES project_list(id) ON DELETE CASCADE ON UPDATE CASCADE
);`

	createCardLabelTable = `CREATE TABLE IF NOT EXISTS card_label (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    card_id TEXT NOT NULL,
    label_id TEXT NOT NULL,
    archived INTEGER NOT NULL DEFAULT 0 CHECK (archived IN (0, 1)),
    archived_via TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES project(id) ON DELETE CASCADE ON UPDATE CASCADE,
    FOREIGN KEY (card_id) REFERENCES project_card(id) ON DELETE CASCADE ON UPDATE CASCADE,
    FOREIGN KEY (label_id) REFERENCES project_label(id) ON DELETE CASCADE ON UPDATE CASCADE
);`

	createSubtaskTable = `CREATE TABLE IF NOT EXISTS card_subtask (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL,
    card_id TEXT NOT NULL,
    value TEXT NOT NULL CHECK (value <> ''),
    completed INTEGER NOT NULL DEFAULT 0 CHECK (completed IN (0, 1)),
    position INTEGER NOT NULL,
    archived INTEGER NOT NULL DEFAULT 0 CHECK (archived IN (0, 1)),
    archived_via TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (project_id) REFERENCES project(id) ON DELETE CASCADE ON UPDATE CASCADE,
    FOREIGN KEY (card_id) REFERENCES project_card(id) ON DELETE CASCADE ON UPDATE CASCADE
);`
)

// Index DDL for the scope and cascade queries.
const (
	idxProjectActive   = `CREATE INDEX IF NOT EXISTS idx_project_active ON project(archived, position);`
	idxListScope       = `CREATE INDEX IF NOT EXISTS idx_list_scope ON project_list(project_id, archived, position);`
	idxLabelScope      = `CREATE INDEX IF NOT EXISTS idx_label_scope ON project_label(project_id, archived, position);`
	idxCardScope       = `CREATE INDEX IF NOT EXISTS idx_card_scope ON project_card(list_id, archived, position);`
	idxCardProject     = `CREATE INDEX IF NOT EXISTS idx_card_project ON project_card(project_id);`
	idxCardLabelUnique = `CREATE UNIQUE INDEX IF NOT EXISTS idx_card_label_unique ON card_label(card_id, label_id);`
	idxCardLabelLabel  = `CREATE INDEX IF NOT EXISTS idx_card_label_label ON card_label(label_id);`
	idxSubtaskScope    = `CREATE INDEX IF NOT EXISTS idx_subtask_scope ON card_subtask(card_id, archived, position);`
	idxArchivedVia     = `CREATE INDEX IF NOT EXISTS idx_card_archived_via ON project_card(archived_via);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createProjectTable,
	createListTable,
	createLabelTable,
	createCardTable,
	createCardLabelTable,
	createSubtaskTable,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxProjectActive,
	idxListScope,
	idxLabelScope,
	idxCardScope,
	idxCardProject,
	idxCardLabelUnique,
	idxCardLabelLabel,
	idxSubtaskScope,
	idxArchivedVia,
}
