package store

// schema is the full DDL applied on every Open; each statement is safe to
// rerun (CREATE ... IF NOT EXISTS), mirroring the teacher's initSchema idiom
// and the exact table/column layout of the upstream database.py.
const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS bundles (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	name    TEXT NOT NULL UNIQUE,
	enabled INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS hotstrings (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	replacement TEXT NOT NULL,
	is_script   INTEGER NOT NULL DEFAULT 0,
	bundle_id   INTEGER NOT NULL REFERENCES bundles(id) ON DELETE CASCADE,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	UNIQUE (name, bundle_id)
);

CREATE TABLE IF NOT EXISTS triggers (
	hotstring_id INTEGER NOT NULL REFERENCES hotstrings(id) ON DELETE CASCADE,
	trigger_type TEXT NOT NULL CHECK (trigger_type IN ('enter','tab','space','instant')),
	PRIMARY KEY (hotstring_id, trigger_type)
);

CREATE TABLE IF NOT EXISTS config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS stats (
	key   TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_hotstrings_bundle_id ON hotstrings(bundle_id);
CREATE INDEX IF NOT EXISTS idx_hotstrings_name       ON hotstrings(name);
CREATE INDEX IF NOT EXISTS idx_triggers_hotstring_id  ON triggers(hotstring_id);

-- generation is a single-row write counter, bumped by the triggers below on
-- every mutation to the hotstring/bundle domain. Polled by the hot-reload
-- ticker (see store.go watchGeneration), the same pattern the teacher used
-- to poll MAX(config.version).
CREATE TABLE IF NOT EXISTS generation (
	id    INTEGER PRIMARY KEY CHECK (id = 1),
	value INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO generation (id, value) VALUES (1, 0);

CREATE TRIGGER IF NOT EXISTS trg_gen_hotstrings_ins AFTER INSERT ON hotstrings BEGIN UPDATE generation SET value = value + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS trg_gen_hotstrings_upd AFTER UPDATE ON hotstrings BEGIN UPDATE generation SET value = value + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS trg_gen_hotstrings_del AFTER DELETE ON hotstrings BEGIN UPDATE generation SET value = value + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS trg_gen_bundles_ins AFTER INSERT ON bundles BEGIN UPDATE generation SET value = value + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS trg_gen_bundles_upd AFTER UPDATE ON bundles BEGIN UPDATE generation SET value = value + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS trg_gen_bundles_del AFTER DELETE ON bundles BEGIN UPDATE generation SET value = value + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS trg_gen_triggers_ins AFTER INSERT ON triggers BEGIN UPDATE generation SET value = value + 1 WHERE id = 1; END;
CREATE TRIGGER IF NOT EXISTS trg_gen_triggers_del AFTER DELETE ON triggers BEGIN UPDATE generation SET value = value + 1 WHERE id = 1; END;
`

// defaultConfig seeds the four-hotkey/send-mode config keys on first open.
var defaultConfig = map[string]string{
	"send_mode":           "direct",
	"play_sound":          "1",
	"autocorrect_enabled": "0",
	"run_at_startup":      "0",
	"hotkey_create":       "ctrl+shift+h",
	"hotkey_manage":       "ctrl+shift+m",
	"hotkey_disable":      "",
	"hotkey_tracker":      "ctrl+shift+t",
	"time_long_strict":    "0",
}

var defaultStats = []string{"expanded", "chars_saved"}
