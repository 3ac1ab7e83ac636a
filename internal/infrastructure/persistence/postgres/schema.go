package postgres

const schemaDDL = `
CREATE TABLE IF NOT EXISTS households (
	key        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS meals (
	id               UUID PRIMARY KEY,
	canonical_key    TEXT NOT NULL UNIQUE,
	display_name     TEXT NOT NULL,
	steps_short      TEXT NOT NULL,
	est_prep_minutes INT NOT NULL,
	cost             TEXT NOT NULL,
	tags             TEXT[] NOT NULL DEFAULT '{}',
	active           BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS meal_ingredients (
	meal_id          UUID NOT NULL REFERENCES meals(id),
	name             TEXT NOT NULL,
	quantity_text    TEXT NOT NULL,
	is_pantry_staple BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_meal_ingredients_meal_id ON meal_ingredients(meal_id);

CREATE TABLE IF NOT EXISTS inventory_items (
	id                 UUID PRIMARY KEY,
	household_key      TEXT NOT NULL,
	name               TEXT NOT NULL,
	qty_estimated      DOUBLE PRECISION,
	qty_used           DOUBLE PRECISION NOT NULL DEFAULT 0,
	unit               TEXT NOT NULL DEFAULT '',
	confidence         DOUBLE PRECISION NOT NULL,
	source_kind        TEXT NOT NULL,
	last_seen_at       TIMESTAMPTZ NOT NULL,
	last_used_at       TIMESTAMPTZ,
	expires_at         TIMESTAMPTZ,
	decay_rate_per_day DOUBLE PRECISION NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_household ON inventory_items(household_key);
CREATE INDEX IF NOT EXISTS idx_inventory_household_name ON inventory_items(household_key, name);

CREATE TABLE IF NOT EXISTS decision_events (
	id                  UUID PRIMARY KEY,
	household_key       TEXT NOT NULL,
	decided_at          TIMESTAMPTZ NOT NULL,
	decision_type       TEXT NOT NULL,
	meal_id             UUID,
	external_vendor_key TEXT,
	context_hash        TEXT NOT NULL,
	decision_payload    JSONB NOT NULL,
	user_action         TEXT NOT NULL,
	actioned_at         TIMESTAMPTZ,
	notes               TEXT
);
CREATE INDEX IF NOT EXISTS idx_decision_events_household_decided ON decision_events(household_key, decided_at DESC);
CREATE INDEX IF NOT EXISTS idx_decision_events_household_context ON decision_events(household_key, context_hash);

CREATE TABLE IF NOT EXISTS taste_signals (
	id                UUID PRIMARY KEY,
	household_key     TEXT NOT NULL,
	decided_at        TIMESTAMPTZ NOT NULL,
	actioned_at       TIMESTAMPTZ,
	decision_event_id UUID NOT NULL UNIQUE,
	meal_id           UUID,
	decision_type     TEXT NOT NULL,
	user_action       TEXT NOT NULL,
	context_hash      TEXT NOT NULL,
	features          JSONB NOT NULL,
	weight            DOUBLE PRECISION NOT NULL,
	notes             TEXT
);
CREATE INDEX IF NOT EXISTS idx_taste_signals_household_decided ON taste_signals(household_key, decided_at DESC);

CREATE TABLE IF NOT EXISTS taste_meal_scores (
	household_key TEXT NOT NULL,
	meal_id       UUID NOT NULL,
	score         DOUBLE PRECISION NOT NULL DEFAULT 0,
	approvals     INT NOT NULL DEFAULT 0,
	rejections    INT NOT NULL DEFAULT 0,
	last_seen_at  TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (household_key, meal_id)
);

CREATE TABLE IF NOT EXISTS receipt_imports (
	id                 UUID PRIMARY KEY,
	household_key      TEXT NOT NULL,
	source_kind        TEXT NOT NULL,
	vendor_name        TEXT,
	purchased_at       TIMESTAMPTZ,
	ocr_provider_label TEXT NOT NULL,
	ocr_raw_text       TEXT NOT NULL,
	status             TEXT NOT NULL,
	error_message      TEXT,
	content_hash       TEXT NOT NULL DEFAULT '',
	is_duplicate       BOOLEAN NOT NULL DEFAULT FALSE,
	canonical_id       UUID,
	created_at         TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_receipt_canonical ON receipt_imports(household_key, content_hash) WHERE is_duplicate = FALSE AND status = 'parsed';

CREATE TABLE IF NOT EXISTS receipt_line_items (
	id                UUID PRIMARY KEY,
	receipt_import_id UUID NOT NULL REFERENCES receipt_imports(id),
	raw_line          TEXT NOT NULL,
	raw_item_name     TEXT NOT NULL,
	raw_qty_text      TEXT NOT NULL,
	raw_price         DOUBLE PRECISION,
	normalized_name   TEXT NOT NULL,
	normalized_unit   TEXT NOT NULL,
	normalized_qty    DOUBLE PRECISION,
	confidence        DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipt_line_items_import ON receipt_line_items(receipt_import_id);
`
