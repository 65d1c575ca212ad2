package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Bases: normalized root forms, globally unique
CREATE TABLE IF NOT EXISTS bases (
    base_id INTEGER PRIMARY KEY AUTOINCREMENT,
    value TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Surfaces: observed inflected forms, each belonging to exactly one base
CREATE TABLE IF NOT EXISTS surfaces (
    surface_id INTEGER PRIMARY KEY AUTOINCREMENT,
    value TEXT NOT NULL UNIQUE,
    base_id INTEGER NOT NULL,
    notes TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (base_id) REFERENCES bases(base_id)
);

CREATE INDEX IF NOT EXISTS idx_surfaces_base ON surfaces(base_id);

-- Variants: alternate spellings, globally unique across the store
CREATE TABLE IF NOT EXISTS variants (
    variant_id INTEGER PRIMARY KEY AUTOINCREMENT,
    value TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Surface/variant links: many-to-many, keyed by the pair
CREATE TABLE IF NOT EXISTS surface_variants (
    surface_id INTEGER NOT NULL,
    variant_id INTEGER NOT NULL,
    PRIMARY KEY (surface_id, variant_id),
    FOREIGN KEY (surface_id) REFERENCES surfaces(surface_id),
    FOREIGN KEY (variant_id) REFERENCES variants(variant_id)
);

CREATE INDEX IF NOT EXISTS idx_surface_variants_variant ON surface_variants(variant_id);

-- Processed markers: one row per ingested (book, line) pair.
-- Deliberately has no FK into the record tables.
CREATE TABLE IF NOT EXISTS processed_lines (
    book_id INTEGER NOT NULL,
    line_id INTEGER NOT NULL,
    processed_at TIMESTAMP NOT NULL,
    PRIMARY KEY (book_id, line_id)
);

CREATE INDEX IF NOT EXISTS idx_processed_lines_book ON processed_lines(book_id);
`
