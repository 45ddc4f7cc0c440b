package store

const schema = `
CREATE TABLE IF NOT EXISTS records (
    package TEXT PRIMARY KEY,
    family TEXT NOT NULL,
    backend TEXT,
    formats TEXT NOT NULL,
    requires TEXT,
    requires_dynamic TEXT,
    classified_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_family ON records(family);
`
