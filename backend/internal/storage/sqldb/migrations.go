package sqldb

// Column types differ per dialect; table and column names must stay in sync.

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    image      TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS threads (
    id               BIGSERIAL PRIMARY KEY,
    title            VARCHAR(200) NOT NULL,
    body             TEXT NOT NULL,
    category         TEXT NOT NULL DEFAULT 'GENERAL'
                     CHECK (category IN ('FEATURES', 'BUGS', 'GENERAL', 'FEEDBACK')),
    author_id        TEXT NOT NULL REFERENCES users(id),
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ,
    last_activity_at TIMESTAMPTZ NOT NULL,
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    views_count      BIGINT NOT NULL DEFAULT 0 CHECK (views_count >= 0)
);

CREATE INDEX IF NOT EXISTS idx_threads_active_created ON threads(is_active, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_threads_author ON threads(author_id);

CREATE TABLE IF NOT EXISTS replies (
    id         BIGSERIAL PRIMARY KEY,
    thread_id  BIGINT NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
    body       TEXT NOT NULL,
    author_id  TEXT NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_replies_thread_created ON replies(thread_id, created_at);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    image      TEXT NOT NULL DEFAULT '',
    updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS threads (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    title            TEXT NOT NULL,
    body             TEXT NOT NULL,
    category         TEXT NOT NULL DEFAULT 'GENERAL'
                     CHECK (category IN ('FEATURES', 'BUGS', 'GENERAL', 'FEEDBACK')),
    author_id        TEXT NOT NULL REFERENCES users(id),
    created_at       DATETIME NOT NULL,
    updated_at       DATETIME,
    last_activity_at DATETIME NOT NULL,
    is_active        BOOLEAN NOT NULL DEFAULT 1,
    views_count      INTEGER NOT NULL DEFAULT 0 CHECK (views_count >= 0)
);

CREATE INDEX IF NOT EXISTS idx_threads_active_created ON threads(is_active, created_at);
CREATE INDEX IF NOT EXISTS idx_threads_author ON threads(author_id);

CREATE TABLE IF NOT EXISTS replies (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    thread_id  INTEGER NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
    body       TEXT NOT NULL,
    author_id  TEXT NOT NULL REFERENCES users(id),
    created_at DATETIME NOT NULL,
    updated_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_replies_thread_created ON replies(thread_id, created_at);
`
