package storage

const schema = `
-- The 'verses' table holds the loaded corpus. The id is the import-order
-- primary key, assigned densely from 1 on every full-replace import.
CREATE TABLE IF NOT EXISTS verses (
    id INTEGER PRIMARY KEY,
    book TEXT NOT NULL,
    chapter INTEGER NOT NULL,
    verse INTEGER NOT NULL,
    text TEXT NOT NULL,

    UNIQUE(book, chapter, verse)
);

-- The 'reviews' table holds spaced-repetition state for memorized verses,
-- keyed by reference so it survives corpus re-imports.
CREATE TABLE IF NOT EXISTS reviews (
    book TEXT NOT NULL,
    chapter INTEGER NOT NULL,
    verse INTEGER NOT NULL,
    last_reviewed TEXT NOT NULL,
    ease_factor REAL NOT NULL DEFAULT 2.5,
    interval INTEGER NOT NULL DEFAULT 1,

    PRIMARY KEY (book, chapter, verse)
);
`
