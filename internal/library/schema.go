package library

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。db/library/schema.sql と同期すること。
const schema = `
CREATE TABLE IF NOT EXISTS user_movies (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_email TEXT NOT NULL,
    movie_id INTEGER NOT NULL,
    tmdb_id INTEGER NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('WATCHED', 'WATCHLIST', 'FAVORITE')),
    user_rating INTEGER NOT NULL DEFAULT 0,
    personal_note TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    UNIQUE (user_email, movie_id)
);

CREATE INDEX IF NOT EXISTS idx_user_movies_user_email ON user_movies (user_email);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
