package database

import "testing"

func TestRewriteNumbered(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT 1",
			want:  "SELECT 1",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM results WHERE user_id = ?",
			want:  "SELECT * FROM results WHERE user_id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "INSERT INTO layouts (id, name, language) VALUES (?, ?, ?)",
			want:  "INSERT INTO layouts (id, name, language) VALUES ($1, $2, $3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewriteNumbered(tt.query); got != tt.want {
				t.Errorf("rewriteNumbered() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectContracts(t *testing.T) {
	tests := []struct {
		name            string
		dialect         Dialect
		driver          string
		lastInsertID    bool
		migrationSubdir string
	}{
		{"sqlite", SQLiteDialect{}, "sqlite3", true, "sqlite"},
		{"postgres", PostgresDialect{}, "postgres", false, "postgres"},
		{"mysql", MySQLDialect{}, "mysql", true, "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %q, want %q", got, tt.driver)
			}
			if got := tt.dialect.SupportsLastInsertID(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertID() = %v, want %v", got, tt.lastInsertID)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrationSubdir {
				t.Errorf("MigrationsSubdir() = %q, want %q", got, tt.migrationSubdir)
			}
		})
	}
}

func TestPostgresRewritesPlaceholders(t *testing.T) {
	d := PostgresDialect{}
	got := d.RewriteQuery("UPDATE sessions SET status = ? WHERE id = ?")
	want := "UPDATE sessions SET status = $1 WHERE id = $2"
	if got != want {
		t.Errorf("RewriteQuery() = %q, want %q", got, want)
	}
}
