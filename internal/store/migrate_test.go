package store

import (
	"strings"
	"testing"
)

func TestMigrationFiles_Sorted(t *testing.T) {
	files, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(files) == 0 || files[0] != "0001_init.sql" {
		t.Fatalf("files = %v", files)
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Fatalf("files not sorted: %v", files)
		}
	}
}

func TestMigration0001_CreatesTables(t *testing.T) {
	b, err := migrationsFS.ReadFile("migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	text := string(b)
	for _, needle := range []string{"directory_groups", "app_settings", "audit_events"} {
		if !strings.Contains(text, needle) {
			t.Fatalf("migration missing %q", needle)
		}
	}
	if n := len(splitSQLStatements(text)); n != 3 {
		t.Fatalf("unexpected stmt count: %d", n)
	}
}

func TestSplitSQLStatements(t *testing.T) {
	got := splitSQLStatements("CREATE TABLE a (x INT);\n\n  ;CREATE INDEX i ON a (x);  \n")
	if len(got) != 2 || got[0] != "CREATE TABLE a (x INT)" || got[1] != "CREATE INDEX i ON a (x)" {
		t.Fatalf("splitSQLStatements = %q", got)
	}
}

func TestNormalizeMySQLDSN(t *testing.T) {
	got, err := normalizeMySQLDSN("user:pass@tcp(127.0.0.1:3306)/gaps?charset=utf8mb4")
	if err != nil {
		t.Fatalf("normalizeMySQLDSN: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Fatalf("dsn = %q", got)
	}
	if _, err := normalizeMySQLDSN("not a dsn"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestUpsertAppSettingSQL(t *testing.T) {
	if !strings.Contains(upsertAppSettingSQL(DialectSQLite), "ON CONFLICT") {
		t.Fatalf("sqlite upsert should use ON CONFLICT")
	}
	if !strings.Contains(upsertAppSettingSQL(DialectMySQL), "ON DUPLICATE KEY") {
		t.Fatalf("mysql upsert should use ON DUPLICATE KEY")
	}
}
