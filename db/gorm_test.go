package db

import (
	"path/filepath"
	"strings"
	"testing"

	"Tunelist/config"
	"Tunelist/model"
)

func TestMySQLDSN(t *testing.T) {
	cfg := &config.Config{
		DBUser:     "root",
		DBPassword: "pw",
		DBHost:     "db.local",
		DBPort:     "3307",
		DBName:     "tunelist",
	}

	dsn := MySQLDSN(cfg)
	for _, want := range []string{"root:pw@tcp(db.local:3307)/tunelist", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("expected DSN %q to contain %q", dsn, want)
		}
	}
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	gdb, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	defer Close(gdb)

	if err := AutoMigrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	for _, m := range []interface{}{&model.Playlist{}, &model.Track{}} {
		if !gdb.Migrator().HasTable(m) {
			t.Errorf("expected table for %T", m)
		}
	}
	if !gdb.Migrator().HasIndex(&model.Playlist{}, "uq_playlists_name") {
		t.Error("expected unique index on playlist name")
	}
}

func TestAutoMigrateNilDB(t *testing.T) {
	if err := AutoMigrate(nil); err == nil {
		t.Error("expected error for nil database")
	}
}
