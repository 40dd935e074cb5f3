package shared

import (
	"testing"
	"testing/fstest"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i := 1; i < len(migrations); i++ {
			if migrations[i].Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
			}
		}

		for _, m := range migrations {
			if m.Up == "" {
				t.Errorf("migration version %d missing up SQL", m.Version)
			}
			if m.Down == "" {
				t.Errorf("migration version %d missing down SQL", m.Version)
			}
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		_, err = db.Exec("SELECT 1 FROM preferences LIMIT 1")
		if err != nil {
			t.Errorf("preferences table should exist after migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		latest := migrations[len(migrations)-1].Version
		if v, err := SchemaVersion(db); err != nil || v != latest {
			t.Errorf("SchemaVersion() = %d, %v; want %d", v, err, latest)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}
		if len(migrations) == 1 {
			if v, err := SchemaVersion(db); err != nil || v != -1 {
				t.Errorf("SchemaVersion() after full rollback = %d, %v; want -1", v, err)
			}
			if err := RollbackMigration(db); err == nil {
				t.Error("expected an error rolling back an empty schema")
			}
		}

		var newCount int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount)
		if err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount >= count {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", newCount, count)
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations()
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}

func TestReadMigrations(t *testing.T) {
	t.Run("pairs up and down scripts", func(t *testing.T) {
		fsys := fstest.MapFS{
			"sql/0001_second_up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER);")},
			"sql/0001_second_down.sql": {Data: []byte("DROP TABLE b;")},
			"sql/0000_first_up.sql":    {Data: []byte("CREATE TABLE a (id INTEGER);")},
			"sql/0000_first_down.sql":  {Data: []byte("DROP TABLE a;")},
			"sql/README.md":            {Data: []byte("ignored")},
			"sql/notes_up.sql":         {Data: []byte("ignored, no version")},
		}

		migrations, err := readMigrations(fsys, "sql")
		if err != nil {
			t.Fatalf("readMigrations() error = %v", err)
		}
		if len(migrations) != 2 {
			t.Fatalf("expected 2 migrations, got %d", len(migrations))
		}
		if migrations[0].Version != 0 || migrations[1].Version != 1 {
			t.Errorf("expected versions [0 1], got [%d %d]", migrations[0].Version, migrations[1].Version)
		}
	})

	t.Run("incomplete pair is an error", func(t *testing.T) {
		fsys := fstest.MapFS{
			"sql/0000_first_up.sql": {Data: []byte("CREATE TABLE a (id INTEGER);")},
		}

		if _, err := readMigrations(fsys, "sql"); err == nil {
			t.Error("expected error for migration without down script")
		}
	})
}

func TestRemoveComments(t *testing.T) {
	got := removeComments("-- header\nCREATE TABLE x (id INTEGER); -- trailing\n\n")
	if got != "CREATE TABLE x (id INTEGER);" {
		t.Errorf("removeComments() = %q", got)
	}
}

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase(DatabaseConfig{Path: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("SELECT key, value FROM preferences LIMIT 1"); err != nil {
		t.Errorf("preferences table should exist: %v", err)
	}
}
