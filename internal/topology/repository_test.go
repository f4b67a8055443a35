package topology

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/linkstatus-core/internal/devicestatus"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/config"
	"github.com/nerrad567/linkstatus-core/internal/infrastructure/database"
	"github.com/nerrad567/linkstatus-core/migrations"
)

// setupTestRepo opens a migrated in-memory database.
func setupTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background(), migrations.FS, "."); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db)
}

func TestSQLiteRepository_Empty(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	empty, err := repo.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("IsEmpty() error = %v", err)
	}
	if !empty {
		t.Error("IsEmpty() = false on fresh database")
	}

	if _, err := repo.Load(ctx); !errors.Is(err, ErrEmpty) {
		t.Errorf("Load() error = %v, want ErrEmpty", err)
	}
}

func TestSQLiteRepository_SaveLoad(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	want, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load() = %+v\nwant %+v", got, want)
	}
}

func TestSQLiteRepository_OrderAndUnorderedRange(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	layout := devicestatus.Layout{
		Order: []devicestatus.Source{devicestatus.SourceGeo},
		Ranges: map[devicestatus.Source]devicestatus.SeqRange{
			devicestatus.SourceGeo: {Start: 52, End: 71},
			devicestatus.SourceDS:  {Start: 17, End: 32},
		},
		Links: []devicestatus.LinkEntry{
			{Source: devicestatus.SourceGeo, ParentSeq: 52, ChildSeqs: []int{40, 33}},
			{Source: devicestatus.SourceDS, ParentSeq: 17},
		},
	}
	if err := repo.Save(ctx, layout); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got.Order, layout.Order) {
		t.Errorf("Order = %v, want %v", got.Order, layout.Order)
	}
	if got.Ranges[devicestatus.SourceDS] != layout.Ranges[devicestatus.SourceDS] {
		t.Errorf("unordered ds range not kept: %+v", got.Ranges)
	}
	links := devicestatus.NewLinkTable(got.Links)
	if children := links.Children(devicestatus.SourceGeo, 52); !reflect.DeepEqual(children, []int{40, 33}) {
		t.Errorf("geo 52 children = %v, want [40 33]", children)
	}
	if children := links.Children(devicestatus.SourceDS, 17); len(children) != 0 {
		t.Errorf("ds 17 children = %v, want empty", children)
	}
}

func TestSQLiteRepository_SaveReplaces(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	def, _ := Default()
	if err := repo.Save(ctx, def); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	small := devicestatus.Layout{
		Order:  []devicestatus.Source{devicestatus.SourceDS},
		Ranges: map[devicestatus.Source]devicestatus.SeqRange{devicestatus.SourceDS: {Start: 1, End: 2}},
	}
	if err := repo.Save(ctx, small); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Links) != 0 || len(got.Ranges) != 1 {
		t.Errorf("Load() = %+v, want only the second layout", got)
	}
}

func TestSQLiteRepository_SaveRejectsInvalid(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	err := repo.Save(ctx, devicestatus.Layout{})
	if !errors.Is(err, devicestatus.ErrInvalidLayout) {
		t.Errorf("Save() error = %v, want ErrInvalidLayout", err)
	}
	if empty, _ := repo.IsEmpty(ctx); !empty {
		t.Error("invalid layout should not be stored")
	}
}

func TestSchemaMigrations_DownAndUp(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{Path: database.MemoryPath, BusyTimeout: 1})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer db.Close() //nolint:errcheck // Test cleanup
	ctx := context.Background()

	if err := db.Migrate(ctx, migrations.FS, "."); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	for range 2 {
		if err := db.MigrateDown(ctx, migrations.FS, "."); err != nil {
			t.Fatalf("MigrateDown() error = %v", err)
		}
	}
	applied, pending, err := db.MigrationStatus(ctx, migrations.FS, ".")
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 0 || len(pending) != 2 {
		t.Fatalf("after down: applied=%d pending=%d, want 0/2", len(applied), len(pending))
	}

	if err := db.Migrate(ctx, migrations.FS, "."); err != nil {
		t.Fatalf("Migrate() again error = %v", err)
	}
	repo := NewSQLiteRepository(db)
	def, _ := Default()
	if err := repo.Save(ctx, def); err != nil {
		t.Fatalf("Save() after re-migrate error = %v", err)
	}
}
