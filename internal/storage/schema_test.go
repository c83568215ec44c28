// ABOUTME: Tests for schema creation and teardown.
// ABOUTME: Creating twice must be a no-op; dropping must tolerate absence.
package storage

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func TestCreateSchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	before, err := db.SchemaObjects(ctx)
	if err != nil {
		t.Fatalf("SchemaObjects failed: %v", err)
	}

	if err := db.CreateSchema(ctx); err != nil {
		t.Fatalf("second CreateSchema failed: %v", err)
	}
	if err := db.CreateSchema(ctx); err != nil {
		t.Fatalf("third CreateSchema failed: %v", err)
	}

	after, err := db.SchemaObjects(ctx)
	if err != nil {
		t.Fatalf("SchemaObjects failed: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("schema changed after repeated create:\nbefore %v\nafter  %v", before, after)
	}
	if len(after) != len(BaseTables)+len(Views) {
		t.Errorf("schema has %d objects, want %d", len(after), len(BaseTables)+len(Views))
	}
}

func TestDropSchema(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.InsertMuscleGroup(ctx, "Chest"); err != nil {
		t.Fatalf("InsertMuscleGroup failed: %v", err)
	}

	if err := db.DropSchema(ctx); err != nil {
		t.Fatalf("DropSchema failed: %v", err)
	}
	objects, err := db.SchemaObjects(ctx)
	if err != nil {
		t.Fatalf("SchemaObjects failed: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("expected empty schema, got %v", objects)
	}

	// Dropping an absent schema is fine.
	if err := db.DropSchema(ctx); err != nil {
		t.Fatalf("second DropSchema failed: %v", err)
	}

	if err := db.CreateSchema(ctx); err != nil {
		t.Fatalf("CreateSchema after drop failed: %v", err)
	}
	n, err := db.CountRows(ctx, "MuscleGroups")
	if err != nil {
		t.Fatalf("CountRows failed: %v", err)
	}
	if n != 0 {
		t.Errorf("MuscleGroups rows = %d, want 0 after recreate", n)
	}
}

func TestViewsAreQueryable(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db)

	base := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	insertSession(t, db, f.userID, f.benchID, base, [2]float64{135, 10}, [2]float64{145, 8})
	insertSession(t, db, f.userID, f.benchID, base.Add(24*time.Hour), [2]float64{150, 5})

	for _, view := range Views {
		rows, err := db.q.QueryContext(ctx, "SELECT * FROM "+view)
		if err != nil {
			t.Fatalf("query %s: %v", view, err)
		}
		rows.Close()
	}

	// One soreness row per session and muscle group.
	var n int
	var load float64
	err := db.q.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(load), 0) FROM MuscleGroupSoreness WHERE user_id = ?`, f.userID,
	).Scan(&n, &load)
	if err != nil {
		t.Fatalf("query MuscleGroupSoreness: %v", err)
	}
	if n != 2 {
		t.Errorf("MuscleGroupSoreness rows = %d, want 2", n)
	}
	if load != 3 {
		t.Errorf("MuscleGroupSoreness load = %v, want 3", load)
	}
}
