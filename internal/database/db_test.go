package database

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
)

// testDB opens a migrated database in a per-test temp directory.
func testDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(DefaultConfig(path), slog.Default())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	return db
}

func testProfile(name string) *Profile {
	birthTime := "14:30"
	return &Profile{
		Name:      name,
		BirthDate: "1990-06-15",
		BirthTime: &birthTime,
		Timezone:  "Asia/Shanghai",
		Longitude: 116.4,
		Latitude:  39.9,
		TrueSolar: true,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)

	// Second run applies nothing.
	applied, err := db.Migrate(context.Background())
	if err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("second Migrate() applied %d migrations, want 0", applied)
	}
}

func TestHealth(t *testing.T) {
	db := testDB(t)
	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health() failed: %v", err)
	}
}

func TestCreateAndGetProfile(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	p := testProfile("alice")
	if err := db.CreateProfile(ctx, p); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("CreateProfile() did not set ID")
	}

	got, err := db.GetProfile(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}

	if got.Name != "alice" {
		t.Errorf("Name = %q, want alice", got.Name)
	}
	if got.BirthDate != "1990-06-15" {
		t.Errorf("BirthDate = %q, want 1990-06-15", got.BirthDate)
	}
	if got.BirthTime == nil || *got.BirthTime != "14:30" {
		t.Errorf("BirthTime = %v, want 14:30", got.BirthTime)
	}
	if !got.TrueSolar {
		t.Error("TrueSolar = false, want true")
	}
	if got.Longitude != 116.4 || got.Latitude != 39.9 {
		t.Errorf("coordinates = (%v, %v), want (116.4, 39.9)", got.Longitude, got.Latitude)
	}
}

func TestCreateProfile_DuplicateName(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.CreateProfile(ctx, testProfile("bob")); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}

	err := db.CreateProfile(ctx, testProfile("bob"))
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate CreateProfile() error = %v, want ErrDuplicate", err)
	}
}

func TestCreateProfile_NoBirthTime(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	p := testProfile("carol")
	p.BirthTime = nil
	if err := db.CreateProfile(ctx, p); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}

	got, err := db.GetProfile(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if got.BirthTime != nil {
		t.Errorf("BirthTime = %v, want nil", got.BirthTime)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	db := testDB(t)

	_, err := db.GetProfile(context.Background(), 9999)
	if !IsNotFound(err) {
		t.Errorf("GetProfile(9999) error = %v, want not-found", err)
	}
}

func TestListProfiles(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, name := range []string{"one", "two", "three"} {
		if err := db.CreateProfile(ctx, testProfile(name)); err != nil {
			t.Fatalf("CreateProfile(%s) failed: %v", name, err)
		}
	}

	profiles, err := db.ListProfiles(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListProfiles() failed: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("ListProfiles() returned %d profiles, want 3", len(profiles))
	}
	if profiles[0].Name != "one" {
		t.Errorf("first profile = %q, want insertion order", profiles[0].Name)
	}

	limited, err := db.ListProfiles(ctx, 2, 1)
	if err != nil {
		t.Fatalf("ListProfiles() failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited ListProfiles() returned %d, want 2", len(limited))
	}
}

func TestDeleteProfile(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	p := testProfile("dave")
	if err := db.CreateProfile(ctx, p); err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}

	if err := db.DeleteProfile(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProfile() failed: %v", err)
	}

	if _, err := db.GetProfile(ctx, p.ID); !IsNotFound(err) {
		t.Errorf("GetProfile after delete error = %v, want not-found", err)
	}

	if err := db.DeleteProfile(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteProfile() error = %v, want ErrNotFound", err)
	}
}
