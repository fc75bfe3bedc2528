package storage

import (
	"errors"
	"testing"

	"github.com/SyedSaifuddin045/spolist/internal/shared"
)

func testSlotCRUD(t *testing.T, slot Slot) {
	t.Helper()

	if _, ok, err := slot.Get(KeyToken); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}

	if err := slot.Set(KeyToken, "v1"); err != nil {
		t.Fatal(err)
	}
	if value, ok, err := slot.Get(KeyToken); err != nil || !ok || value != "v1" {
		t.Fatalf("expected %q, got %q ok=%v err=%v", "v1", value, ok, err)
	}

	// overwrite
	if err := slot.Set(KeyToken, "v2"); err != nil {
		t.Fatal(err)
	}
	if value, _, _ := slot.Get(KeyToken); value != "v2" {
		t.Fatalf("expected overwrite to %q, got %q", "v2", value)
	}

	// keys are independent
	if err := slot.Set(KeyVerifier, "other"); err != nil {
		t.Fatal(err)
	}

	if err := slot.Delete(KeyToken); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := slot.Get(KeyToken); ok {
		t.Fatal("expected deleted key to be absent")
	}
	if value, _, _ := slot.Get(KeyVerifier); value != "other" {
		t.Fatal("deleting one key must not touch another")
	}

	// deleting a missing key is not an error
	if err := slot.Delete(KeyToken); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}

func TestMemorySlot(t *testing.T) {
	testSlotCRUD(t, NewMemorySlot())
}

func newTestSQLiteSlot(t *testing.T) *SQLiteSlot {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatal(err)
	}

	slot, err := NewSQLiteSlot(db)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { slot.Close() })
	return slot
}

func TestSQLiteSlot(t *testing.T) {
	t.Run("CRUD", func(t *testing.T) {
		testSlotCRUD(t, newTestSQLiteSlot(t))
	})

	t.Run("Schema Creation Is Idempotent", func(t *testing.T) {
		slot := newTestSQLiteSlot(t)
		if _, err := NewSQLiteSlot(slot.db); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("Download History", func(t *testing.T) {
		slot := newTestSQLiteSlot(t)

		records := []DownloadRecord{
			{ID: "d1", TrackID: "t1", Title: "First", Artist: "Artist A", FilePath: "/tmp/first.mp3"},
			{ID: "d2", TrackID: "t2", Title: "Second", Artist: "Artist B", FilePath: "/tmp/second.mp3"},
		}
		for _, rec := range records {
			if err := slot.RecordDownload(rec); err != nil {
				t.Fatal(err)
			}
		}

		got, err := slot.Downloads(10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
		for _, rec := range got {
			if rec.DownloadedAt.IsZero() {
				t.Errorf("record %s has no timestamp", rec.ID)
			}
		}
	})

	t.Run("Repeat Download Replaces Record", func(t *testing.T) {
		slot := newTestSQLiteSlot(t)

		if err := slot.RecordDownload(DownloadRecord{
			ID: "d1", TrackID: "t1", Title: "Song", Artist: "Artist", FilePath: "/old/song.mp3",
		}); err != nil {
			t.Fatal(err)
		}
		if err := slot.RecordDownload(DownloadRecord{
			ID: "d2", TrackID: "t1", Title: "Song", Artist: "Artist", FilePath: "/new/song.mp3",
		}); err != nil {
			t.Fatal(err)
		}

		got, err := slot.Downloads(10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Fatalf("expected the repeat download to upsert, got %d records", len(got))
		}
		if got[0].FilePath != "/new/song.mp3" {
			t.Errorf("expected newer file path, got %q", got[0].FilePath)
		}
	})

	t.Run("Downloads Limit", func(t *testing.T) {
		slot := newTestSQLiteSlot(t)

		for _, id := range []string{"a", "b", "c"} {
			if err := slot.RecordDownload(DownloadRecord{
				ID: id, TrackID: id, Title: id, Artist: id, FilePath: "/tmp/" + id,
			}); err != nil {
				t.Fatal(err)
			}
		}

		got, err := slot.Downloads(2)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected limit to apply, got %d records", len(got))
		}
	})
}

func TestOpen(t *testing.T) {
	t.Run("Memory Backend", func(t *testing.T) {
		slot, err := Open(shared.StorageConfig{Backend: "memory"})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := slot.(*MemorySlot); !ok {
			t.Fatalf("expected *MemorySlot, got %T", slot)
		}
	})

	t.Run("Sqlite Backend", func(t *testing.T) {
		slot, err := Open(shared.StorageConfig{Backend: "sqlite", Path: ":memory:"})
		if err != nil {
			t.Fatal(err)
		}
		s, ok := slot.(*SQLiteSlot)
		if !ok {
			t.Fatalf("expected *SQLiteSlot, got %T", slot)
		}
		s.Close()
	})

	t.Run("Unknown Backend", func(t *testing.T) {
		if _, err := Open(shared.StorageConfig{Backend: "redis"}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
