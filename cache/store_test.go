package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// testStore runs the cache store against in-memory SQLite. The DDL and
// the $N placeholders are shared with PostgreSQL.
func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return store
}

type payload struct {
	Price float64 `json:"price"`
	Name  string  `json:"name"`
}

func TestStoreGetAfterPut(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	want := payload{Price: 190.5, Name: "Apple Inc"}
	if err := store.Put(ctx, "AAPL", "quote", want, time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got payload
	if err := store.Get(ctx, "AAPL", "quote", &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestStoreMissOnAbsentAndExpired(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	var got payload
	if err := store.Get(ctx, "AAPL", "quote", &got); err != ErrMiss {
		t.Errorf("absent Get = %v, want ErrMiss", err)
	}

	// A zero TTL row is expired the moment it lands.
	if err := store.Put(ctx, "AAPL", "quote", payload{Price: 1}, 0); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Get(ctx, "AAPL", "quote", &got); err != ErrMiss {
		t.Errorf("expired Get = %v, want ErrMiss", err)
	}
}

func TestStorePutOverwritesSingleRow(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "AAPL", "quote", payload{Price: 1}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "AAPL", "quote", payload{Price: 2}, time.Minute); err != nil {
		t.Fatal(err)
	}

	var got payload
	if err := store.Get(ctx, "AAPL", "quote", &got); err != nil {
		t.Fatal(err)
	}
	if got.Price != 2 {
		t.Errorf("price = %v, want the second write", got.Price)
	}

	// The upsert must keep one row per (ticker, kind).
	var count int
	row := store.db.QueryRow(`SELECT COUNT(*) FROM market_cache WHERE ticker = $1 AND data_kind = $2`, "AAPL", "quote")
	if err := row.Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("rows = %d, want 1", count)
	}
}

func TestStoreKindsAreIndependent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "AAPL", "quote", payload{Price: 1}, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "AAPL", "news", payload{Name: "headlines"}, time.Minute); err != nil {
		t.Fatal(err)
	}

	var quote, news payload
	if err := store.Get(ctx, "AAPL", "quote", &quote); err != nil {
		t.Fatal(err)
	}
	if err := store.Get(ctx, "AAPL", "news", &news); err != nil {
		t.Fatal(err)
	}
	if quote.Price != 1 || news.Name != "headlines" {
		t.Errorf("kinds bled into each other: %+v %+v", quote, news)
	}
}

func TestStorePurgeRemovesOnlyExpired(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "AAPL", "quote", payload{Price: 1}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "MSFT", "quote", payload{Price: 2}, 0); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	var got payload
	if err := store.Get(ctx, "AAPL", "quote", &got); err != nil {
		t.Errorf("live entry purged: %v", err)
	}
}
