package storage

import (
	"errors"
	"testing"
)

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	state := NewPrefixDB(inner, []byte("s/"))
	meta := NewPrefixDB(inner, []byte("m/"))

	if err := state.Put([]byte("key"), []byte("fromState")); err != nil {
		t.Fatal(err)
	}
	if err := meta.Put([]byte("key"), []byte("fromMeta")); err != nil {
		t.Fatal(err)
	}

	got, err := state.Get([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fromState" {
		t.Fatalf("state.Get = %q, want %q", got, "fromState")
	}
	got, err = meta.Get([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "fromMeta" {
		t.Fatalf("meta.Get = %q, want %q", got, "fromMeta")
	}

	// The raw inner key carries the namespace.
	raw, err := inner.Get([]byte("s/key"))
	if err != nil {
		t.Fatalf("inner.Get: %v", err)
	}
	if string(raw) != "fromState" {
		t.Fatalf("inner.Get = %q, want %q", raw, "fromState")
	}

	if err := state.Delete([]byte("key")); err != nil {
		t.Fatal(err)
	}
	if _, err := state.Get([]byte("key")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
	}
	if ok, _ := meta.Has([]byte("key")); !ok {
		t.Fatal("deleting from one namespace must not touch the other")
	}
}

func TestPrefixDB_ForEachStripsPrefix(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("s/"))

	db.Put([]byte("bal/a"), []byte("1"))
	db.Put([]byte("bal/b"), []byte("2"))
	db.Put([]byte("alw/c"), []byte("3"))

	var keys []string
	err := db.ForEach([]byte("bal/"), func(key, value []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(keys) != 2 || keys[0] != "bal/a" || keys[1] != "bal/b" {
		t.Fatalf("ForEach keys = %v, want [bal/a bal/b]", keys)
	}
}

func TestPrefixDB_Batch(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("s/"))
	db.Put([]byte("old"), []byte("x"))

	b := db.NewBatch()
	if err := b.Put([]byte("new"), []byte("y")); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete([]byte("old")); err != nil {
		t.Fatal(err)
	}

	// Nothing is visible before Commit.
	if ok, _ := db.Has([]byte("new")); ok {
		t.Fatal("batched write visible before Commit")
	}

	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if ok, _ := inner.Has([]byte("s/new")); !ok {
		t.Fatal("batched write missing from inner DB after Commit")
	}
	if ok, _ := db.Has([]byte("old")); ok {
		t.Fatal("batched delete not applied")
	}
}

// plainDB hides the Batcher implementation of the wrapped DB.
type plainDB struct{ DB }

func TestNewBatch_Fallback(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(plainDB{inner}, []byte("p/"))

	b := db.NewBatch()
	b.Put([]byte("k"), []byte("v"))
	if err := b.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	got, err := inner.Get([]byte("p/k"))
	if err != nil {
		t.Fatalf("inner.Get: %v", err)
	}
	if string(got) != "v" {
		t.Fatalf("inner.Get = %q, want %q", got, "v")
	}

	fb := NewBatch(plainDB{inner})
	fb.Delete([]byte("p/k"))
	if err := fb.Commit(); err != nil {
		t.Fatalf("fallback Commit: %v", err)
	}
	if ok, _ := inner.Has([]byte("p/k")); ok {
		t.Fatal("fallback delete not applied")
	}
}

func TestPrefixDB_CloseIsNoop(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("x/"))

	db.Put([]byte("key"), []byte("val"))
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := inner.Get([]byte("x/key"))
	if err != nil {
		t.Fatalf("inner.Get after Close: %v", err)
	}
	if string(got) != "val" {
		t.Fatalf("inner.Get = %q, want %q", got, "val")
	}
}
