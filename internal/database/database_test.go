package database

import (
	"sort"
	"testing"

	"github.com/cockroachdb/errors"

	"rdbx/internal/dberrors"
)

func TestDatabase_CreateSetGet(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "x"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	db, err := Open(dir, "x")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if err := db.Set("alpha", "1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, err := db.Get("alpha")
	if err != nil || value != "1" {
		t.Fatalf("Get(alpha) = (%q,%v), want (1,nil)", value, err)
	}
	if _, err := db.Get("beta"); !dberrors.IsKeyAbsent(err) {
		t.Fatalf("Get(beta) err = %v, want ErrKeyAbsent", err)
	}
}

func TestDatabase_Create_AlreadyExists(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "x"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if err := Create(dir, "x"); !errors.Is(err, dberrors.ErrAlreadyExists) {
		t.Fatalf("second Create err = %v, want ErrAlreadyExists", err)
	}
}

func TestDatabase_Open_NotFound(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir, "missing"); !errors.Is(err, dberrors.ErrNotFound) {
		t.Fatalf("Open err = %v, want ErrNotFound", err)
	}
}

func TestDatabase_RootSplit_AllValuesReachable(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "x"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	db, err := Open(dir, "x")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	pairs := []struct{ k, v string }{
		{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}, {"e", "5"}, {"f", "6"},
	}
	for _, p := range pairs {
		if err := db.Set(p.k, p.v); err != nil {
			t.Fatalf("Set(%q) failed: %v", p.k, err)
		}
	}
	for _, p := range pairs {
		got, err := db.Get(p.k)
		if err != nil || got != p.v {
			t.Fatalf("Get(%q) = (%q,%v), want (%q,nil)", p.k, got, err, p.v)
		}
	}
}

func TestDatabase_PersistenceAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "x"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	db, err := Open(dir, "x")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, kv := range [][2]string{{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}, {"e", "5"}, {"f", "6"}} {
		if err := db.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%q) failed: %v", kv[0], err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dir, "x")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if v, err := reopened.Get("c"); err != nil || v != "3" {
		t.Fatalf("Get(c) after restart = (%q,%v), want (3,nil)", v, err)
	}
	if v, err := reopened.Get("f"); err != nil || v != "6" {
		t.Fatalf("Get(f) after restart = (%q,%v), want (6,nil)", v, err)
	}
}

func TestDatabase_OverwriteSemantics(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "x"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	db, err := Open(dir, "x")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if err := db.Set("k", "v1"); err != nil {
		t.Fatalf("Set(v1) failed: %v", err)
	}
	if err := db.Set("k", "v2"); err != nil {
		t.Fatalf("Set(v2) failed: %v", err)
	}
	v, err := db.Get("k")
	if err != nil || v != "v2" {
		t.Fatalf("Get(k) = (%q,%v), want (v2,nil)", v, err)
	}
}

func TestDatabase_ValueWithSpaces(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "x"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	db, err := Open(dir, "x")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if err := db.Set("greeting", "hello world"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v, err := db.Get("greeting")
	if err != nil || v != "hello world" {
		t.Fatalf("Get(greeting) = (%q,%v), want (\"hello world\",nil)", v, err)
	}
}

func TestDatabase_HundredRandomKeys(t *testing.T) {
	dir := t.TempDir()
	if err := Create(dir, "x"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	db, err := Open(dir, "x")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	keys := make([]string, 0, 100)
	seen := make(map[string]bool)
	for len(keys) < 100 {
		k := randomDistinctKey(len(keys), seen)
		seen[k] = true
		keys = append(keys, k)
		if err := db.Set(k, k+"-value"); err != nil {
			t.Fatalf("Set(%q) failed: %v", k, err)
		}
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	for _, k := range sorted {
		v, err := db.Get(k)
		if err != nil || v != k+"-value" {
			t.Fatalf("Get(%q) = (%q,%v), want (%q,nil)", k, v, err, k+"-value")
		}
	}
	if _, err := db.Get("zzz-never-inserted-zzz"); !dberrors.IsKeyAbsent(err) {
		t.Fatalf("Get(never inserted) err = %v, want ErrKeyAbsent", err)
	}
}

func randomDistinctKey(seed int, seen map[string]bool) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	k := make([]byte, 6)
	n := seed
	for i := range k {
		k[i] = alphabet[(n+i*7+seed*13)%len(alphabet)]
		n = n*31 + 17
	}
	key := string(k)
	for seen[key] {
		key += "x"
	}
	return key
}
