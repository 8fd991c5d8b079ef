package valuelog

import (
	"os"
	"path/filepath"
	"testing"
)

func openScratch(t *testing.T) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "values.bin")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		t.Fatalf("open scratch file failed: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestValuelog_AppendRead_RoundTrip(t *testing.T) {
	f := openScratch(t)

	off, err := Append(f, "greeting", "hello world")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if off != 0 {
		t.Fatalf("first Append offset = %d, want 0", off)
	}

	value, err := Read(f, off)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if value != "hello world" {
		t.Fatalf("Read = %q, want %q", value, "hello world")
	}
}

func TestValuelog_AppendRead_EmptyValue(t *testing.T) {
	f := openScratch(t)

	off, err := Append(f, "k", "")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	value, err := Read(f, off)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if value != "" {
		t.Fatalf("Read = %q, want empty", value)
	}
}

func TestValuelog_MultipleRecords_Sequential(t *testing.T) {
	f := openScratch(t)

	off1, err := Append(f, "a", "1")
	if err != nil {
		t.Fatalf("Append(a) failed: %v", err)
	}
	off2, err := Append(f, "b", "two")
	if err != nil {
		t.Fatalf("Append(b) failed: %v", err)
	}
	if off2 <= off1 {
		t.Fatalf("second offset %d did not advance past first %d", off2, off1)
	}

	v1, err := Read(f, off1)
	if err != nil || v1 != "1" {
		t.Fatalf("Read(off1) = %q, %v, want %q, nil", v1, err, "1")
	}
	v2, err := Read(f, off2)
	if err != nil || v2 != "two" {
		t.Fatalf("Read(off2) = %q, %v, want %q, nil", v2, err, "two")
	}
}

func TestValuelog_ReadKeyValue(t *testing.T) {
	f := openScratch(t)

	off, err := Append(f, "mykey", "myvalue")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	key, value, err := ReadKeyValue(f, off)
	if err != nil {
		t.Fatalf("ReadKeyValue failed: %v", err)
	}
	if key != "mykey" || value != "myvalue" {
		t.Fatalf("ReadKeyValue = (%q,%q), want (%q,%q)", key, value, "mykey", "myvalue")
	}
}
