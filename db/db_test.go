// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"errors"
	"testing"
)

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Error("expected error for unsupported database type")
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	conn, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn); err != nil {
			t.Fatalf("CreateSchema() run %d error = %v", i+1, err)
		}
	}

	var count int
	err = conn.QueryRow(`SELECT COUNT(*) FROM assembly`).Scan(&count)
	if err != nil {
		t.Fatalf("assembly table missing: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	conn, err := Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}

	insert := `INSERT INTO assembly (id, title) VALUES ($1, $2)`
	if _, err := conn.Exec(insert, "a1", "Τακτική Γενική Συνέλευση"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	_, err = conn.Exec(insert, "a1", "Έκτακτη Γενική Συνέλευση")
	if err == nil {
		t.Fatal("expected duplicate primary key error")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}

	if IsUniqueViolation(errors.New("some other failure")) {
		t.Error("IsUniqueViolation() = true for a plain error")
	}
}
