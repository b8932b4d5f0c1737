package repository

import (
	"testing"
)

func TestBuildLikeConditionByDialectSQLite(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"title", "advertiser_url"})
	want := "title LIKE ? OR advertiser_url LIKE ?"
	if condition != want {
		t.Fatalf("sqlite like condition mismatch, want %q got %q", want, condition)
	}
	if argCount != 2 {
		t.Fatalf("unexpected arg count: %d", argCount)
	}
}

func TestBuildLikeConditionByDialectPostgres(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("postgres", []string{"email", "referral_code"})
	want := "email ILIKE ? OR referral_code ILIKE ?"
	if condition != want {
		t.Fatalf("postgres like condition mismatch, want %q got %q", want, condition)
	}
	if argCount != 2 {
		t.Fatalf("unexpected arg count: %d", argCount)
	}
}

func TestBuildLikeConditionSkipsBlankColumns(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"  ", "title", ""})
	if condition != "title LIKE ?" {
		t.Fatalf("blank columns must be skipped, got %q", condition)
	}
	if argCount != 1 {
		t.Fatalf("unexpected arg count: %d", argCount)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%needle%", 3)
	if len(args) != 3 {
		t.Fatalf("unexpected arg count: %d", len(args))
	}
	for _, arg := range args {
		if arg != "%needle%" {
			t.Fatalf("unexpected arg value: %v", arg)
		}
	}
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db must default to sqlite, got %s", got)
	}
}
