package testdb

import "testing"

func TestValidateName(t *testing.T) {
	for _, name := range []string{"runbot_selftest", "db-42", "ABC_def"} {
		if err := ValidateName(name); err != nil {
			t.Fatalf("%q rejected: %v", name, err)
		}
	}
	for _, name := range []string{"", "a b", "x;drop", "naïve", "a'b"} {
		if err := ValidateName(name); err == nil {
			t.Fatalf("%q accepted", name)
		}
	}
}

func TestDSNUsesSocketDir(t *testing.T) {
	got := DSN("/var/run/postgresql")
	want := "host=/var/run/postgresql dbname=postgres"
	if got != want {
		t.Fatalf("dsn %q, want %q", got, want)
	}
}
