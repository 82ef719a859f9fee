package main

import (
	"strings"
	"testing"

	"github.com/zulandar/shiftboard/internal/config"
	"github.com/zulandar/shiftboard/internal/db"
	"github.com/zulandar/shiftboard/internal/models"
)

func TestDBInit_SeedsAdmin(t *testing.T) {
	cfgPath := writeTestConfig(t, adminYAML)

	out, err := run(t, "", "db", "init", "--config", cfgPath)
	if err != nil {
		t.Fatalf("db init: %v\n%s", err, out)
	}
	for _, want := range []string{"Loaded config", "Migrated", "Created admin 0000", "initialized successfully"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}

	// A second init is idempotent.
	out, err = run(t, "", "db", "init", "--config", cfgPath)
	if err != nil {
		t.Fatalf("second db init: %v", err)
	}
	if !strings.Contains(out, "Admin 0000 already exists") {
		t.Errorf("expected existing admin, got: %s", out)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		t.Fatal(err)
	}
	var admins int64
	gormDB.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins)
	if admins != 1 {
		t.Errorf("admins = %d, want 1", admins)
	}
}

func TestDBInit_RequiresPassword(t *testing.T) {
	cfgPath := writeTestConfig(t, "")

	_, err := run(t, "", "db", "init", "--config", cfgPath)
	if err == nil {
		t.Fatal("expected error without admin password")
	}
	if !strings.Contains(err.Error(), "admin password is required") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestDBInit_InvalidConfig(t *testing.T) {
	cfgPath := writeTestConfig(t, "database:\n  driver: oracle\n")

	_, err := run(t, "", "db", "init", "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("err = %v, want load config error", err)
	}
}

func TestDBReset_Aborted(t *testing.T) {
	cfgPath := writeTestConfig(t, adminYAML)
	if _, err := run(t, "", "db", "init", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "reason", "add", "-c", cfgPath, "--id", "1", "--title", "Breakdown", "--department", "Maintenance"); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "no\n", "db", "reset", "--config", cfgPath)
	if err != nil {
		t.Fatalf("db reset: %v", err)
	}
	if !strings.Contains(out, "WARNING") || !strings.Contains(out, "Aborted.") {
		t.Errorf("expected warning and abort, got: %s", out)
	}

	out, _ = run(t, "", "reason", "list", "-c", cfgPath)
	if !strings.Contains(out, "Breakdown") {
		t.Errorf("reason should survive an aborted reset, got: %s", out)
	}
}

func TestDBReset_Confirmed(t *testing.T) {
	cfgPath := writeTestConfig(t, adminYAML)
	if _, err := run(t, "", "db", "init", "--config", cfgPath); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "", "reason", "add", "-c", cfgPath, "--id", "1", "--title", "Breakdown", "--department", "Maintenance"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{"typed yes", "yes\n", nil},
		{"flag", "", []string{"--yes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"db", "reset", "--config", cfgPath}, tt.args...)
			out, err := run(t, tt.stdin, args...)
			if err != nil {
				t.Fatalf("db reset: %v\n%s", err, out)
			}
			for _, want := range []string{"Dropped all tables", "Created admin 0000", "reset and re-initialized"} {
				if !strings.Contains(out, want) {
					t.Errorf("expected output to contain %q, got: %s", want, out)
				}
			}
		})
	}

	out, err := run(t, "", "reason", "list", "-c", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No loss reasons found.") {
		t.Errorf("expected empty catalog after reset, got: %s", out)
	}
}

func TestConfirmReset(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"  yes  \n", true},
		{"y\n", false},
		{"YES\n", false},
		{"", false},
	}
	for _, tt := range tests {
		cmd := newDBResetCmd()
		cmd.SetIn(strings.NewReader(tt.input))
		cmd.SetOut(new(strings.Builder))
		if got := confirmReset(cmd, "sqlite x.db"); got != tt.want {
			t.Errorf("confirmReset(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
