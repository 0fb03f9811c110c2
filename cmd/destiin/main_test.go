package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSetupWorkflowCmd(t *testing.T) {
	dir := t.TempDir()

	t.Run("should create the workflow on first run", func(t *testing.T) {
		out, err := run(t, "setup-workflow", "--config-dir", dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		for _, want := range []string{
			"Created missing Role: Employee",
			"Created missing Role: HR Manager",
			"Created new workflow: Travel Request Approval Workflow",
		} {
			if !strings.Contains(out, want) {
				t.Fatalf("\nwanted:\n%s\ngot:\n%s", want, out)
			}
		}
	})

	t.Run("should only report an update on later runs", func(t *testing.T) {
		out, err := run(t, "setup-workflow", "--config-dir", dir)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if out != "Updated existing workflow: Travel Request Approval Workflow\n" {
			t.Fatalf("\nwanted:\nupdate line only\ngot:\n%s", out)
		}
	})

	t.Run("should provision a definition file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "leave.yaml")
		definition := "name: Leave Approval\ndocument_type: Leave Application\nis_active: true\nroles: [Employee]\n" +
			"states:\n  - {state: Open, allow_edit: Employee}\n"
		if err := os.WriteFile(file, []byte(definition), 0600); err != nil {
			t.Fatalf("writing definition: %v", err)
		}
		out, err := run(t, "setup-workflow", "--config-dir", dir, "--file", file)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !strings.Contains(out, "Created new workflow: Leave Approval") {
			t.Fatalf("\nwanted:\nLeave Approval created\ngot:\n%s", out)
		}
	})

	t.Run("should reject an invalid definition file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "broken.yaml")
		os.WriteFile(file, []byte("name: Broken\n"), 0600)
		if _, err := run(t, "setup-workflow", "--config-dir", dir, "--file", file); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}
	})
}

func TestErrorLogsCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "error-logs", "--config-dir", dir)
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if strings.TrimSpace(out) != "TIME  LEVEL  TITLE  MESSAGE  REQUEST" {
		t.Fatalf("\nwanted:\nheader only\ngot:\n%q", out)
	}

	out, err = run(t, "error-logs", "--config-dir", dir, "--json")
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("\nwanted:\n[]\ngot:\n%q", out)
	}
}

func TestAPIKeyCmd(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "api-key", "generate", "--config-dir", dir)
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	pair := strings.TrimPrefix(strings.TrimSpace(out), "Authorization: token ")
	key, _, ok := strings.Cut(pair, ":")
	if !ok || len(key) != 16 {
		t.Fatalf("\nwanted:\nkey:secret\ngot:\n%q", out)
	}

	if _, err := run(t, "api-key", "add", "manual:secret", "--config-dir", dir); err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if _, err := run(t, "api-key", "remove", key, "--config-dir", dir); err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}

	out, err = run(t, "api-key", "list", "--config-dir", dir)
	if err != nil {
		t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
	}
	if out != "manual\n" {
		t.Fatalf("\nwanted:\nmanual\ngot:\n%q", out)
	}
}
