package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDashboardURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080/"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000/"},
	}
	for _, tt := range tests {
		if got := dashboardURL(tt.addr); got != tt.want {
			t.Errorf("dashboardURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestFindWebDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	nested := filepath.Join(root, "cmd", "mudra")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	if got := findWebDir(); got != "" {
		t.Fatalf("findWebDir() = %q, want empty without a web directory", got)
	}

	web := filepath.Join(root, "web")
	if err := os.Mkdir(web, 0o755); err != nil {
		t.Fatal(err)
	}
	got := findWebDir()
	want, _ := filepath.EvalSymlinks(web)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Errorf("findWebDir() = %q, want %q", got, web)
	}
}
