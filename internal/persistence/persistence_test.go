package persistence

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRedisKey(t *testing.T) {
	r := &Redis{prefix: "task-service"}
	if got := r.Key("edit", "task", "42", "progress"); got != "task-service:edit:task:42:progress" {
		t.Fatalf("unexpected key %q", got)
	}
	var bare *Redis
	if got := bare.Key("a", "b"); got != "a:b" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestPreviewStoreWithoutRedis(t *testing.T) {
	store := NewProgressPreviewStore(nil, 0)
	if err := store.SaveProgress(context.Background(), "t1", 50); err == nil {
		t.Fatalf("expected error without a client")
	}
	if _, _, err := store.LoadProgress(context.Background(), "t1"); err == nil {
		t.Fatalf("expected error without a client")
	}
}

func TestMigrationFilesSortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.sql"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"001_a.sql", "002_b.sql"}) {
		t.Fatalf("unexpected files %v", files)
	}
}
