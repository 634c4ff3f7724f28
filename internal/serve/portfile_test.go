package serve

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestGenerateInstanceID(t *testing.T) {
	id, err := GenerateInstanceID()
	if err != nil {
		t.Fatalf("GenerateInstanceID() error: %v", err)
	}
	if !strings.HasPrefix(id, "srv_") {
		t.Errorf("expected prefix 'srv_', got %q", id)
	}
	// srv_ (4 chars) + 6 hex chars
	if len(id) != 10 {
		t.Errorf("expected length 10, got %d (%q)", len(id), id)
	}

	id2, err := GenerateInstanceID()
	if err != nil {
		t.Fatalf("GenerateInstanceID() second call error: %v", err)
	}
	if id == id2 {
		t.Errorf("expected unique IDs, got %q twice", id)
	}
}

func TestWriteReadDeletePortFile(t *testing.T) {
	baseDir := t.TempDir()
	now := time.Now().Truncate(time.Second).UTC()
	info := &PortInfo{
		Host:       "127.0.0.1",
		Port:       54321,
		PID:        os.Getpid(),
		StartedAt:  now,
		InstanceID: "srv_abc123",
	}

	// Write creates .modalkit when missing
	if err := WritePortFile(baseDir, info); err != nil {
		t.Fatalf("WritePortFile() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(baseDir, ".modalkit", portLockFileName)); err != nil {
		t.Errorf("lock file not created: %v", err)
	}

	got, err := ReadPortFile(baseDir)
	if err != nil {
		t.Fatalf("ReadPortFile() error: %v", err)
	}
	if got.Port != info.Port || got.PID != info.PID || got.InstanceID != info.InstanceID || got.Host != info.Host {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", got, info)
	}
	if !got.StartedAt.Equal(now) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, now)
	}

	if err := DeletePortFile(baseDir); err != nil {
		t.Fatalf("DeletePortFile() error: %v", err)
	}
	if _, err := ReadPortFile(baseDir); err == nil {
		t.Error("expected error after delete")
	}
	// Delete again is a no-op
	if err := DeletePortFile(baseDir); err != nil {
		t.Errorf("DeletePortFile() on missing file: %v", err)
	}
}

func TestWritePortFileJSON(t *testing.T) {
	baseDir := t.TempDir()
	info := &PortInfo{
		Port:       54321,
		PID:        91234,
		StartedAt:  time.Date(2026, 2, 27, 5, 10, 11, 0, time.UTC),
		InstanceID: "srv_8f3b2c",
	}
	if err := WritePortFile(baseDir, info); err != nil {
		t.Fatalf("WritePortFile() error: %v", err)
	}

	data, err := os.ReadFile(portFilePath(baseDir))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if raw["port"].(float64) != 54321 {
		t.Errorf("JSON port = %v, want 54321", raw["port"])
	}
	if raw["instance_id"].(string) != "srv_8f3b2c" {
		t.Errorf("JSON instance_id = %v, want srv_8f3b2c", raw["instance_id"])
	}
}

func TestReadPortFileErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"invalid json", "not json", "parse port file"},
		{"missing port", `{"pid": 123, "instance_id": "srv_abc123"}`, "port"},
		{"missing pid", `{"port": 8080, "instance_id": "srv_abc123"}`, "pid"},
		{"missing instance_id", `{"port": 8080, "pid": 123}`, "instance_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baseDir := t.TempDir()
			if err := os.MkdirAll(filepath.Join(baseDir, ".modalkit"), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(portFilePath(baseDir), []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := ReadPortFile(baseDir)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err.Error(), tt.want)
			}
		})
	}

	if _, err := ReadPortFile(t.TempDir()); err == nil {
		t.Error("expected error for missing port file")
	}
}

func TestPortInfoURL(t *testing.T) {
	tests := map[string]string{
		"":          "http://localhost:7410",
		"0.0.0.0":   "http://localhost:7410",
		"127.0.0.1": "http://127.0.0.1:7410",
	}
	for host, want := range tests {
		if got := (&PortInfo{Host: host, Port: 7410}).URL(); got != want {
			t.Errorf("URL() with host %q = %q, want %q", host, got, want)
		}
	}
}

func TestStalePortFile(t *testing.T) {
	baseDir := t.TempDir()
	// A PID well outside typical ranges.
	dead := &PortInfo{Port: 19999, PID: 1<<30 + 7, StartedAt: time.Now().UTC(), InstanceID: "srv_dead01"}
	if !IsPortFileStale(dead) {
		t.Error("expected stale for dead PID")
	}
	if err := WritePortFile(baseDir, dead); err != nil {
		t.Fatal(err)
	}
	if _, ok := Discover(baseDir); ok {
		t.Error("Discover returned a dead server")
	}

	// A stale registration does not block a new one.
	live := &PortInfo{Port: 19998, PID: os.Getpid(), StartedAt: time.Now().UTC(), InstanceID: "srv_live01"}
	if err := WritePortFile(baseDir, live); err != nil {
		t.Errorf("WritePortFile over stale entry: %v", err)
	}
}

func TestIsServerHealthyNoServer(t *testing.T) {
	// Port 1 is privileged and almost certainly not serving
	if IsServerHealthy("http://localhost:1") {
		t.Error("expected IsServerHealthy = false")
	}
}
