package serve

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	portFileName     = "serve-port"
	portLockFileName = "serve-port.lock"
	instancePrefix   = "srv_"
	healthTimeout    = 2 * time.Second
)

// PortInfo is written to .modalkit/serve-port while a server runs so other
// commands can find it.
type PortInfo struct {
	Host       string    `json:"host"`
	Port       int       `json:"port"`
	PID        int       `json:"pid"`
	StartedAt  time.Time `json:"started_at"`
	InstanceID string    `json:"instance_id"`
}

// URL returns the server base URL.
func (p *PortInfo) URL() string {
	host := p.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, p.Port)
}

// GenerateInstanceID creates a random instance ID such as "srv_8f3b2c".
func GenerateInstanceID() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate instance id: %w", err)
	}
	return instancePrefix + hex.EncodeToString(b), nil
}

func portFilePath(baseDir string) string {
	return filepath.Join(baseDir, ".modalkit", portFileName)
}

func portLockFilePath(baseDir string) string {
	return filepath.Join(baseDir, ".modalkit", portLockFileName)
}

// WritePortFile registers a running server. It fails if another live server
// is already registered for baseDir.
func WritePortFile(baseDir string, info *PortInfo) error {
	if err := os.MkdirAll(filepath.Dir(portFilePath(baseDir)), 0755); err != nil {
		return fmt.Errorf("create port file dir: %w", err)
	}
	lockFile, err := os.OpenFile(portLockFilePath(baseDir), os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open port lock file: %w", err)
	}
	defer lockFile.Close()

	if err := lockWithTimeout(lockFile, 5*time.Second); err != nil {
		return fmt.Errorf("acquire port lock: %w", err)
	}
	defer unlock(lockFile)

	// Re-check under lock; two servers may start at once.
	if existing, err := ReadPortFile(baseDir); err == nil && !IsPortFileStale(existing) {
		return fmt.Errorf("modalkit serve already running at %s (pid %d)", existing.URL(), existing.PID)
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal port info: %w", err)
	}
	if err := os.WriteFile(portFilePath(baseDir), data, 0644); err != nil {
		return fmt.Errorf("write port file: %w", err)
	}
	return nil
}

// ReadPortFile reads the registered server for baseDir.
func ReadPortFile(baseDir string) (*PortInfo, error) {
	data, err := os.ReadFile(portFilePath(baseDir))
	if err != nil {
		return nil, fmt.Errorf("read port file: %w", err)
	}

	var info PortInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse port file: %w", err)
	}
	switch {
	case info.Port == 0:
		return nil, fmt.Errorf("port file missing required field: port")
	case info.PID == 0:
		return nil, fmt.Errorf("port file missing required field: pid")
	case info.InstanceID == "":
		return nil, fmt.Errorf("port file missing required field: instance_id")
	}
	return &info, nil
}

// DeletePortFile removes the port file. A missing file is not an error.
func DeletePortFile(baseDir string) error {
	if err := os.Remove(portFilePath(baseDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove port file: %w", err)
	}
	return nil
}

// Discover returns the URL of a live server registered for baseDir.
func Discover(baseDir string) (string, bool) {
	info, err := ReadPortFile(baseDir)
	if err != nil || IsPortFileStale(info) {
		return "", false
	}
	return info.URL(), true
}

// IsServerHealthy reports whether GET {url}/health answers 200 within the
// health timeout.
func IsServerHealthy(url string) bool {
	client := &http.Client{Timeout: healthTimeout}
	resp, err := client.Get(url + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// IsPortFileStale reports whether the registered process is gone or no
// longer answers health checks.
func IsPortFileStale(info *PortInfo) bool {
	if !isProcessAlive(info.PID) {
		return true
	}
	return !IsServerHealthy(info.URL())
}
