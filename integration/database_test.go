//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestOptiscanWithMySQL tests the optiscan CLI with a MySQL history backend.
func TestOptiscanWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "optiscan",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/optiscan?parseTime=true", host, port.Port())

	runHistoryLifecycle(t, "mysql", connStr)
}

// TestOptiscanWithPostgres tests the optiscan CLI with a PostgreSQL history backend.
func TestOptiscanWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	runHistoryLifecycle(t, "postgresql", connStr)
}

// runHistoryLifecycle exercises the full train/analyze/history flow against
// the given backend.
func runHistoryLifecycle(t *testing.T, backend, connStr string) {
	// Set environment variables
	_ = os.Setenv("OPTISCAN_HISTORY_BACKEND", backend)
	_ = os.Setenv("OPTISCAN_HISTORY_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("OPTISCAN_HISTORY_BACKEND") }()
	defer func() { _ = os.Unsetenv("OPTISCAN_HISTORY_DB_CONNECT") }()

	workDir := t.TempDir()
	modelPath := filepath.Join(workDir, "model.bin")
	projectDir := filepath.Join(workDir, "project")
	require.NoError(t, os.Mkdir(projectDir, 0o755))
	require.NoError(t, writeSampleProject(projectDir))

	// Run optiscan history clear (drops any stale tables)
	err := runOptiscanCommand(t, "history", "clear")
	require.NoError(t, err)

	// Run optiscan history migrate (sets up the schema from scratch)
	err = runOptiscanCommand(t, "history", "migrate")
	require.NoError(t, err)

	// Run optiscan train (records a training run)
	err = runOptiscanCommand(t, "train", "--algorithm", "logistic_regression", "--dataset-size", "200", "--model-path", modelPath)
	require.NoError(t, err)

	// Run optiscan analyze (records predictions)
	err = runOptiscanCommand(t, "analyze", projectDir, "--limit", "5", "--model-path", modelPath)
	require.NoError(t, err)

	// Run optiscan history status
	err = runOptiscanCommand(t, "history", "status")
	require.NoError(t, err)

	// Run optiscan history export
	err = runOptiscanCommand(t, "history", "export", "--output-file", filepath.Join(workDir, "export"))
	require.NoError(t, err)
}

func runOptiscanCommand(t *testing.T, args ...string) error {
	optiscanPath := getOptiscanBinary()
	cmd := exec.Command(optiscanPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
