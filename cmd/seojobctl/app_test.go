package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/Abraxas-365/seoqueue/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	t.Setenv("SEOJOB_STORE", "memory")
	t.Setenv("METAGEN_PROVIDER", "openai")
	t.Setenv("METAGEN_API_KEY", "test")

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	env := filepath.Join(t.TempDir(), "missing.env")
	return &out, app.Run(context.Background(), append([]string{"seojobctl", "--env", env}, args...))
}

func TestStats_MemoryStore(t *testing.T) {
	out, err := runApp(t, "stats")
	require.NoError(t, err)

	var body struct {
		Kinds []map[string]any `json:"kinds"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Len(t, body.Kinds, 3)
}

func TestProcess_EmptyQueue(t *testing.T) {
	out, err := runApp(t, "process", "--batch-size", "5")
	require.NoError(t, err)
	assert.Contains(t, out.String(), `"claimed": 0`)
}

func TestEnqueueOne_UnknownKind(t *testing.T) {
	_, err := runApp(t, "enqueue", "one", "--kind", "widget", "--id", "x")
	require.Error(t, err)
}

func TestReports_ArchiveDisabled(t *testing.T) {
	t.Setenv("SEOJOB_ARCHIVE_BACKEND", "")
	t.Setenv("SEOJOB_ARCHIVE_BUCKET", "")
	_, err := runApp(t, "reports", "list", "--day", "2026-01-02")
	require.Error(t, err)
}

func TestJobsGet_InvalidID(t *testing.T) {
	_, err := runApp(t, "jobs", "get", "--id", "nope")
	require.Error(t, err)
	var e *errx.Error
	require.True(t, errx.As(err, &e))
	assert.Equal(t, errx.TypeValidation, e.Type)
}

func TestMigrate_RejectsMemoryStore(t *testing.T) {
	_, err := runApp(t, "migrate")
	require.Error(t, err)
}
