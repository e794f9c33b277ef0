package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoyforge/internal/config"
	"decoyforge/internal/generate"
	"decoyforge/internal/llm"
	"decoyforge/internal/token"
)

type staticClient struct{ text string }

func (c *staticClient) Name() string { return "static" }

func (c *staticClient) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{Text: c.text, Model: "static-1"}, nil
}

const serviceFixturePython = `import json
import logging
import os
import sys

logger = logging.getLogger("report")

# weekly usage report rollup


def load(path):
    with open(path) as fh:
        return json.load(fh)


def rollup(rows):
    for row in rows:
        try:
            logger.info("rolling up %s", row)
        except KeyError as exc:
            logger.error("bad row %s: %s", row, exc)
            return 1
    return 0


if __name__ == "__main__":
    data = load(os.environ.get("REPORT_INPUT", "/var/lib/report/rows.json"))
    sys.exit(rollup(data))
`

func testService(t *testing.T) *Service {
	t.Helper()
	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	cfg.Storage.DatabasePath = ":memory:"
	cfg.Populate.OutputBasePath = filepath.Join(cfg.Workspace, "decoys")
	cfg.Populate.TimestampWindow = config.TimestampWindow{
		MinAge: config.Duration(24 * time.Hour),
		MaxAge: config.Duration(60 * 24 * time.Hour),
	}

	svc, err := NewWithClient(cfg, &staticClient{text: serviceFixturePython})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestServicePopulateDecoyEndToEnd(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	report, err := svc.PopulateDecoy(ctx, "decoy-svc", "developer-workstation")
	require.NoError(t, err)
	assert.NotEmpty(t, report.JobID)
	assert.Greater(t, report.Deployed(), 0)

	// Honeytokens planted by the job resolve through the ledger.
	tokens, err := svc.ListHoneytokens(ctx, token.Filter{JobID: report.JobID})
	require.NoError(t, err)
	require.NotEmpty(t, tokens)

	rec, err := svc.LookupHoneytoken(ctx, tokens[0].Value)
	require.NoError(t, err)
	assert.Equal(t, tokens[0].ID, rec.ID)

	require.NoError(t, svc.MarkHoneytokenTriggered(ctx, rec.ID))
	got, err := svc.GetHoneytoken(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, token.StateTriggered, got.State)
}

func TestServicePopulateUnknownProfile(t *testing.T) {
	svc := testService(t)
	_, err := svc.PopulateDecoy(context.Background(), "decoy-x", "mainframe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")
}

func TestServiceGenerateArtifact(t *testing.T) {
	svc := testService(t)

	res, err := svc.GenerateArtifact(context.Background(), "decoy-one-off", generate.Request{
		ContentType: generate.ContentSourceCode,
		FileType:    "python",
		Path:        "/opt/report/rollup.py",
		Purpose:     "usage report rollup",
	})
	require.NoError(t, err)
	assert.Equal(t, serviceFixturePython, res.Content)
	assert.Equal(t, 1, res.Attempts)
}

func TestServiceProfiles(t *testing.T) {
	svc := testService(t)
	names := svc.Profiles()
	assert.Contains(t, names, "developer-workstation")

	p, err := svc.Profile("database-server")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Files)
}

func TestServiceLoadsProfileDir(t *testing.T) {
	dir := t.TempDir()
	custom := `name: bastion
files:
  - path: etc/motd
    content_type: document
    file_type: markdown
    class: document
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bastion.yaml"), []byte(custom), 0o644))

	cfg := config.Default()
	cfg.Workspace = t.TempDir()
	cfg.Storage.DatabasePath = ":memory:"
	cfg.Populate.ProfileDir = dir

	svc, err := NewWithClient(cfg, &staticClient{text: serviceFixturePython})
	require.NoError(t, err)
	defer svc.Close()

	assert.Contains(t, svc.Profiles(), "bastion")
}
