package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"rabfront/config"
	"rabfront/export"
	"rabfront/services"
	"rabfront/testhelpers"
)

func stubConfig(t *testing.T) config.Config {
	t.Helper()
	srv := testhelpers.NewStubServer(t)
	return config.Config{
		EstimationBaseURL: srv.URL + "/estimations",
		ExportBaseURL:     srv.URL + "/export",
		APIToken:          testhelpers.StubToken,
		OutputDir:         t.TempDir(),
	}
}

func TestExportCommand_SingleVariant(t *testing.T) {
	cfg := stubConfig(t)

	cmd := NewExportCommand(cfg, zap.NewNop())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"est_foundation", "--variant", "rab-excel"})

	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "RAB_Office_Tower.xlsx"))
	assert.Contains(t, out.String(), "RAB_Office_Tower.xlsx")
	assert.Contains(t, out.String(), "✓")
}

func TestExportCommand_AllVariants(t *testing.T) {
	cfg := stubConfig(t)
	dir := t.TempDir()

	cmd := NewExportCommand(cfg, zap.NewNop())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"est_gudang_02", "--all", "--out", dir})
	require.NoError(t, cmd.Execute())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(services.Variants))
}

func TestExportCommand_UnknownVariant(t *testing.T) {
	cmd := NewExportCommand(stubConfig(t), zap.NewNop())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"est_foundation", "--variant", "docx"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown export variant "docx"`)
}

func TestExportCommand_MissingLogo(t *testing.T) {
	cmd := NewExportCommand(stubConfig(t), zap.NewNop())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"est_foundation", "--logo", filepath.Join(t.TempDir(), "nope.png")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read logo")
}

func TestRunExports_ReportsEachFailure(t *testing.T) {
	srv := testhelpers.NewStubServer(t)
	x := export.NewExporter(testhelpers.NewClient(t, srv))
	dir := t.TempDir()

	var out bytes.Buffer
	req := export.Request{EstimationID: "missing"}
	err := runExports(context.Background(), x, export.DirSink{Dir: dir}, req,
		[]services.Variant{services.VariantRABPDF, services.VariantVolumePDF}, &out)

	require.Error(t, err)
	assert.Equal(t, "2 of 2 exports failed", err.Error())
	assert.Equal(t, 2, strings.Count(out.String(), "estimation not found"))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
