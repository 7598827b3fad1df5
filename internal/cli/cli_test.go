package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/firmdesk/internal/documents"
	"github.com/celerix-dev/firmdesk/pkg/schema"
)

func isolate(t *testing.T) string {
	t.Helper()
	for _, name := range []string{"FIRMDESK_CONFIG", "FIRMDESK_DRIVER", "FIRMDESK_DATA_DIR", "FIRMDESK_DSN",
		"FIRMDESK_PREFIX", "FIRMDESK_LOG_LIMIT", "FIRMDESK_OFFSITE_DIR", "FIRMDESK_S3_BUCKET"} {
		t.Setenv(name, "")
	}
	return t.TempDir()
}

// run executes one CLI invocation against the file store in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--data-dir", dir, "--driver", "file"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func decode[T any](t *testing.T, raw string) T {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &resp), raw)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "firmdesk", cmd.Use)
	assert.Contains(t, cmd.Long, "maker-checker")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	paths := [][]string{
		{"doc", "create"}, {"doc", "submit"}, {"doc", "approve"}, {"doc", "reject"}, {"doc", "sign"},
		{"client", "add"}, {"invoice", "create"}, {"logs"}, {"backup", "export"}, {"backup", "push"},
		{"reset"}, {"migrate"}, {"advise"},
	}
	for _, p := range paths {
		t.Run(strings.Join(p, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(p)
			require.NoError(t, err)
			assert.Equal(t, p[len(p)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "--format", "xml", "logs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestDocumentWorkflow(t *testing.T) {
	dir := isolate(t)

	_, err := run(t, dir, "client", "add", "Acme Traders", "--id", "c1", "--pan", "AAACA1234A")
	require.NoError(t, err)
	out, err := run(t, dir, "doc", "create", "--id", "d1", "--client", "c1", "--title", "GST Computation")
	require.NoError(t, err)
	assert.Contains(t, out, "Created d1 (Draft)")

	for _, step := range []string{"submit", "approve"} {
		_, err := run(t, dir, "doc", step, "d1")
		require.NoError(t, err, step)
	}
	out, err = run(t, dir, "doc", "sign", "d1", "--signer", "partner@firm.com")
	require.NoError(t, err)
	assert.Contains(t, out, "d1 is now Signed")

	out, err = run(t, dir, "--format", "json", "doc", "show", "d1")
	require.NoError(t, err)
	doc := decode[schema.ClientDocument](t, out)
	assert.Equal(t, schema.StatusSigned, doc.Status)
	assert.Equal(t, "partner@firm.com", doc.SignedBy)

	_, err = run(t, dir, "doc", "approve", "d1")
	require.Error(t, err)
	assert.ErrorIs(t, err, documents.ErrInvalidTransition)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err = run(t, dir, "--format", "json", "logs")
	require.NoError(t, err)
	logs := decode[[]schema.ActivityLogEntry](t, out)
	require.Len(t, logs, 5)
	assert.Equal(t, "Document Signed", logs[0].Action)
	assert.Equal(t, "Acme Traders", logs[0].ClientName)
	assert.Equal(t, "Client Added", logs[4].Action)
}

func TestJSONErrorEnvelope(t *testing.T) {
	dir := isolate(t)
	out, err := run(t, dir, "--format", "json", "doc", "submit", "missing")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "E_NOT_FOUND", resp.Error.Code)
}

func TestInvoiceCommands(t *testing.T) {
	dir := isolate(t)

	out, err := run(t, dir, "invoice", "create", "--client", "c1", "--tax", "18",
		"--line", "GST return filing:3:1500", "--line", "Advice: FY24:1:2000")
	require.NoError(t, err)
	assert.Contains(t, out, "INV-0001 issued: subtotal 6500.00, tax 1170.00, total 7670.00")

	out, err = run(t, dir, "--format", "json", "invoice", "list")
	require.NoError(t, err)
	list := decode[[]schema.Invoice](t, out)
	require.Len(t, list, 1)
	assert.Equal(t, "Advice: FY24", list[0].Lines[1].Description)

	_, err = run(t, dir, "invoice", "paid", list[0].ID)
	require.NoError(t, err)

	_, err = run(t, dir, "invoice", "create", "--client", "c1", "--line", "broken")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBackupExportResetImport(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "doc", "create", "--id", "d1", "--client", "c1", "--title", "GST Computation")
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "backup.json")
	_, err = run(t, dir, "backup", "export", "-o", file)
	require.NoError(t, err)

	_, err = run(t, dir, "reset")
	require.Error(t, err, "reset without --yes must refuse")
	out, err := run(t, dir, "reset", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 keys")

	_, err = run(t, dir, "doc", "show", "d1")
	require.ErrorIs(t, err, documents.ErrNotFound)

	out, err = run(t, dir, "backup", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 2 keys")
	_, err = run(t, dir, "doc", "show", "d1")
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("[1,2]"), 0o600))
	_, err = run(t, dir, "backup", "import", bad)
	require.Error(t, err)
}

func TestBackupPushPull(t *testing.T) {
	dir := isolate(t)
	t.Setenv("FIRMDESK_OFFSITE_DIR", filepath.Join(t.TempDir(), "offsite"))

	_, err := run(t, dir, "client", "add", "Acme Traders", "--id", "c1")
	require.NoError(t, err)
	out, err := run(t, dir, "backup", "push")
	require.NoError(t, err)
	assert.Contains(t, out, "Pushed firmdesk-backup-")

	out, err = run(t, dir, "--format", "json", "backup", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "firmdesk-backup-")

	_, err = run(t, dir, "reset", "--yes")
	require.NoError(t, err)
	out, err = run(t, dir, "backup", "pull")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 2 keys")
}

func TestMigrateToSQLite(t *testing.T) {
	dir := isolate(t)
	_, err := run(t, dir, "client", "add", "Acme Traders", "--id", "c1")
	require.NoError(t, err)

	out, err := run(t, dir, "migrate", "--to", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "Copied 2 keys from file to sqlite")

	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--data-dir", dir, "--driver", "sqlite", "client", "list"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Acme Traders")

	_, err = run(t, dir, "migrate", "--to", "file")
	require.Error(t, err)
}

func TestParseLine(t *testing.T) {
	l, err := parseLine("Audit fee:1:25000.50")
	require.NoError(t, err)
	assert.Equal(t, "Audit fee", l.Description)
	assert.Equal(t, "25000.5", l.Rate.String())

	_, err = parseLine("no-rate:1")
	assert.Error(t, err)
	_, err = parseLine("x:one:2")
	assert.Error(t, err)
}
