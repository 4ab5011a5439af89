package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/models"
	"github.com/thenoetrevino/tasknote/internal/testutil"
	testcli "github.com/thenoetrevino/tasknote/internal/testutil/cli"
	"github.com/thenoetrevino/tasknote/internal/transfer"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 1, 2}

func TestExport_Stdout(t *testing.T) {
	a := testcli.SetupCLITest(t)
	testcli.CreateTestTask(t, a, "t1", "First")
	testcli.CreateTestTask(t, a, "t2", "Second")

	output, err := testcli.ExecuteCLICommand(t, a, ExportCmd(), nil)
	require.NoError(t, err)

	var env transfer.Envelope
	require.NoError(t, json.Unmarshal([]byte(output), &env))
	assert.Equal(t, transfer.FormatVersion, env.Version)
	assert.NotEmpty(t, env.ExportedAt)
	assert.Len(t, env.Tasks, 2)
}

func TestExport_File(t *testing.T) {
	a := testcli.SetupCLITest(t)
	testcli.CreateTestTask(t, a, "t1", "First")
	path := filepath.Join(t.TempDir(), "tasks.json")

	output, err := testcli.ExecuteCLICommand(t, a, ExportCmd(), []string{"--out=" + path, "--json"})
	require.NoError(t, err)

	data := testutil.ParseJSON(t, output)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["exported"])
	assert.Equal(t, path, data["path"])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var env transfer.Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Len(t, env.Tasks, 1)
	assert.Equal(t, "First", env.Tasks[0].Title)
}

func TestExport_UnwritablePath(t *testing.T) {
	a := testcli.SetupCLITest(t)

	_, err := testcli.ExecuteCLICommand(t, a, ExportCmd(),
		[]string{"--out=" + filepath.Join(t.TempDir(), "missing", "tasks.json"), "--json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitError, cli.ExitCode(err))
}

func TestImport_FromStdin(t *testing.T) {
	a := testcli.SetupCLITest(t)

	input := `[
		{"id": "a", "title": "Imported", "completed": true, "completedAt": "2024-05-01T10:00:00Z"},
		{"unrelated": 1},
		{"title": "No id", "imageBlobDataUrls": ["not a data url"]}
	]`

	output, err := testcli.ExecuteCLICommandWithInput(t, a, ImportCmd(), []string{"--json"}, input)
	require.NoError(t, err)

	data := testutil.ParseJSON(t, output)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["imported"])
	assert.Equal(t, float64(1), data["skipped"])
	assert.Equal(t, float64(1), data["skipped_images"])

	task, found, err := a.Store.GetByID(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Imported", task.Title)
	assert.True(t, task.Completed)
	require.NotNil(t, task.CompletedAt)

	tasks, err := a.Store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestExportThenImport_RestoresTasks(t *testing.T) {
	source := testcli.SetupCLITest(t)

	draft := source.Store.CreateDraft("pic")
	draft.Title = "With image"
	draft.Memo = "**bold**"
	draft.Images = []models.Image{{MIMEType: "image/png", Data: pngBytes}}
	_, err := source.Store.Upsert(context.Background(), &draft)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tasks.json")
	_, err = testcli.ExecuteCLICommand(t, source, ExportCmd(), []string{"--out=" + path, "--quiet"})
	require.NoError(t, err)

	target := testcli.SetupCLITest(t)
	output, err := testcli.ExecuteCLICommand(t, target, ImportCmd(), []string{"--in=" + path})
	require.NoError(t, err)
	assert.Contains(t, output, "Imported 1 tasks")

	task, found, err := target.Store.GetByID(context.Background(), "pic")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "**bold**", task.Memo)
	require.Len(t, task.Images, 1)
	assert.Equal(t, pngBytes, task.Images[0].Data)
}

func TestImport_Malformed(t *testing.T) {
	a := testcli.SetupCLITest(t)

	for _, input := range []string{"", "42", `{"tasks": "nope"}`, "[{"} {
		output, err := testcli.ExecuteCLICommandWithInput(t, a, ImportCmd(), []string{"--json"}, input)
		require.Error(t, err, "input %q", input)
		assert.Equal(t, cli.ExitDataErr, cli.ExitCode(err), "input %q", input)
		assert.Equal(t, "MALFORMED_IMPORT",
			testutil.ParseJSON(t, output)["error"].(map[string]any)["code"])
	}
}

func TestImport_MissingFile(t *testing.T) {
	a := testcli.SetupCLITest(t)

	_, err := testcli.ExecuteCLICommand(t, a, ImportCmd(), []string{"--in=/does/not/exist.json"})
	require.Error(t, err)
	assert.Equal(t, cli.ExitError, cli.ExitCode(err))
}
