package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/tasknote/internal/models"
)

// ============================================================================
// Mock Types for Testing
// ============================================================================

type mockDataWithID struct {
	ID   string
	Name string
}

func (m mockDataWithID) GetID() string {
	return m.ID
}

type mockDataWithoutID struct {
	Name  string
	Value int
}

// captureStream redirects *stream while fn runs
func captureStream(t *testing.T, stream **os.File, fn func()) string {
	t.Helper()

	old := *stream
	r, w, err := os.Pipe()
	require.NoError(t, err)
	*stream = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()
	_ = w.Close()
	*stream = old
	return <-outC
}

func decodeJSON(t *testing.T, output string) map[string]any {
	t.Helper()
	var result map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output: %s", output)
	return result
}

// ============================================================================
// Success
// ============================================================================

func TestOutputFormatter_Success_JSON(t *testing.T) {
	tests := []struct {
		name string
		data any
		want any
	}{
		{"string data", "simple string", "simple string"},
		{"integer data", 42, float64(42)},
		{"nil data", nil, nil},
		{"map data", map[string]any{"test": "value"}, map[string]any{"test": "value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &OutputFormatter{JSON: true}
			output := captureStream(t, &os.Stdout, func() {
				require.NoError(t, formatter.Success(tt.data))
			})

			result := decodeJSON(t, output)
			assert.Equal(t, true, result["success"])
			assert.Equal(t, tt.want, result["data"])
		})
	}
}

func TestOutputFormatter_Success_QuietPrintsID(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{"value receiver", mockDataWithID{ID: "task-42", Name: "Test"}, "task-42"},
		{"pointer to value receiver", &mockDataWithID{ID: "task-55"}, "task-55"},
		{"task view", TaskView{ID: "0b1c"}, "0b1c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &OutputFormatter{Quiet: true}
			output := captureStream(t, &os.Stdout, func() {
				require.NoError(t, formatter.Success(tt.data))
			})
			assert.Equal(t, tt.want+"\n", output)
		})
	}
}

func TestOutputFormatter_Success_QuietWithoutIDFallsThrough(t *testing.T) {
	formatter := &OutputFormatter{Quiet: true}
	output := captureStream(t, &os.Stdout, func() {
		require.NoError(t, formatter.Success(mockDataWithoutID{Name: "Test", Value: 42}))
	})
	assert.Contains(t, output, "Test")
}

func TestOutputFormatter_Success_HumanReadable(t *testing.T) {
	formatter := &OutputFormatter{}
	output := captureStream(t, &os.Stdout, func() {
		require.NoError(t, formatter.Success([]string{"item1", "item2"}))
	})
	assert.Contains(t, output, "item1")
}

// ============================================================================
// Errors
// ============================================================================

func TestOutputFormatter_ErrorWithSuggestion_JSON(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}
	output := captureStream(t, &os.Stdout, func() {
		require.NoError(t, formatter.ErrorWithSuggestion("TASK_NOT_FOUND", "task x not found", "Run 'tasknote task list'"))
	})

	result := decodeJSON(t, output)
	assert.Equal(t, false, result["success"])
	errData := result["error"].(map[string]any)
	assert.Equal(t, "TASK_NOT_FOUND", errData["code"])
	assert.Equal(t, "task x not found", errData["message"])
	assert.Equal(t, "Run 'tasknote task list'", errData["suggestion"])
}

func TestOutputFormatter_Error_JSONOmitsEmptySuggestion(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}
	output := captureStream(t, &os.Stdout, func() {
		require.NoError(t, formatter.Error("TEST_ERROR", "error with \"quotes\" and \n newlines"))
	})

	errData := decodeJSON(t, output)["error"].(map[string]any)
	assert.Equal(t, "error with \"quotes\" and \n newlines", errData["message"])
	_, has := errData["suggestion"]
	assert.False(t, has)
}

func TestOutputFormatter_Error_HumanGoesToStderr(t *testing.T) {
	formatter := &OutputFormatter{}
	var stdout string
	stderr := captureStream(t, &os.Stderr, func() {
		stdout = captureStream(t, &os.Stdout, func() {
			require.NoError(t, formatter.ErrorWithSuggestion("X", "broken", "try again"))
		})
	})

	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: broken")
	assert.Contains(t, stderr, "Suggestion: try again")
}

func TestOutputFormatter_FailTagsExitCode(t *testing.T) {
	formatter := &OutputFormatter{JSON: true}
	cause := errors.New("task t1 not found")

	var err error
	output := captureStream(t, &os.Stdout, func() {
		err = formatter.Fail(ExitNotFound, "TASK_NOT_FOUND", cause, "")
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitNotFound, ExitCode(err))
	assert.True(t, strings.Contains(output, "TASK_NOT_FOUND"))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, ExitCode(nil))
	assert.Equal(t, ExitError, ExitCode(errors.New("plain")))
	assert.Equal(t, ExitValidation, ExitCode(WithExitCode(ExitValidation, errors.New("bad date"))))
	assert.Equal(t, ExitDataErr, ExitCode(fmt.Errorf("wrapped: %w", WithExitCode(ExitDataErr, errors.New("bad json")))))
	assert.NoError(t, WithExitCode(ExitUsage, nil))
}

func TestNewTaskView(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	task := models.NewDraft("t1", created)
	task.Title = "Write report"
	task.Images = []models.Image{{MIMEType: "image/png", Data: []byte{1}}, {MIMEType: "image/gif", Data: []byte{2}}}
	task.MarkCompleted(created.Add(time.Hour))

	view := NewTaskView(&task)
	assert.Equal(t, "t1", view.GetID())
	assert.Equal(t, "Write report", view.Title)
	assert.Equal(t, 2, view.ImageCount)
	assert.True(t, view.Completed)
	require.NotNil(t, view.CompletedAt)
	assert.Equal(t, created.Add(time.Hour), *view.CompletedAt)
}
