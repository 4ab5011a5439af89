package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTextArg(t *testing.T) {
	got, err := ReadTextArg("inline", strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "inline", got)

	got, err = ReadTextArg("-", strings.NewReader("# from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "# from stdin\n", got)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, Confirm(strings.NewReader(tt.input), &out, "Delete?"))
			assert.Equal(t, "Delete? (y/N): ", out.String())
		})
	}
}

func TestFormatterFor(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	AddOutputFlags(cmd)
	require.NoError(t, cmd.Flags().Set("json", "true"))

	f := FormatterFor(cmd)
	assert.True(t, f.JSON)
	assert.False(t, f.Quiet)
}
