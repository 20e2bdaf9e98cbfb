package display

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("json", false, "")
	return cmd
}

func TestShouldOutputJSON(t *testing.T) {
	t.Setenv(JSONEnvVar, "")
	cmd := newCmd()
	assert.False(t, ShouldOutputJSON(cmd))

	require.NoError(t, cmd.Flags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(cmd))
}

func TestShouldOutputJSONEnvironment(t *testing.T) {
	t.Setenv(JSONEnvVar, "1")
	assert.True(t, ShouldOutputJSON(newCmd()))
	assert.True(t, ShouldOutputJSON(nil))

	// an explicit flag wins
	cmd := newCmd()
	require.NoError(t, cmd.Flags().Set("json", "false"))
	assert.False(t, ShouldOutputJSON(cmd))
}

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, OutputJSON(&buf, map[string]int{"b": 2, "a": 1}))
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": 2\n}\n", buf.String())

	assert.Error(t, OutputJSON(&buf, make(chan int)))
}
