package adapters

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalPromptAnswers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		prompts int
	}{
		{name: "y", input: "y\n", want: true, prompts: 1},
		{name: "YES", input: "YES\n", want: true, prompts: 1},
		{name: "n", input: "n\n", want: false, prompts: 1},
		{name: "No with spaces", input: "  No \n", want: false, prompts: 1},
		{name: "retries until valid", input: "maybe\n\nyep\ny\n", want: true, prompts: 4},
		{name: "last line without newline", input: "n", want: false, prompts: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			prompt := NewTerminalPromptAdapter(strings.NewReader(tt.input), &out)
			got, err := prompt.Confirm(t.Context(), "Delete Beta?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.prompts, strings.Count(out.String(), "Delete Beta? [y/n]: "))
		})
	}
}

func TestTerminalPromptEndOfInputAborts(t *testing.T) {
	var out bytes.Buffer
	prompt := NewTerminalPromptAdapter(strings.NewReader("what\n"), &out)
	got, err := prompt.Confirm(t.Context(), "Delete Beta?")
	require.Error(t, err)
	assert.False(t, got)
	assert.Contains(t, err.Error(), "confirmation aborted")
}

func TestTerminalPromptKeepsBufferedAnswers(t *testing.T) {
	var out bytes.Buffer
	prompt := NewTerminalPromptAdapter(strings.NewReader("y\nn\n"), &out)
	first, err := prompt.Confirm(t.Context(), "Delete Alpha?")
	require.NoError(t, err)
	second, err := prompt.Confirm(t.Context(), "Delete Beta?")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, []bool{first, second})
}

func TestTerminalPromptCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	var out bytes.Buffer
	_, err := NewTerminalPromptAdapter(strings.NewReader("y\n"), &out).Confirm(ctx, "Delete?")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}
