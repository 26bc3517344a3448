package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/episode-relay/internal/sanitize"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "run")
	assert.Contains(t, names, "parse")
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "relaybot")
	assert.Contains(t, out, "parse")
}

func TestParseCommand(t *testing.T) {
	out, err := execute(t, "parse", "Breaking.Bad.S05E14.1080p.mkv", "random text")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	var matched, missed string
	for _, l := range lines {
		if strings.Contains(l, "Breaking.Bad") {
			matched = l
		}
		if strings.Contains(l, "random text") {
			missed = l
		}
	}
	require.NotEmpty(t, matched)
	assert.Contains(t, matched, "Breaking Bad")
	assert.Contains(t, matched, "1080p")
	assert.Contains(t, matched, "bare")
	assert.Contains(t, missed, "no episode")
}

func TestParseCommand_RequiresArgs(t *testing.T) {
	_, err := execute(t, "parse")
	assert.Error(t, err)
}

func TestParseRow(t *testing.T) {
	s := sanitize.New(nil)

	row := parseRow(s, "Naruto Shippuden EP 7 [720p]", false)
	assert.Equal(t, []string{"Naruto Shippuden EP 7 [720p]", "Naruto Shippuden", "-", "07", "720p", "episode-only"}, row)

	row = parseRow(s, "Breaking_Bad_S01E03_720p.mkv", false)
	assert.Equal(t, []string{"Breaking_Bad_S01E03_720p.mkv", "Breaking Bad", "01", "03", "720p", "bare"}, row)

	row = parseRow(s, "Movie 1080p", false)
	assert.Equal(t, "no episode", row[5])
}

func TestRenderTable(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil))

	out := renderTable([]string{"A", "B"}, [][]string{{"x"}})
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "x")
}
