package commands_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundview-dev/fundview/internal/commands"
	"github.com/fundview-dev/fundview/internal/config"
	"github.com/fundview-dev/fundview/internal/loadlog"
)

func runFundview(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// setupProject writes a config reading the fixture feed and returns its
// path and the load history path.
func setupProject(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	fixture, err := filepath.Abs(filepath.Join("..", "..", "testdata", "submissions.csv"))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Feed.Source = fixture
	cfg.History.Path = filepath.Join(dir, "logs", "load-history.csv")
	cfg.Logging.Level = "error"

	path := filepath.Join(dir, config.FileName)
	require.NoError(t, config.Save(path, cfg))
	return path, cfg.History.Path
}

func readCSV(t *testing.T, out string) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestInit_CreatesConfig(t *testing.T) {
	dir := t.TempDir()
	out, err := runFundview(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized fundview project")

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "future", cfg.DefaultFund)

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runFundview(t, "init", dir)
	require.NoError(t, err)

	_, err = runFundview(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runFundview(t, "init", dir, "--force")
	assert.NoError(t, err)
}

func TestFunds(t *testing.T) {
	cfgPath, _ := setupProject(t)
	out, err := runFundview(t, "funds", "--config", cfgPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, []string{"KEY", "NAME", "DEFAULT"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"future", "Long-Term", "Future", "Fund", "*"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"animal", "Animal", "Welfare", "Fund"}, strings.Fields(lines[3]))
}

func TestFunds_NoConfigUsesDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	out, err := runFundview(t, "funds")
	require.NoError(t, err)
	assert.Contains(t, out, "Global Health and Development Fund")
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := runFundview(t, "funds", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRows_DefaultFund(t *testing.T) {
	cfgPath, _ := setupProject(t)
	out, err := runFundview(t, "rows", "--config", cfgPath)
	require.NoError(t, err)

	records := readCSV(t, out)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"id", "firstName", "lastName", "fund", "payoutAmount", "rating", "submissionDate", "summary", "Reviewer"}, records[0])
	assert.Equal(t, []string{"2", "Raj", "Patel", "Long-Term Future Fund", "12000", "4.5", "2023-01-09", "AI safety research stipend", "Cy"}, records[1])
	assert.Equal(t, "", records[3][6])
}

func TestRows_Selection(t *testing.T) {
	cfgPath, _ := setupProject(t)

	tests := []struct {
		name    string
		args    []string
		wantIDs []string
	}{
		{"fund key", []string{"--fund", "animal"}, []string{"1", "7"}},
		{"fund name", []string{"--fund", "Global Health and Development Fund"}, []string{"5"}},
		{"all funds", []string{"--all-funds"}, []string{"1", "2", "3", "4", "5", "6", "7"}},
		{"rating above", []string{"--rating-above", "0"}, []string{"2", "6"}},
		{"quick filter", []string{"--all-funds", "--quick", "research"}, []string{"2", "7"}},
		{"quick filter and", []string{"--all-funds", "--quick", "research SHRIMP"}, []string{"7"}},
		{"no match", []string{"--all-funds", "--rating-above", "100"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"rows", "--config", cfgPath}, tt.args...)
			out, err := runFundview(t, args...)
			require.NoError(t, err)

			records := readCSV(t, out)
			var ids []string
			for _, rec := range records[1:] {
				ids = append(ids, rec[0])
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestRows_BadRating(t *testing.T) {
	cfgPath, _ := setupProject(t)
	_, err := runFundview(t, "rows", "--config", cfgPath, "--rating-above", "high")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--rating-above")
}

func TestRows_FeedOverride(t *testing.T) {
	cfgPath, _ := setupProject(t)
	feedPath := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(feedPath, []byte("ID,Fund,Rating\n9,Long-Term Future Fund,2\n"), 0o644))

	out, err := runFundview(t, "rows", "--config", cfgPath, "--feed", feedPath)
	require.NoError(t, err)
	records := readCSV(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, "9", records[1][0])
}

func TestSummary(t *testing.T) {
	cfgPath, _ := setupProject(t)
	out, err := runFundview(t, "summary", "--config", cfgPath, "--all-funds")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, []string{"fund", "rows", "size(fund)", "sum(payoutAmount)", "median(rating)"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Animal", "Welfare", "Fund", "2", "2", "$2,500", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Long-Term", "Future", "Fund", "3", "3", "$20,500", "4.5"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"TOTAL", "7", "7", "$24,000", "2.5"}, strings.Fields(lines[5]))
}

func TestSummary_GroupBy(t *testing.T) {
	cfgPath, _ := setupProject(t)
	out, err := runFundview(t, "summary", "--config", cfgPath, "--all-funds", "--group-by", "rating")
	require.NoError(t, err)
	assert.Contains(t, out, "(no value)")

	_, err = runFundview(t, "summary", "--config", cfgPath, "--group-by", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown group-by field")
}

func TestHistory_RecordsLoads(t *testing.T) {
	cfgPath, historyPath := setupProject(t)
	_, err := runFundview(t, "rows", "--config", cfgPath)
	require.NoError(t, err)
	_, err = runFundview(t, "rows", "--config", cfgPath, "--feed", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	entries, err := loadlog.Read(historyPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, loadlog.StatusOK, entries[0].Status)
	assert.Equal(t, 7, entries[0].Rows)
	assert.Equal(t, loadlog.StatusFailed, entries[1].Status)

	out, err := runFundview(t, "history", "--config", cfgPath, "--limit", "1")
	require.NoError(t, err)
	records := readCSV(t, out)
	require.Len(t, records, 2)
	assert.Equal(t, strings.Split(loadlog.Header, ","), records[0])
	assert.Equal(t, loadlog.StatusFailed, records[1][5])
}

func TestHistory_Empty(t *testing.T) {
	cfgPath, _ := setupProject(t)
	out, err := runFundview(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, loadlog.Header+"\n", out)
}
