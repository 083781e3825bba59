package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandStructure(t *testing.T) {
	for _, c := range []*cobra.Command{fetchCmd, facetsCmd, browseCmd, exportCmd, validateCmd} {
		t.Run(c.Name(), func(t *testing.T) {
			assert.NotEmpty(t, c.Short)
			assert.Contains(t, c.Long, "Example:")
			assert.Contains(t, c.Long, "goreef "+c.Name())
			assert.NotNil(t, c.RunE)
		})
	}
	assert.NotNil(t, versionCmd.Run)
}

func TestDataCommandsHaveFilterFlags(t *testing.T) {
	for _, c := range []*cobra.Command{fetchCmd, facetsCmd, browseCmd, exportCmd, validateCmd} {
		for _, name := range []string{"campagne", "site", "station", "transect", "type", "q", "no-defaults"} {
			assert.NotNil(t, c.Flags().Lookup(name), "%s is missing --%s", c.Name(), name)
		}
	}
	assert.NotNil(t, fetchCmd.Flags().Lookup("output"))
	assert.NotNil(t, facetsCmd.Flags().Lookup("field"))
	assert.NotNil(t, exportCmd.Flags().Lookup("table"))
	assert.NotNil(t, exportCmd.Flags().Lookup("verify"))
}

func TestRunVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "goreef version "+Version)
	assert.Contains(t, out, "Commit: "+Commit)
	assert.Contains(t, out, "Go version: "+runtime.Version())
	assert.Contains(t, out, "OS/Arch:")
}

func TestFetch_JSON(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusOK, catalogBody)

	out, err := executeCommand(t, "fetch", "--base-url", fc.URL, "--campagne", "2024", "--transect", "0",
		"--no-defaults", "--output", "json")
	require.NoError(t, err)

	q := fc.lastQuery(t)
	assert.Equal(t, []string{"200"}, q["limit"])
	assert.Equal(t, []string{`campagne:"2024"`, `transect:"0"`}, q["refine"])

	var doc struct {
		Filters map[string]string `json:"filters"`
		Total   int64             `json:"total_count"`
		Results []map[string]any  `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, int64(3), doc.Total)
	assert.Len(t, doc.Results, 3)
	assert.Equal(t, map[string]string{"campagne": "2024", "transect": "0"}, doc.Filters)
}

func TestFetch_ConfiguredDefaultsApply(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusOK, catalogBody)

	_, err := executeCommand(t, "fetch", "--base-url", fc.URL, "--limit", "50", "--site", "")
	require.NoError(t, err)

	q := fc.lastQuery(t)
	assert.Equal(t, []string{"50"}, q["limit"])
	// the default site filter is cleared by the empty flag
	assert.Equal(t, []string{`campagne:"2024"`}, q["refine"])
}

func TestFetch_EmptyTransectIsAFilter(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusOK, catalogBody)

	_, err := executeCommand(t, "fetch", "--base-url", fc.URL, "--no-defaults", "--transect", "", "--output", "json")
	require.NoError(t, err)

	q := fc.lastQuery(t)
	assert.Equal(t, []string{`transect:""`}, q["refine"])
}

func TestFetch_TableCapsRows(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusOK, catalogBody)

	out, err := executeCommand(t, "fetch", "--base-url", fc.URL, "--display-cap", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5) // header, rule, two rows, summary
	assert.True(t, strings.HasPrefix(lines[0], "campagne"))
	assert.Equal(t, "2 of 3 records shown (3 fetched)", lines[4])
}

func TestFetch_APIError(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusServiceUnavailable, "maintenance")

	_, err := executeCommand(t, "fetch", "--base-url", fc.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch failed: API 503")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestFetch_UnknownFormat(t *testing.T) {
	_, err := executeCommand(t, "fetch", "--output", "csv")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestFacets(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusOK, catalogBody)

	out, err := executeCommand(t, "facets", "--base-url", fc.URL, "--field", "site", "--field", "transects")
	require.NoError(t, err)
	assert.Equal(t, "sites (2)\n  Ouegoa\n  Poum\ntransects (3)\n  0\n  1\n  2\n", out)
}

func TestFacets_UnknownField(t *testing.T) {
	_, err := executeCommand(t, "facets", "--field", "espece")
	assert.ErrorContains(t, err, `unknown facet "espece"`)
}

func TestOptionKeys(t *testing.T) {
	keys, err := optionKeys([]string{"campagne", "types", " station "})
	require.NoError(t, err)
	assert.Equal(t, []string{"campagnes", "types", "stations"}, keys)

	_, err = optionKeys([]string{"q"})
	assert.Error(t, err, "q has no option list")
}

func TestExport_SQLite(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusOK, catalogBody)
	dbPath := filepath.Join(t.TempDir(), "reef.db")

	out, err := executeCommand(t, "export", "--base-url", fc.URL, "--driver", "sqlite", "--dsn", dbPath,
		"--table", "poissons", "--display-cap", "1", "--verify", "sha256")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 3 of 3 records into poissons (sqlite)")
	assert.Contains(t, out, "Verification (sha256): passed")

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "poissons"`).Scan(&n))
	assert.Equal(t, 3, n, "export writes every fetched row, not the display subset")

	var transect sql.NullString
	require.NoError(t, db.QueryRow(`SELECT "transect" FROM "poissons" WHERE "site" = 'Poum'`).Scan(&transect))
	assert.Equal(t, "0", transect.String)
}

func TestExport_InvalidTable(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusOK, catalogBody)

	_, err := executeCommand(t, "export", "--base-url", fc.URL, "--driver", "sqlite",
		"--dsn", filepath.Join(t.TempDir(), "reef.db"), "--table", "bad name;")
	assert.ErrorContains(t, err, "invalid")
}

func TestExport_AppendsBatches(t *testing.T) {
	fc := newFakeCatalog(t, http.StatusOK, catalogBody)
	dbPath := filepath.Join(t.TempDir(), "reef.db")

	for range 2 {
		out, err := executeCommand(t, "export", "--base-url", fc.URL, "--driver", "sqlite", "--dsn", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "Verification (count): passed")
	}

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var n, batches int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*), COUNT(DISTINCT "exported_at") FROM "rorc_poissons"`).Scan(&n, &batches))
	assert.Equal(t, 6, n)
	assert.Equal(t, 2, batches)
}

func TestExport_UnknownDriver(t *testing.T) {
	_, err := executeCommand(t, "export", "--driver", "oracle")
	assert.ErrorContains(t, err, "export.driver")
}

func TestValidate(t *testing.T) {
	out, err := executeCommand(t, "validate", "--base-url", "http://catalog.local/records", "--station", "ST01")
	require.NoError(t, err)

	assert.Contains(t, out, "=== Configuration Validation ===")
	assert.Contains(t, out, "Endpoint: http://catalog.local/records")
	assert.Contains(t, out, `Filters: campagne="2024" site="Ouegoa" station="ST01"`)
	assert.Contains(t, out, "Request: http://catalog.local/records?")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestValidate_PingSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ping.db")
	path := filepath.Join(t.TempDir(), "goreef.yaml")
	writeConfig(t, path, "export:\n  driver: sqlite\n  dsn: "+dsn+"\n")

	out, err := executeCommand(t, "validate", "--config", path, "--ping")
	require.NoError(t, err)
	assert.Contains(t, out, "Export database: reachable")
}

func TestBrowseExitErr(t *testing.T) {
	live := context.Background()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	killed := fmt.Errorf("%w: %w", tea.ErrProgramKilled, context.Canceled)

	assert.NoError(t, browseExitErr(live, nil))
	assert.NoError(t, browseExitErr(cancelled, killed), "signalled quit is a clean exit")

	err := browseExitErr(live, killed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser failed")

	err = browseExitErr(cancelled, errors.New("tty gone"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tty gone")
}
