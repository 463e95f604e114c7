package cmd

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sage/internal/source"
)

var errWriteFailed = errors.New("write failed")

const movie = `{
  "@context": "https://schema.org",
  "@type": "Movie",
  "name": "Avatar",
  "director": {"@type": "Person", "name": "James Cameron"},
  "actor": [{"@type": "Person", "name": "Sam Worthington"}, {"@type": "Person", "name": "Zoe Saldana"}],
  "year": 2009
}`

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// run executes the root command with fresh flag state and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := runTo(t, &out, args...)
	return out.String(), err
}

func runTo(t *testing.T, out io.Writer, args ...string) error {
	t.Helper()
	t.Chdir(t.TempDir())
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	var errOut bytes.Buffer
	rootCmd.SetOut(out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// failingWriter rejects every write after the first n bytes.
type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		written := w.n
		w.n = 0
		return written, errWriteFailed
	}
	w.n -= len(p)
	return len(p), nil
}

func TestRender(t *testing.T) {
	path := writeFixture(t, "movie.jsonld", movie)
	out, err := run(t, "render", "--stable-ids", "--skip", "@context", path)
	require.NoError(t, err)
	assert.Equal(t, `Movie<s1> : {
  "name" : "Avatar",
  "director" : Person<s2> : {
    "name" : "James Cameron"
  },
  "actor" : <s3> : {
    "0" : Person<s4> : {
      "name" : "Sam Worthington"
    },
    "1" : Person<s5> : {
      "name" : "Zoe Saldana"
    }
  },
  "year" : 2009
}
`, out)
}

func TestRender_YAMLWithCustomTypeKey(t *testing.T) {
	path := writeFixture(t, "event.yaml", "kind: Event\nname: Launch\nwhen: 2024-05-01\n")
	out, err := run(t, "render", "--stable-ids", "--type-key", "kind", path)
	require.NoError(t, err)
	assert.Equal(t, "Event<s1> : {\n  \"name\" : \"Launch\",\n  \"when\" : \"2024-05-01\"\n}\n", out)
}

func TestRender_MissingFile(t *testing.T) {
	_, err := run(t, "render", filepath.Join(t.TempDir(), "nope.json"))
	var ioErr *source.IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestRender_MaxDepth(t *testing.T) {
	path := writeFixture(t, "deep.json", `{"a":{"b":{"c":1}}}`)
	_, err := run(t, "render", "--max-depth", "2", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/a/b")
}

func TestRender_InvalidConfig(t *testing.T) {
	path := writeFixture(t, "m.json", `{}`)
	_, err := run(t, "render", "--log-level", "loud", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	_, err = run(t, "render", "--max-depth", "100000000", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest.max_depth")
}

func TestRender_ConfigFile(t *testing.T) {
	cfgPath := writeFixture(t, "sage.yaml", "ingest:\n  type_key: kind\n  stable_ids: true\n")
	path := writeFixture(t, "m.json", `{"kind":"Thing","x":1}`)
	out, err := run(t, "render", "--config", cfgPath, path)
	require.NoError(t, err)
	assert.Equal(t, "Thing<s1> : {\n  \"x\" : 1\n}\n", out)
}

func TestQuery(t *testing.T) {
	path := writeFixture(t, "movie.json", movie)
	out, err := run(t, "query", path, "$.actor[*].name")
	require.NoError(t, err)
	assert.JSONEq(t, `["Sam Worthington","Zoe Saldana"]`, out)

	out, err = run(t, "query", path, "$.nothing")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	_, err = run(t, "query", path, "$[")
	require.Error(t, err)
}

func TestTypes(t *testing.T) {
	path := writeFixture(t, "movie.json", movie)

	out, err := run(t, "types", path)
	require.NoError(t, err)
	assert.Equal(t, "Movie\t1\nPerson\t3\n", out)

	out, err = run(t, "types", "--stable-ids", path, "Person")
	require.NoError(t, err)
	assert.Equal(t, "s2\tPerson\t/director\ns4\tPerson\t/actor/0\ns5\tPerson\t/actor/1\n", out)
}

func TestStats(t *testing.T) {
	path := writeFixture(t, "movie.json", movie)
	out, err := run(t, "stats", path)
	require.NoError(t, err)
	assert.Contains(t, out, "scopes:     5\n")
	assert.Contains(t, out, "properties: 6\n")
	assert.Contains(t, out, "depth:      3\n")
	assert.Contains(t, out, "type Person: 3\n")
	assert.Contains(t, out, "actor[].name")
	assert.Contains(t, out, "FIELD")
}

func TestStats_ReportsWriteErrors(t *testing.T) {
	path := writeFixture(t, "movie.json", movie)
	for _, limit := range []int{0, 10, 60} {
		err := runTo(t, &failingWriter{n: limit}, "stats", path)
		require.ErrorIs(t, err, errWriteFailed, "limit %d", limit)
	}
}

func TestExport(t *testing.T) {
	path := writeFixture(t, "movie.json", movie)
	dbPath := filepath.Join(t.TempDir(), "out.db")
	require.NoError(t, os.WriteFile(dbPath, []byte("stale"), 0o644))

	out, err := run(t, "export", "--stable-ids", path, dbPath)
	require.NoError(t, err)
	assert.Equal(t, "wrote 5 scopes and 6 properties to "+dbPath+"\n", out)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var tag string
	require.NoError(t, db.QueryRow(`SELECT type_tag FROM scopes WHERE id = 's2'`).Scan(&tag))
	assert.Equal(t, "Person", tag)
}
