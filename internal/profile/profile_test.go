package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sage/internal/datatype"
	"github.com/agentic-research/sage/internal/document"
	"github.com/agentic-research/sage/internal/graph"
	"github.com/agentic-research/sage/internal/ingest"
)

func ingestJSON(t *testing.T, src string) *graph.Scope {
	t.Helper()
	doc, err := document.JSON{}.Parse([]byte(src))
	require.NoError(t, err)
	cfg := ingest.DefaultConfig()
	cfg.IDs = graph.SequentialIDs("s")
	root, err := ingest.NewEngine(cfg).Ingest(doc)
	require.NoError(t, err)
	return root
}

func TestAnalyze_Paths(t *testing.T) {
	root := ingestJSON(t, `{
		"@type": "Movie",
		"name": "Avatar",
		"director": {"@type": "Person", "name": "James Cameron"},
		"actor": [{"name": "Sam Worthington"}, {"name": "Zoe Saldana"}],
		"genre": ["Action", "Sci-Fi"],
		"year": 2009
	}`)
	p := Analyze(root)

	assert.Equal(t, 6, p.Scopes)
	assert.Equal(t, []string{"actor[].name", "director.name", "genre[]", "name", "year"}, p.Paths())

	actors := p.Fields["actor[].name"]
	require.NotNil(t, actors)
	assert.Equal(t, 2, actors.Count)
	assert.Equal(t, 2, actors.Cardinality)
	assert.Equal(t, uint64(2), actors.Owners.GetCardinality())
	assert.Equal(t, datatype.Text, actors.Kind())

	year := p.Fields["year"]
	assert.Equal(t, datatype.Integer, year.Kind())
	assert.False(t, year.Mixed())
	assert.True(t, year.Owners.Contains(0))
}

func TestAnalyze_MixedKinds(t *testing.T) {
	root := ingestJSON(t, `[{"v": 1}, {"v": "x"}, {"v": 2}, {"v": "2024-01-02"}]`)
	p := Analyze(root)

	v := p.Fields["[].v"]
	require.NotNil(t, v)
	assert.Equal(t, 4, v.Count)
	assert.True(t, v.Mixed())
	assert.Equal(t, datatype.Integer, v.Kind())
	assert.Equal(t, 1, v.Kinds[datatype.Timestamp])
}

func TestAnalyze_Enum(t *testing.T) {
	root := ingestJSON(t, `{"items": [
		{"status": "open"}, {"status": "open"}, {"status": "closed"},
		{"status": "closed"}, {"status": "open"}, {"status": "open"}
	], "ids": ["a", "b", "c"]}`)
	p := Analyze(root)

	assert.True(t, p.Fields["items[].status"].Enum())
	assert.False(t, p.Fields["ids[]"].Enum())
}

func TestAnalyze_EmptyTree(t *testing.T) {
	p := Analyze(graph.NewScope(""))
	assert.Equal(t, 1, p.Scopes)
	assert.Empty(t, p.Paths())
	assert.Empty(t, p.Sorted())
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a", join("", "a", false))
	assert.Equal(t, "a.b", join("a", "b", false))
	assert.Equal(t, "a[]", join("a", "3", true))
	assert.Equal(t, "[]", join("", "0", true))
}
