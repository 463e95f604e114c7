package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sage/internal/datatype"
)

// buildMovie assembles the tree ingestion would produce for
//
//	{"@type":"Movie","name":"Avatar","director":{"@type":"Person","name":"James Cameron"},
//	 "genre":["Action","Sci-Fi"],"year":2009,"released":"2009-12-18","rating":7.8,"color":true}
func buildMovie(t *testing.T) *Scope {
	t.Helper()
	root := NewScopeWithIDs("Movie", SequentialIDs("s"))
	require.NoError(t, root.SetProperty("name", text("Avatar")))

	dir, err := root.AddChildScope("director", "Person")
	require.NoError(t, err)
	require.NoError(t, dir.SetProperty("name", text("James Cameron")))

	genre, err := root.AddChildSequence("genre")
	require.NoError(t, err)
	require.NoError(t, genre.SetProperty("0", text("Action")))
	require.NoError(t, genre.SetProperty("1", text("Sci-Fi")))

	require.NoError(t, root.SetProperty("year", num(2009)))
	require.NoError(t, root.SetProperty("released", FromPrimitive(datatype.Classify("2009-12-18"))))
	require.NoError(t, root.SetProperty("rating", FromPrimitive(datatype.NewFloat(7.8))))
	require.NoError(t, root.SetProperty("color", FromPrimitive(datatype.NewBool(true))))
	root.Seal()
	return root
}

func TestScope_RenderGolden(t *testing.T) {
	want := `Movie<s1> : {
  "name" : "Avatar",
  "director" : Person<s2> : {
    "name" : "James Cameron"
  },
  "genre" : <s3> : {
    "0" : "Action",
    "1" : "Sci-Fi"
  },
  "year" : 2009,
  "released" : "2009-12-18",
  "rating" : 7.8,
  "color" : true
}`
	root := buildMovie(t)
	assert.Equal(t, want, root.Render())
	assert.Equal(t, root.Render(), root.Render(), "render must be deterministic")
}

func TestScope_RenderEmpty(t *testing.T) {
	s := NewScopeWithIDs("Thing", SequentialIDs("e"))
	assert.Equal(t, "Thing<e1> : {}", s.Render())
}

func TestScope_RenderEscapesKeys(t *testing.T) {
	s := NewScopeWithIDs("", SequentialIDs("q"))
	require.NoError(t, s.SetProperty(`say "hi"`, text("line\nbreak")))
	assert.Equal(t, "<q1> : {\n  \"say \\\"hi\\\"\" : \"line\\nbreak\"\n}", s.Render())
}

func TestScope_Export(t *testing.T) {
	root := buildMovie(t)
	got, ok := root.Export().(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "s1", got[ScopeKey])
	assert.Equal(t, "Movie", got[TypeKey])
	assert.Equal(t, "Avatar", got["name"])
	assert.Equal(t, int64(2009), got["year"])
	assert.Equal(t, "2009-12-18", got["released"])
	assert.Equal(t, []any{"Action", "Sci-Fi"}, got["genre"])

	dir, ok := got["director"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Person", dir[TypeKey])
	assert.Equal(t, "James Cameron", dir["name"])
}

func TestScope_Query(t *testing.T) {
	root := buildMovie(t)

	res, err := root.Query("$.director.name")
	require.NoError(t, err)
	assert.Equal(t, []any{"James Cameron"}, res)

	res, err = root.Query("$.genre[1]")
	require.NoError(t, err)
	assert.Equal(t, []any{"Sci-Fi"}, res)

	res, err = root.Query("$.missing")
	require.NoError(t, err)
	assert.Empty(t, res)

	_, err = root.Query("$[")
	require.Error(t, err)
}
