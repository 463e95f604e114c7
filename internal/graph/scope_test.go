package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sage/internal/datatype"
)

func text(s string) Entity { return FromPrimitive(datatype.NewText(s)) }
func num(i int64) Entity   { return FromPrimitive(datatype.NewInt(i)) }

func TestEntity_Variants(t *testing.T) {
	e := num(2009)
	assert.False(t, e.IsScope())
	v, err := e.AsPrimitive()
	require.NoError(t, err)
	assert.Equal(t, datatype.Integer, v.Kind())

	_, err = e.AsScopeID()
	require.ErrorIs(t, err, ErrTypeMismatch)

	ref := FromScope("s1")
	assert.True(t, ref.IsScope())
	id, err := ref.AsScopeID()
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	_, err = ref.AsPrimitive()
	require.ErrorIs(t, err, ErrTypeMismatch)

	assert.True(t, text("a").Equal(text("a")))
	assert.False(t, text("a").Equal(ref))
	assert.Equal(t, `"a"`, text("a").String())
	assert.Equal(t, "<s1>", ref.String())
}

func TestScope_NewAllocatesUniqueIDs(t *testing.T) {
	a := NewScope("Thing")
	b := NewScope("Thing")
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "Thing", a.TypeTag())
}

func TestScope_InsertionOrder(t *testing.T) {
	s := NewScope("")
	require.NoError(t, s.SetProperty("a", num(1)))
	require.NoError(t, s.SetProperty("b", num(2)))
	assert.Equal(t, []string{"a", "b"}, s.Keys())
}

func TestScope_OverwriteKeepsPosition(t *testing.T) {
	s := NewScope("")
	require.NoError(t, s.SetProperty("a", num(1)))
	require.NoError(t, s.SetProperty("b", num(2)))
	require.NoError(t, s.SetProperty("a", num(2)))

	assert.Equal(t, []string{"a", "b"}, s.Keys())
	e, ok := s.Property("a")
	require.True(t, ok)
	assert.True(t, e.Equal(num(2)))
	assert.Equal(t, 2, s.Len())
}

func TestScope_AddChildScope(t *testing.T) {
	s := NewScopeWithIDs("Movie", SequentialIDs("s"))
	child, err := s.AddChildScope("director", "Person")
	require.NoError(t, err)
	require.NoError(t, child.SetProperty("name", text("James Cameron")))

	e, ok := s.Property("director")
	require.True(t, ok)
	id, err := e.AsScopeID()
	require.NoError(t, err)
	assert.Equal(t, child.ID(), id)

	got, ok := s.Child(id)
	require.True(t, ok)
	assert.Same(t, child, got)
	assert.Equal(t, "Person", got.TypeTag())
	assert.Equal(t, []*Scope{child}, s.Children())
}

func TestScope_OverwritingChildReleasesIt(t *testing.T) {
	s := NewScopeWithIDs("", SequentialIDs("s"))
	old, err := s.AddChildScope("x", "")
	require.NoError(t, err)

	require.NoError(t, s.SetProperty("x", num(1)))
	_, ok := s.Child(old.ID())
	assert.False(t, ok)
	assert.Empty(t, s.Children())
	assert.Equal(t, []string{"x"}, s.Keys())
}

func TestScope_RejectsForeignReferences(t *testing.T) {
	s := NewScope("")
	err := s.SetProperty("x", FromScope("not-mine"))
	require.ErrorIs(t, err, ErrDanglingReference)
	assert.False(t, s.HasProperty("x"))

	child, err := s.AddChildScope("a", "")
	require.NoError(t, err)
	err = s.SetProperty("b", FromScope(child.ID()))
	require.ErrorIs(t, err, ErrDanglingReference)
}

func TestScope_SealedRejectsMutation(t *testing.T) {
	s := NewScope("")
	child, err := s.AddChildScope("c", "")
	require.NoError(t, err)
	s.Seal()

	assert.True(t, s.Sealed())
	assert.True(t, child.Sealed())
	require.ErrorIs(t, s.SetProperty("a", num(1)), ErrSealed)
	require.ErrorIs(t, child.SetProperty("a", num(1)), ErrSealed)
	require.ErrorIs(t, s.SetTypeTag("X"), ErrSealed)
	_, err = s.AddChildScope("d", "")
	require.ErrorIs(t, err, ErrSealed)
}

func TestScope_SealBottomUp(t *testing.T) {
	root := NewScope("")
	sealedChild, err := root.AddChildScope("done", "")
	require.NoError(t, err)
	pending, err := root.AddChildScope("pending", "")
	require.NoError(t, err)

	// Build a deep chain and seal it leaf first, the way ingestion does.
	chain := []*Scope{sealedChild}
	for i := 0; i < 5000; i++ {
		next, err := chain[len(chain)-1].AddChildScope("n", "")
		require.NoError(t, err)
		chain = append(chain, next)
	}
	for i := len(chain) - 1; i >= 0; i-- {
		chain[i].Seal()
	}
	assert.False(t, root.Sealed())
	assert.False(t, pending.Sealed())

	root.Seal()
	root.Seal()
	assert.True(t, root.Sealed())
	assert.True(t, pending.Sealed())
	for _, s := range chain {
		assert.True(t, s.Sealed())
	}
}

func TestScope_DepthAndLeaves(t *testing.T) {
	s := NewScope("")
	require.NoError(t, s.SetProperty("a", num(1)))
	c, _ := s.AddChildScope("c", "")
	require.NoError(t, c.SetProperty("b", num(2)))
	d, _ := c.AddChildSequence("d")
	require.NoError(t, d.SetProperty("0", num(3)))

	assert.Equal(t, 3, s.Depth())
	assert.Equal(t, 3, s.Leaves())
	assert.True(t, d.IsSequence())
}

func TestSequentialIDs(t *testing.T) {
	ids := SequentialIDs("n")
	assert.Equal(t, "n1", ids())
	assert.Equal(t, "n2", ids())
}
