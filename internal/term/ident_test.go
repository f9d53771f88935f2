package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentStringFormatsByKind(t *testing.T) {
	cases := []struct {
		id   Ident
		want string
	}{
		{Ident{Kind: Normal, Name: "x", Stamp: 1}, "x$1"},
		{Ident{Kind: Primed, Name: "x", Stamp: 2}, "x'2"},
		{Ident{Kind: Footprint, Name: "x", Stamp: 3}, "x^3"},
		{Ident{Kind: Path, Name: "x", Stamp: 4}, "#x4"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.id.String())
	}
}

func TestIdentClassificationPredicates(t *testing.T) {
	assert.True(t, Ident{Kind: Primed}.IsPrimed())
	assert.True(t, Ident{Kind: Footprint}.IsFootprint())
	assert.True(t, Ident{Kind: Normal}.IsNormal())
	assert.True(t, Ident{Kind: Path}.IsPath())
	assert.False(t, Ident{Kind: Normal}.IsPrimed())
}

func TestGeneratorFreshStampsIncreaseMonotonically(t *testing.T) {
	g := NewGenerator()
	a := g.Fresh(Normal, "x")
	b := g.Fresh(Normal, "x")
	assert.Less(t, a.Stamp, b.Stamp)
	assert.NotEqual(t, a, b)
}

func TestGeneratorSnapshotRestoreRewindsStamp(t *testing.T) {
	g := NewGenerator()
	g.Fresh(Normal, "x")
	snap := g.Snapshot()
	g.Fresh(Normal, "x")
	g.Fresh(Normal, "x")
	g.Restore(snap)
	next := g.Fresh(Normal, "x")
	assert.Equal(t, int(snap)+1, next.Stamp)
}

func TestIdentEqualityRequiresKindNameAndStamp(t *testing.T) {
	a := Ident{Kind: Normal, Name: "x", Stamp: 1}
	b := Ident{Kind: Normal, Name: "x", Stamp: 1}
	c := Ident{Kind: Normal, Name: "x", Stamp: 2}
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
