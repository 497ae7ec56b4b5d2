package mappings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mixremap/mappings"
)

func TestWalk(t *testing.T) {
	tests := []struct {
		name  string
		edges map[string][]string
		start string
		want  []string
	}{
		{
			name:  "chain",
			edges: map[string][]string{"A": {"B"}, "B": {"C"}},
			start: "A",
			want:  []string{"A", "B", "C"},
		},
		{
			name:  "depth first in declared order",
			edges: map[string][]string{"A": {"B", "I"}, "B": {"C"}, "I": {"J"}},
			start: "A",
			want:  []string{"A", "B", "C", "I", "J"},
		},
		{
			name:  "diamond visits once",
			edges: map[string][]string{"A": {"B", "C"}, "B": {"D"}, "C": {"D"}},
			start: "A",
			want:  []string{"A", "B", "D", "C"},
		},
		{
			name:  "cycle terminates",
			edges: map[string][]string{"A": {"B"}, "B": {"A"}},
			start: "A",
			want:  []string{"A", "B"},
		},
		{
			name:  "unknown class",
			edges: map[string][]string{"A": {"B"}},
			start: "Z",
			want:  []string{"Z"},
		},
		{
			name:  "wrapped start",
			edges: map[string][]string{"A": {"B"}},
			start: "LA;",
			want:  []string{"A", "B"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := mappings.NewHierarchy(tt.edges)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Walk(tt.start))
			assert.Equal(t, tt.want, h.Walk(tt.start), "cached walk is identical")
		})
	}
}

func TestResolverWalksHierarchy(t *testing.T) {
	idx := parse(t, "v1\tintermediary\tnamed\n"+
		"FIELD\tnet/minecraft/C\tI\tfield_7\tsize\n"+
		"METHOD\tnet/minecraft/C\t()I\tmethod_7\tgetSize\n"+
		"METHOD\tnet/minecraft/A\t()V\tmethod_1\ttick\n")
	h, err := mappings.NewHierarchy(map[string][]string{
		"net/minecraft/A": {"net/minecraft/B"},
		"net/minecraft/B": {"net/minecraft/C"},
	})
	require.NoError(t, err)
	r := &mappings.Resolver{Index: idx, Hierarchy: h}

	f := r.Field("size", "net/minecraft/A")
	require.NotNil(t, f)
	assert.Equal(t, "field_7", f.Intermediary)

	m, err := r.Method("getSize()I", "net/minecraft/A")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "method_7", m.Intermediary)

	m, err = r.Method("tick", "Lnet/minecraft/A;")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "method_1", m.Intermediary)

	assert.Nil(t, r.Field("missing", "net/minecraft/A"))
	m, err = r.Method("missing", "net/minecraft/A")
	require.NoError(t, err)
	assert.Nil(t, m)

	direct := &mappings.Resolver{Index: idx}
	assert.Nil(t, direct.Field("size", "net/minecraft/A"), "no hierarchy means owner-only lookup")
}
