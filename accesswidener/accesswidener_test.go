package accesswidener_test

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mixremap/accesswidener"
	th "github.com/Alia5/mixremap/internal/testing"
	"github.com/Alia5/mixremap/mappings"
)

const table = "v1\tintermediary\tnamed\n" +
	"CLASS\tnet/minecraft/class_1\tnet/minecraft/Foo\n" +
	"CLASS\tbar/intermediary/Name\tnet/minecraft/Bar\n" +
	"CLASS\tnet/minecraft/class_3\tnet/minecraft/Base\n" +
	"FIELD\tnet/minecraft/class_1\tLbar/intermediary/Name;\tfield_1\tsomeField\n" +
	"METHOD\tnet/minecraft/class_3\t(Lbar/intermediary/Name;)\tmethod_1\tuse\n"

func resolver(t *testing.T) *mappings.Resolver {
	idx, err := mappings.Parse(strings.NewReader(table), slog.Default())
	require.NoError(t, err)
	h, err := mappings.NewHierarchy(map[string][]string{
		"net/minecraft/class_1": {"net/minecraft/class_3"},
	})
	require.NoError(t, err)
	return &mappings.Resolver{Index: idx, Hierarchy: h}
}

func TestRemapLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "header",
			in:   "accessWidener v2 named",
			want: "accessWidener\tv2\tintermediary",
		},
		{
			name: "field",
			in:   "accessible field net/minecraft/Foo someField Lnet/minecraft/Bar;",
			want: "accessible\tfield\tnet/minecraft/class_1\tfield_1\tLbar/intermediary/Name;",
		},
		{
			name: "inherited method",
			in:   "accessible method net/minecraft/Foo use (Lnet/minecraft/Bar;)V",
			want: "accessible\tmethod\tnet/minecraft/class_1\tmethod_1\t(Lbar/intermediary/Name;)V",
		},
		{
			name: "member miss keeps name",
			in:   "mutable field net/minecraft/Foo other I",
			want: "mutable\tfield\tnet/minecraft/class_1\tother\tI",
		},
		{
			name: "field descriptor mismatch",
			in:   "mutable field net/minecraft/Foo someField J",
			want: "mutable\tfield\tnet/minecraft/class_1\tsomeField\tJ",
		},
		{
			name: "same name other descriptor",
			in:   "mutable field net/minecraft/Foo someField I",
			want: "mutable\tfield\tnet/minecraft/class_1\tfield_7\tI",
		},
		{
			name: "unknown owner verbatim",
			in:   "accessible field com/example/Other x I",
			want: "accessible field com/example/Other x I",
		},
		{
			name: "class",
			in:   "extendable class net/minecraft/Bar",
			want: "extendable\tclass\tbar/intermediary/Name",
		},
		{
			name: "transitive class",
			in:   "transitive-accessible class net/minecraft/Foo",
			want: "transitive-accessible\tclass\tnet/minecraft/class_1",
		},
		{
			name: "unknown class keeps name",
			in:   "accessible class com/example/Other",
			want: "accessible\tclass\tcom/example/Other",
		},
		{
			name: "comment",
			in:   "# keep me",
			want: "# keep me",
		},
		{
			name: "crlf",
			in:   "accessible class net/minecraft/Foo\r",
			want: "accessible\tclass\tnet/minecraft/class_1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := accesswidener.Remap([]byte(tt.in), resolver(t), slog.Default())
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestRemapFile(t *testing.T) {
	src := "accessWidener\tv1\tnamed\n" +
		"\n" +
		"accessible class net/minecraft/Foo\n" +
		"accessible field net/minecraft/Foo someField Lnet/minecraft/Bar;\n" +
		"accessible method net/minecraft/Foo use (Lnet/minecraft/Bar;)V\n" +
		"mutable field net/minecraft/Foo gone I\n"
	logger, logs := th.Logger()
	out, stats, err := accesswidener.Remap([]byte(src), resolver(t), logger)
	require.NoError(t, err)

	assert.Equal(t, "accessWidener\tv1\tintermediary\n"+
		"\n"+
		"accessible\tclass\tnet/minecraft/class_1\n"+
		"accessible\tfield\tnet/minecraft/class_1\tfield_1\tLbar/intermediary/Name;\n"+
		"accessible\tmethod\tnet/minecraft/class_1\tmethod_1\t(Lbar/intermediary/Name;)V\n"+
		"mutable\tfield\tnet/minecraft/class_1\tgone\tI\n", string(out))
	assert.Equal(t, accesswidener.Stats{Classes: 1, Fields: 1, Methods: 1, Misses: 1}, stats)
	assert.Contains(t, logs.String(), "member=gone")
}

func TestRemapMalformedDescriptor(t *testing.T) {
	_, _, err := accesswidener.Remap([]byte("accessible method net/minecraft/Foo use (Lbroken"), resolver(t), slog.Default())
	assert.Error(t, err)
}
