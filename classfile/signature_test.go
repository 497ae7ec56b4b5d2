package classfile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mixremap/classfile"
)

func TestParseMethodSignature(t *testing.T) {
	tests := []struct {
		name       string
		sig        string
		params     []string
		ret        string
		descriptor string
	}{
		{
			name:       "plain descriptor",
			sig:        "(ILjava/lang/String;[[J)V",
			params:     []string{"I", "Ljava/lang/String;", "[[J"},
			ret:        "V",
			descriptor: "(ILjava/lang/String;[[J)V",
		},
		{
			name:       "generic method",
			sig:        "<T:Ljava/lang/Object;>(TT;Ljava/util/List<+TT;>;)TT;",
			params:     []string{"Ljava/lang/Object;", "Ljava/util/List;"},
			ret:        "Ljava/lang/Object;",
			descriptor: "(Ljava/lang/Object;Ljava/util/List;)Ljava/lang/Object;",
		},
		{
			name:       "inner class with arguments",
			sig:        "(Lcom/example/Outer<Ljava/lang/String;>.Inner<*>;)V",
			params:     []string{"Lcom/example/Outer$Inner;"},
			ret:        "V",
			descriptor: "(Lcom/example/Outer$Inner;)V",
		},
		{
			name:       "interface bound and throws",
			sig:        "<E::Ljava/lang/Comparable<TE;>;>()[TE;^Ljava/io/IOException;",
			params:     nil,
			ret:        "[Ljava/lang/Object;",
			descriptor: "()[Ljava/lang/Object;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := classfile.ParseMethodSignature(tt.sig)
			require.NoError(t, err)
			var params []string
			for _, p := range sig.Params {
				params = append(params, p.Descriptor())
			}
			assert.Equal(t, tt.params, params)
			assert.Equal(t, tt.ret, sig.Return.Descriptor())
			assert.Equal(t, tt.descriptor, sig.Descriptor())
		})
	}
}

func TestCallbackInfoReturnableArgument(t *testing.T) {
	sig, err := classfile.ParseMethodSignature(
		"(ILorg/spongepowered/asm/mixin/injection/callback/CallbackInfoReturnable<Ljava/lang/Boolean;>;)V")
	require.NoError(t, err)
	require.Len(t, sig.Params, 2)
	cir := sig.Params[1]
	assert.Equal(t, "org/spongepowered/asm/mixin/injection/callback/CallbackInfoReturnable", cir.Class)
	require.Len(t, cir.Args, 1)
	assert.Equal(t, "Ljava/lang/Boolean;", cir.Args[0].Descriptor())
	assert.True(t, sig.Return.IsVoid())
}

func TestParseTypeSignature(t *testing.T) {
	ts, err := classfile.ParseTypeSignature("Ljava/util/Map<Ljava/lang/String;[I>;")
	require.NoError(t, err)
	assert.Equal(t, "Ljava/util/Map;", ts.Descriptor())
	require.Len(t, ts.Args, 2)
	assert.Equal(t, "[I", ts.Args[1].Descriptor())
}

func TestParseSignatureErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"(I",
		"(V)V",
		"(I)",
		"(Ljava/lang/String)V",
		"(I)VX",
		"(Ljava/util/List<Ljava/lang/String;)V",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := classfile.ParseMethodSignature(s)
			assert.ErrorIs(t, err, classfile.ErrMalformedSignature)
		})
	}
}
