package mixin_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mixremap/classfile"
	th "github.com/Alia5/mixremap/internal/testing"
	"github.com/Alia5/mixremap/mixin"
)

const (
	ci  = "Lorg/spongepowered/asm/mixin/injection/callback/CallbackInfo;"
	cir = "Lorg/spongepowered/asm/mixin/injection/callback/CallbackInfoReturnable;"
)

func cirSig(params, arg string) string {
	return "(" + params + "Lorg/spongepowered/asm/mixin/injection/callback/CallbackInfoReturnable<" + arg + ">;)V"
}

func TestGeneratedDescriptor(t *testing.T) {
	tests := []struct {
		name string
		desc string
		sig  string
		kind mixin.InjectorKind
		want string
	}{
		{name: "void callback", desc: "(IF" + ci + ")V", want: "(IF)V"},
		{name: "captured locals dropped", desc: "(I" + ci + "Ljava/lang/String;)V", want: "(I)V"},
		{name: "boxed return", desc: "(" + cir + ")V", sig: cirSig("", "Ljava/lang/Boolean;"), want: "()Z"},
		{name: "character", desc: "(" + cir + ")V", sig: cirSig("", "Ljava/lang/Character;"), want: "()C"},
		{name: "boxed array", desc: "(" + cir + ")V", sig: cirSig("", "[[Ljava/lang/Integer;"), want: "()[[I"},
		{name: "reference return", desc: "(Lnet/minecraft/A;" + cir + ")V", sig: cirSig("Lnet/minecraft/A;", "Ljava/util/List<Ljava/lang/String;>;"), want: "(Lnet/minecraft/A;)Ljava/util/List;"},
		{name: "type variable return", desc: "(" + cir + ")V", sig: "<T:Ljava/lang/Object;>" + cirSig("", "TT;"), want: "()Ljava/lang/Object;"},
		{name: "raw returnable", desc: "(" + cir + ")V", want: "()Ljava/lang/Object;"},
		{name: "redirect", desc: "(Lnet/minecraft/A;)I", kind: mixin.Redirect, want: "()V"},
		{name: "wrap with condition", desc: "(Lnet/minecraft/A;)Z", kind: mixin.WrapWithCondition, want: "()V"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := th.Method("handler", tt.desc, th.Ann(tt.kind.Desc(),
				th.Elem("method", th.Strings("target")),
				th.Elem("at", classfile.ArrayValue(at("HEAD", "")))))
			m.Signature = tt.sig
			s := mixin.NewScanner(pkg, slog.Default())
			_, err := s.Scan(pkg+"/M.class", mixinClass("M", nil, []*classfile.Method{m}))
			require.NoError(t, err)
			require.Len(t, s.Mixins()[0].Pending, 1)
			entry := s.Mixins()[0].Pending[0].(mixin.InjectionEntry)
			assert.Equal(t, tt.want, entry.Descriptor)
		})
	}
}

func TestGeneratedDescriptorMalformed(t *testing.T) {
	m := th.Method("handler", "("+cir+")V", th.Ann(mixin.InjectDesc,
		th.Elem("method", th.Strings("target")),
		th.Elem("at", classfile.ArrayValue(at("HEAD", "")))))
	m.Signature = "(Lorg/spongepowered/asm/mixin/injection/callback/CallbackInfoReturnable<Ljava/lang/Boolean;"
	s := mixin.NewScanner(pkg, slog.Default())
	_, err := s.Scan(pkg+"/M.class", mixinClass("M", nil, []*classfile.Method{m}))
	assert.ErrorIs(t, err, classfile.ErrMalformedSignature)
}
