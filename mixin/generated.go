package mixin

import (
	"fmt"
	"strings"

	"github.com/Alia5/mixremap/classfile"
)

const noDescriptor = "()V"

var boxed = map[string]string{
	"Ljava/lang/Boolean;":   "Z",
	"Ljava/lang/Character;": "C",
	"Ljava/lang/Byte;":      "B",
	"Ljava/lang/Short;":     "S",
	"Ljava/lang/Integer;":   "I",
	"Ljava/lang/Float;":     "F",
	"Ljava/lang/Long;":      "J",
	"Ljava/lang/Double;":    "D",
}

// unbox folds a boxed element type to its primitive code, keeping array
// dimensions.
func unbox(desc string) string {
	dims := strings.LastIndexByte(desc, '[') + 1
	if p, ok := boxed[desc[dims:]]; ok {
		return desc[:dims] + p
	}
	return desc
}

// targetDescriptor derives the descriptor of the method an injector handler
// targets. Only @Inject handlers carry enough shape for this; every other
// kind yields ()V. The bool result is false when the handler has a raw
// CallbackInfoReturnable and the return type had to fall back to Object.
func targetDescriptor(m *classfile.Method, kind InjectorKind) (string, bool, error) {
	if !kind.GeneratesDescriptor() {
		return noDescriptor, true, nil
	}
	sig, err := classfile.ParseMethodSignature(m.Descriptor)
	if err != nil {
		return "", false, err
	}

	var params strings.Builder
	ret := sig.Return.Descriptor()
	exact := true
	for _, p := range sig.Params {
		d := p.Descriptor()
		if d == CallbackInfoDesc {
			ret = "V"
			break
		}
		if d == CallbackInfoReturnableDesc {
			ret, exact, err = returnableType(m)
			if err != nil {
				return "", false, err
			}
			break
		}
		params.WriteString(d)
	}
	return fmt.Sprintf("(%s)%s", params.String(), unbox(ret)), exact, nil
}

// returnableType reads the type argument of the CallbackInfoReturnable
// parameter from the generic signature.
func returnableType(m *classfile.Method) (string, bool, error) {
	if m.Signature == "" {
		return "Ljava/lang/Object;", false, nil
	}
	sig, err := classfile.ParseMethodSignature(m.Signature)
	if err != nil {
		return "", false, err
	}
	want := CallbackInfoReturnableDesc[1 : len(CallbackInfoReturnableDesc)-1]
	for _, p := range sig.Params {
		if p.Class == want && p.Dims == 0 {
			if len(p.Args) == 0 {
				return "Ljava/lang/Object;", false, nil
			}
			return p.Args[0].Descriptor(), true, nil
		}
	}
	return "Ljava/lang/Object;", false, nil
}
