// Package mixin extracts mixin markers from decoded classes and decides which
// classes need their member references rewritten.
package mixin

import "strings"

// Marker annotation descriptors.
const (
	MixinDesc             = "Lorg/spongepowered/asm/mixin/Mixin;"
	ShadowDesc            = "Lorg/spongepowered/asm/mixin/Shadow;"
	AccessorDesc          = "Lorg/spongepowered/asm/mixin/gen/Accessor;"
	InvokerDesc           = "Lorg/spongepowered/asm/mixin/gen/Invoker;"
	InjectDesc            = "Lorg/spongepowered/asm/mixin/injection/Inject;"
	RedirectDesc          = "Lorg/spongepowered/asm/mixin/injection/Redirect;"
	ModifyArgDesc         = "Lorg/spongepowered/asm/mixin/injection/ModifyArg;"
	ModifyArgsDesc        = "Lorg/spongepowered/asm/mixin/injection/ModifyArgs;"
	ModifyVariableDesc    = "Lorg/spongepowered/asm/mixin/injection/ModifyVariable;"
	WrapWithConditionDesc = "Lcom/llamalad7/mixinextras/injector/v2/WrapWithCondition;"

	CallbackInfoDesc           = "Lorg/spongepowered/asm/mixin/injection/callback/CallbackInfo;"
	CallbackInfoReturnableDesc = "Lorg/spongepowered/asm/mixin/injection/callback/CallbackInfoReturnable;"

	// LambdaBase is the super class of compiled closures.
	LambdaBase = "kotlin/jvm/internal/Lambda"
)

var markerPrefixes = []string{
	"Lorg/spongepowered/asm/mixin/",
	"Lcom/llamalad7/mixinextras/",
}

// IsMarker reports whether an annotation type belongs to the mixin family.
func IsMarker(desc string) bool {
	for _, p := range markerPrefixes {
		if strings.HasPrefix(desc, p) {
			return true
		}
	}
	return false
}

// GenKind distinguishes the generated accessor markers.
type GenKind int

const (
	Accessor GenKind = iota
	Invoker
)

func (k GenKind) String() string {
	if k == Invoker {
		return "Invoker"
	}
	return "Accessor"
}

// Desc returns the annotation descriptor of the marker.
func (k GenKind) Desc() string {
	if k == Invoker {
		return InvokerDesc
	}
	return AccessorDesc
}

// InjectorKind is one of the injector markers.
type InjectorKind int

const (
	Inject InjectorKind = iota
	Redirect
	ModifyArg
	ModifyArgs
	ModifyVariable
	WrapWithCondition
)

var injectors = [...]struct {
	name       string
	desc       string
	singleAt   bool
	descriptor bool
}{
	Inject:            {"Inject", InjectDesc, false, true},
	Redirect:          {"Redirect", RedirectDesc, true, false},
	ModifyArg:         {"ModifyArg", ModifyArgDesc, true, false},
	ModifyArgs:        {"ModifyArgs", ModifyArgsDesc, true, false},
	ModifyVariable:    {"ModifyVariable", ModifyVariableDesc, true, false},
	WrapWithCondition: {"WrapWithCondition", WrapWithConditionDesc, false, false},
}

func (k InjectorKind) String() string { return injectors[k].name }

// Desc returns the annotation descriptor of the marker.
func (k InjectorKind) Desc() string { return injectors[k].desc }

// SingleAt reports whether the marker takes exactly one injection point.
func (k InjectorKind) SingleAt() bool { return injectors[k].singleAt }

// GeneratesDescriptor reports whether target method literals are qualified
// with a descriptor derived from the handler.
func (k InjectorKind) GeneratesDescriptor() bool { return injectors[k].descriptor }

// AtKind is an injection point kind.
type AtKind int

const (
	AtHead AtKind = iota
	AtTail
	AtReturn
	AtInvoke
	AtField
	AtJump
)

var atNames = [...]string{"HEAD", "TAIL", "RETURN", "INVOKE", "FIELD", "JUMP"}

func (k AtKind) String() string { return atNames[k] }

// ParseAtKind maps an @At value to its kind.
func ParseAtKind(s string) (AtKind, bool) {
	for i, n := range atNames {
		if n == s {
			return AtKind(i), true
		}
	}
	return 0, false
}

// At is one injection point.
type At struct {
	Kind   AtKind
	Target string
}
