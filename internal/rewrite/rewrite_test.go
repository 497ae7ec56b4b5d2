package rewrite_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/mixremap/classfile"
	"github.com/Alia5/mixremap/internal/rewrite"
	th "github.com/Alia5/mixremap/internal/testing"
	"github.com/Alia5/mixremap/mappings"
	"github.com/Alia5/mixremap/mixin"
)

const (
	pkg   = "com/example/mixin"
	table = "v1\tintermediary\tnamed\n" +
		"CLASS\tnet/minecraft/class_1\tnet/minecraft/entity/Entity\n" +
		"FIELD\tnet/minecraft/class_1\tZ\tfield_1\tonGround\n" +
		"METHOD\tnet/minecraft/class_2\t()\tmethod_1\ttick\n"
)

func resolver(t *testing.T) *mappings.Resolver {
	idx, err := mappings.Parse(strings.NewReader(table), slog.Default())
	require.NoError(t, err)
	h, err := mappings.NewHierarchy(map[string][]string{
		"net/minecraft/class_1": {"net/minecraft/class_2"},
	})
	require.NoError(t, err)
	return &mappings.Resolver{Index: idx, Hierarchy: h}
}

type refs struct {
	field, call, foreign, helper uint16
}

func mixinClass(t *testing.T, name string) ([]byte, refs) {
	t.Helper()
	c := th.Class(pkg+"/"+name, "java/lang/Object")
	c.Pool = classfile.NewConstantPool()
	c.Fields = []*classfile.Field{th.Field("onGround", "Z", th.Ann(mixin.ShadowDesc))}
	c.Methods = []*classfile.Method{
		th.Method("<init>", "()V"),
		th.Method("tick", "()V"),
		th.Method("helper", "()V"),
	}
	var r refs
	var err error
	r.field, err = c.Pool.AddMemberRef(classfile.TagFieldref, c.Name, "onGround", "Z")
	require.NoError(t, err)
	r.call, err = c.Pool.AddMemberRef(classfile.TagMethodref, c.Name, "tick", "()V")
	require.NoError(t, err)
	r.foreign, err = c.Pool.AddMemberRef(classfile.TagFieldref, "net/minecraft/class_1", "onGround", "Z")
	require.NoError(t, err)
	r.helper, err = c.Pool.AddMemberRef(classfile.TagMethodref, c.Name, "helper", "()V")
	require.NoError(t, err)
	return th.Encode(t, c), r
}

func refName(t *testing.T, c *classfile.Class, i uint16) string {
	t.Helper()
	_, name, _, err := c.Pool.MemberRef(i)
	require.NoError(t, err)
	return name
}

func jobs(names ...string) []mixin.Job {
	d := &mixin.Descriptor{Class: pkg + "/EntityMixin", Targets: []string{"net/minecraft/class_1"}}
	out := make([]mixin.Job, len(names))
	for i, n := range names {
		out[i] = mixin.Job{Entry: pkg + "/" + n + ".class", Mixin: d}
	}
	return out
}

func TestRun(t *testing.T) {
	first, r := mixinClass(t, "EntityMixin")
	second, _ := mixinClass(t, "EntityMixin$Inner")
	entries := map[string][]byte{
		pkg + "/EntityMixin.class":       first,
		pkg + "/EntityMixin$Inner.class": second,
	}
	read := func(entry string) ([]byte, error) { return entries[entry], nil }

	results, stats, err := rewrite.Run(context.Background(), jobs("EntityMixin", "EntityMixin$Inner"), read, resolver(t),
		rewrite.Options{Package: pkg, Workers: 2}, slog.Default())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, pkg+"/EntityMixin.class", results[0].Entry)
	assert.Equal(t, pkg+"/EntityMixin$Inner.class", results[1].Entry)
	assert.Equal(t, rewrite.Stats{Classes: 2, Fields: 4, Methods: 4}, stats)

	c, err := classfile.Decode(results[0].Data)
	require.NoError(t, err)
	assert.Equal(t, "field_1", c.Fields[0].Name)
	assert.Equal(t, []string{"<init>", "method_1", "helper"}, []string{c.Methods[0].Name, c.Methods[1].Name, c.Methods[2].Name})
	assert.Equal(t, "field_1", refName(t, c, r.field))
	assert.Equal(t, "method_1", refName(t, c, r.call))
	assert.Equal(t, "onGround", refName(t, c, r.foreign), "owners outside the mixin package are kept")
	assert.Equal(t, "helper", refName(t, c, r.helper), "unmapped names are kept")
}

func TestRunErrors(t *testing.T) {
	broken := errors.New("broken entry")
	t.Run("read", func(t *testing.T) {
		read := func(string) ([]byte, error) { return nil, broken }
		_, _, err := rewrite.Run(context.Background(), jobs("A"), read, resolver(t), rewrite.Options{Package: pkg}, slog.Default())
		assert.ErrorIs(t, err, broken)
	})
	t.Run("decode", func(t *testing.T) {
		read := func(string) ([]byte, error) { return []byte{0xca, 0xfe}, nil }
		_, _, err := rewrite.Run(context.Background(), jobs("A"), read, resolver(t), rewrite.Options{Package: pkg}, slog.Default())
		assert.ErrorIs(t, err, classfile.ErrTruncated)
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		read := func(string) ([]byte, error) { return nil, nil }
		_, _, err := rewrite.Run(ctx, jobs("A", "B"), read, resolver(t), rewrite.Options{Package: pkg}, slog.Default())
		assert.ErrorIs(t, err, context.Canceled)
	})
}
