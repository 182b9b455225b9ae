package inspect

import (
	"strings"
	"testing"

	"gosight/process"
	"gosight/remote"
	"gosight/remote/remotetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump_Plain(t *testing.T) {
	data := []byte("ABCDEFGHIJKLMNOPqr")
	out := DumpString(data, DumpOptions{Base: 0x1000})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0000000000001000  41 42 43 44 45 46 47 48 | 49 4a 4b 4c 4d 4e 4f 50  ABCDEFGH IJKLMNOP", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0000000000001010  71 72 "))
	assert.True(t, strings.HasSuffix(lines[1], "  qr"))
}

func TestDump_Pointers(t *testing.T) {
	data := make([]byte, 16)
	data[8], data[12] = 0x10, 0x02 // 0x200000010

	valid := func(p process.ProcessMemoryAddress) bool { return p == 0x200000010 }
	out := DumpString(data, DumpOptions{Pointer: valid})
	assert.Contains(t, out, "-> 0x200000010")

	assert.NotContains(t, DumpString(data, DumpOptions{}), "->")
}

func TestPath_String(t *testing.T) {
	assert.Equal(t, "0x168 -> 0x12C", Path{0x168, 0x12C}.String())
}

func TestFindPaths_ActorLocation(t *testing.T) {
	tg := remotetest.Must(remotetest.New())
	pos := remote.FVector{X: 1234.5, Y: -77, Z: 42}
	actor := tg.AddActor("BP_SmallShipTemplate_C", pos)

	paths, err := FindPaths(tg.Acc, tg.Image.IsValidAddress, actor, VectorNear(pos, 0.01),
		WithStructSize(0x800), WithDepth(1))
	require.NoError(t, err)

	a := tg.Layout.Actor
	assert.Contains(t, paths, Path{a.RootComponent, a.RelativeLocation})
}

func TestFindPaths_NameID(t *testing.T) {
	tg := remotetest.Must(remotetest.New())
	actor := tg.AddActor("BP_SomethingRare_Thing_C", remote.FVector{X: 1})
	id := tg.Intern("BP_SomethingRare_Thing_C")

	paths, err := FindPaths(tg.Acc, tg.Image.IsValidAddress, actor, Value(id), WithDepth(0), WithStructSize(0x100))
	require.NoError(t, err)
	assert.Contains(t, paths, Path{tg.Layout.Actor.ID})
}

func TestFindPaths_BadArgs(t *testing.T) {
	tg := remotetest.Must(remotetest.New())
	_, err := FindPaths(tg.Acc, tg.Image.IsValidAddress, remotetest.ArenaBase, nil)
	assert.Error(t, err)

	_, err = FindPaths(tg.Acc, tg.Image.IsValidAddress, remotetest.ArenaBase, Value(int32(1)), WithAlignment(0))
	assert.Error(t, err)
}
