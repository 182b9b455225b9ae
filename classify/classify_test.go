package classify

import (
	"context"
	"testing"

	"gosight/directory"
	"gosight/world"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	got []directory.EntityRecord
}

func (r *recorder) Handle(_ *world.Env, rec directory.EntityRecord) {
	r.got = append(r.got, rec)
}

func TestCanonicalKey(t *testing.T) {
	cases := map[string]string{
		"AI_SmallShipTemplate_C":      "SmallShipTemplate",
		"BP_TreasureChest_Common_C":   "TreasureChest",
		"BP_PlayerPirate_C":           "PlayerPirate",
		"Foo":                         "",
		"BP_Gunpowder":                "",
		"A__B":                        "",
		"_X_":                         "X",
		"BP_IslandService_Default_C_": "IslandService",
	}
	for name, want := range cases {
		assert.Equal(t, want, CanonicalKey(name), name)
	}
}

func TestLookup_ExactThenFallback(t *testing.T) {
	ship, loot, hazard := &recorder{}, &recorder{}, &recorder{}
	reg := NewRegistry().
		Register("SmallShipTemplate", ship).
		Fallback(Rule{Name: "Gunpowder", Match: Contains("Gunpowder"), Handler: loot}).
		Fallback(Rule{Name: "DamageZone", Match: Contains("DamageZone"), Handler: hazard})

	key, h, kind := reg.Lookup("AI_SmallShipTemplate_C")
	assert.Equal(t, "SmallShipTemplate", key)
	assert.Same(t, ship, h)
	assert.Equal(t, Exact, kind)

	// one token: no canonical key, straight to the chain
	key, h, kind = reg.Lookup("Foo")
	assert.Equal(t, NoMatch, kind)
	assert.Nil(t, h)
	assert.Empty(t, key)

	_, h, kind = reg.Lookup("BP_Gunpowder")
	assert.Equal(t, Fallback, kind)
	assert.Same(t, loot, h)

	// first matching rule wins
	_, h, _ = reg.Lookup("BP_GunpowderDamageZone")
	assert.Same(t, loot, h)

	// three tokens but an unknown key still reaches the chain
	key, h, kind = reg.Lookup("BP_Ship_DamageZone_C")
	assert.Equal(t, "DamageZone", key)
	assert.Same(t, hazard, h)
	assert.Equal(t, Fallback, kind)
}

func TestLookup_FooFallsThroughToChain(t *testing.T) {
	var offered []string
	reg := NewRegistry().
		Register("Foo", &recorder{}).
		Fallback(Rule{Name: "spy", Match: func(n string) bool { offered = append(offered, n); return false }})

	_, _, kind := reg.Lookup("Foo")
	assert.Equal(t, NoMatch, kind)
	assert.Equal(t, []string{"Foo"}, offered)
}

func TestDispatch_SetsKeyAndCounts(t *testing.T) {
	ship := &recorder{}
	reg := NewRegistry().
		RegisterAll(ship, "SmallShipTemplate", "LargeShipTemplate").
		Fallback(Rule{Name: "BP_TreasureMap_C", Match: Contains("BP_TreasureMap_C"), Handler: ship})

	d, err := NewDispatcher(reg, "test")
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, d.Dispatch(ctx, &world.Env{}, directory.EntityRecord{Name: "AI_SmallShipTemplate_C", Address: 1}))
	assert.True(t, d.Dispatch(ctx, &world.Env{}, directory.EntityRecord{Name: "BP_TreasureMap_C", Address: 2}))
	assert.False(t, d.Dispatch(ctx, &world.Env{}, directory.EntityRecord{Name: "Foo", Address: 3}))

	require.Len(t, ship.got, 2)
	assert.Equal(t, "SmallShipTemplate", ship.got[0].Key)
	assert.Equal(t, "BP_TreasureMap_C", ship.got[1].Key)
	assert.Equal(t, Stats{Exact: 1, Fallback: 1, Ignored: 1}, d.Stats())
}

func TestDispatch_RecoversPanics(t *testing.T) {
	after := &recorder{}
	reg := NewRegistry().
		Register("Bad", HandlerFunc(func(*world.Env, directory.EntityRecord) { panic("boom") })).
		Register("Good", after)

	d, err := NewDispatcher(reg, "test")
	require.NoError(t, err)

	recs := []directory.EntityRecord{
		{Name: "BP_Bad_C"},
		{Name: "BP_Good_C"},
	}
	for _, r := range recs {
		assert.NotPanics(t, func() { d.Dispatch(context.Background(), &world.Env{}, r) })
	}

	assert.Len(t, after.got, 1)
	assert.EqualValues(t, 1, d.Stats().Panics)
}
