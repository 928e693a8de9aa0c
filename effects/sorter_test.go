package effects

import (
	"reflect"
	"testing"
)

func testTable() *Table {
	return NewTable(map[string]Descriptor{
		"pre":   {Tier: 0, Kind: KindLibrary},
		"color": {Tier: 1, Kind: KindLibrary},
		"mask":  {Tier: 3, Kind: KindCustom},
		"glow":  {Tier: 5, Kind: KindCustom},
		"trail": {Tier: 6, Kind: KindCustom},
	})
}

func TestSortByTierOrdersAscending(t *testing.T) {
	table := testTable()
	got := SortByTier([]string{"trail", "pre", "glow", "color"}, table)
	want := []string{"pre", "color", "glow", "trail"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByTier = %v, want %v", got, want)
	}
}

func TestSortByTierPermutationIndependence(t *testing.T) {
	table := testTable()
	ids := []string{"pre", "color", "mask", "glow", "trail"}
	perms := [][]string{
		{"trail", "glow", "mask", "color", "pre"},
		{"mask", "pre", "trail", "color", "glow"},
		{"color", "trail", "pre", "glow", "mask"},
	}
	want := SortByTier(ids, table)
	for _, p := range perms {
		if got := SortByTier(p, table); !reflect.DeepEqual(got, want) {
			t.Errorf("permutation %v sorted to %v, want %v", p, got, want)
		}
	}
}

func TestSortByTierTiesPreserveToggleOrder(t *testing.T) {
	table := NewTable(map[string]Descriptor{
		"a": {Tier: 2},
		"b": {Tier: 2},
		"c": {Tier: 1},
	})
	got := SortByTier([]string{"b", "a", "c"}, table)
	want := []string{"c", "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByTier = %v, want %v (ties keep operator order)", got, want)
	}
}

func TestSortByTierUnknownDefaultsToMiddle(t *testing.T) {
	table := testTable()
	got := SortByTier([]string{"not-a-real-effect", "pre", "trail"}, table)
	want := []string{"pre", "not-a-real-effect", "trail"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortByTier = %v, want %v (unknown id at tier %d)", got, want, DefaultTier)
	}
	if tier := table.TierFor("not-a-real-effect"); tier != DefaultTier {
		t.Errorf("TierFor(unknown) = %d, want %d", tier, DefaultTier)
	}
}

func TestSortByTierDoesNotMutateInput(t *testing.T) {
	table := testTable()
	ids := []string{"trail", "pre"}
	_ = SortByTier(ids, table)
	if !reflect.DeepEqual(ids, []string{"trail", "pre"}) {
		t.Errorf("input slice mutated: %v", ids)
	}
}
