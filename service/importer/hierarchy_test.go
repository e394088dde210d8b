package importer

import "testing"

func TestResolveHierarchyLeaves_MultipliesThroughAncestors(t *testing.T) {
	rows := []HierarchyRow{
		{Level: 0, PartNumber: "TOP", Qty: 1},
		{Level: 1, PartNumber: "ASM-A", Qty: 2},
		{Level: 2, PartNumber: "P-1", Qty: 3},
		{Level: 2, PartNumber: "SUB", Qty: 2},
		{Level: 3, PartNumber: "P-2", Qty: 5},
		{Level: 1, PartNumber: "ASM-B", Qty: 1},
		{Level: 2, PartNumber: "P-3", Qty: 4},
	}
	leaves := ResolveHierarchyLeaves(rows)
	want := map[string]int{
		"P-1": 6,  // 3 * 2
		"P-2": 20, // 5 * 2 * 2
		"P-3": 4,  // 4 * 1
	}
	if len(leaves) != len(want) {
		t.Fatalf("got %d leaves, want %d: %+v", len(leaves), len(want), leaves)
	}
	for _, leaf := range leaves {
		if w, ok := want[leaf.PartNumber]; !ok {
			t.Errorf("unexpected leaf %q", leaf.PartNumber)
		} else if leaf.EffectiveQty != w {
			t.Errorf("leaf %q qty = %d, want %d", leaf.PartNumber, leaf.EffectiveQty, w)
		}
	}
}

func TestResolveHierarchyLeaves_AssemblyGroups(t *testing.T) {
	rows := []HierarchyRow{
		{Level: 0, PartNumber: "TOP", Qty: 1},
		{Level: 1, PartNumber: "ASM-A", Qty: 1},
		{Level: 2, PartNumber: "P-1", Qty: 1},
		{Level: 1, PartNumber: "ASM-B", Qty: 1},
		{Level: 2, PartNumber: "P-2", Qty: 1},
	}
	leaves := ResolveHierarchyLeaves(rows)
	groups := map[string]string{}
	for _, leaf := range leaves {
		groups[leaf.PartNumber] = leaf.AssemblyGroup
	}
	if groups["P-1"] != "ASM-A" {
		t.Errorf("P-1 group = %q, want ASM-A", groups["P-1"])
	}
	if groups["P-2"] != "ASM-B" {
		t.Errorf("P-2 group = %q, want ASM-B", groups["P-2"])
	}
}

func TestResolveHierarchyLeaves_ShallowRowsGroupUnderThemselves(t *testing.T) {
	rows := []HierarchyRow{
		{Level: 0, PartNumber: "ONLY", Qty: 2},
	}
	leaves := ResolveHierarchyLeaves(rows)
	if len(leaves) != 1 {
		t.Fatalf("got %d leaves, want 1", len(leaves))
	}
	if leaves[0].AssemblyGroup != "ONLY" {
		t.Errorf("group = %q, want ONLY (own group at shallow level)", leaves[0].AssemblyGroup)
	}
	if leaves[0].EffectiveQty != 2 {
		t.Errorf("qty = %d, want 2", leaves[0].EffectiveQty)
	}
}

func TestResolveHierarchyLeaves_StalePruning(t *testing.T) {
	// After returning to a shallow level, older deep ancestors must not
	// leak into later branches.
	rows := []HierarchyRow{
		{Level: 0, PartNumber: "TOP", Qty: 1},
		{Level: 1, PartNumber: "ASM-A", Qty: 10},
		{Level: 2, PartNumber: "DEEP", Qty: 10},
		{Level: 3, PartNumber: "P-OLD", Qty: 1},
		{Level: 1, PartNumber: "ASM-B", Qty: 1},
		{Level: 2, PartNumber: "P-NEW", Qty: 2},
	}
	leaves := ResolveHierarchyLeaves(rows)
	for _, leaf := range leaves {
		if leaf.PartNumber == "P-NEW" {
			if leaf.EffectiveQty != 2 {
				t.Errorf("P-NEW qty = %d, want 2 (no stale multiplier)", leaf.EffectiveQty)
			}
			if leaf.AssemblyGroup != "ASM-B" {
				t.Errorf("P-NEW group = %q, want ASM-B", leaf.AssemblyGroup)
			}
		}
	}
}

func TestResolveHierarchyLeaves_FractionalCeil(t *testing.T) {
	rows := []HierarchyRow{
		{Level: 0, PartNumber: "TOP", Qty: 1},
		{Level: 1, PartNumber: "P-1", Qty: 0.5},
	}
	leaves := ResolveHierarchyLeaves(rows)
	if len(leaves) != 1 || leaves[0].EffectiveQty != 1 {
		t.Fatalf("leaves = %+v, want single P-1 with qty 1", leaves)
	}
}
