package importer

import "math"

// HierarchyRow is one row of a nested BOM. Row order is semantically
// significant: parent/child structure is implied by adjacency, there is no
// explicit parent pointer.
type HierarchyRow struct {
	Level       int     `json:"level"`
	PartNumber  string  `json:"part_number"`
	Qty         float64 `json:"qty"`
	Description string  `json:"description,omitempty"`
}

/// ResolvedLeafPart is a hierarchy row with no children: the unit actually
// purchased or picked, with quantity multiplied through its parent chain.
type ResolvedLeafPart struct {
	PartNumber    string  `json:"part_number"`
	Description   string  `json:"description,omitempty"`
	EffectiveQty  int     `json:"effective_qty"`
	AssemblyGroup string  `json:"assembly_group"`
}

type levelEntry struct {
	partNumber   string
	effectiveQty float64
	set          bool
}

// ResolveHierarchyLeaves flattens a multi-level BOM into its leaf parts.
//
// A row is a leaf iff the next row (if any) sits at the same or a
// shallower level. Effective quantity is the row's own quantity times the
// effective quantity of the nearest ancestor at a shallower level.
// Assembly group is the nearest ancestor at level 1 or 0 (level 0 only
// when no level-1 ancestor is in scope); rows at level 0 or 1 group under
// themselves. Leaf quantities are rounded up and floored at 1.
//
// The per-level ancestor state is a freshly allocated stack indexed by
// level, so concurrent invocations never share state.
func ResolveHierarchyLeaves(rows []HierarchyRow) []ResolvedLeafPart {
	maxLevel := 0
	for _, r := range rows {
		if r.Level > maxLevel {
			maxLevel = r.Level
		}
	}
	stack := make([]levelEntry, maxLevel+1)

	var leaves []ResolvedLeafPart
	for i, row := range rows {
		if row.Level < 0 || row.Level > maxLevel {
			continue
		}

		isLeaf := i+1 >= len(rows) || rows[i+1].Level <= row.Level

		parentQty := 1.0
		for lvl := row.Level - 1; lvl >= 0; lvl-- {
			if stack[lvl].set {
				parentQty = stack[lvl].effectiveQty
				break
			}
		}
		effectiveQty := row.Qty * parentQty

		stack[row.Level] = levelEntry{partNumber: row.PartNumber, effectiveQty: effectiveQty, set: true}
		// Deeper levels went out of scope with this row.
		for lvl := row.Level + 1; lvl <= maxLevel; lvl++ {
			stack[lvl] = levelEntry{}
		}

		assemblyGroup := ""
		for lvl := 1; lvl >= 0; lvl-- {
			if lvl <= maxLevel && stack[lvl].set {
				assemblyGroup = stack[lvl].partNumber
				break
			}
		}
		if row.Level <= 1 {
			assemblyGroup = row.PartNumber
		}

		if isLeaf {
			qty := int(math.Ceil(effectiveQty))
			if qty < 1 {
				qty = 1
			}
			leaves = append(leaves, ResolvedLeafPart{
				PartNumber:    row.PartNumber,
				Description:   row.Description,
				EffectiveQty:  qty,
				AssemblyGroup: assemblyGroup,
			})
		}
	}
	return leaves
}
