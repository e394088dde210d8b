package importer

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var digitsOnly = regexp.MustCompile(`\D`)

// toolSortKey is the numeric value of the digits embedded in a tool
// number; numbers without digits sort as 0.
func toolSortKey(toolNumber string) int {
	n, err := strconv.Atoi(digitsOnly.ReplaceAllString(toolNumber, ""))
	if err != nil {
		return 0
	}
	return n
}

// ToolsFromMapping emits one tool per detected tool column, sorted
// numerically so "3137-10" lands after "3137-2".
func ToolsFromMapping(m ColumnMapping) []ImportedTool {
	tools := make([]ImportedTool, 0, len(m.Tools))
	for _, tc := range m.Tools {
		tools = append(tools, ImportedTool{ToolNumber: tc.Number})
	}
	sort.SliceStable(tools, func(i, j int) bool {
		return toolSortKey(tools[i].ToolNumber) < toolSortKey(tools[j].ToolNumber)
	})
	return tools
}

// SyntheticTools generates "{so}-{1..count}" tool numbers for formats with
// an order-level tool count instead of per-tool columns.
func SyntheticTools(soNumber string, count int, model string) []ImportedTool {
	if count < 1 {
		count = 1
	}
	tools := make([]ImportedTool, 0, count)
	for i := 1; i <= count; i++ {
		tools = append(tools, ImportedTool{
			ToolNumber: fmt.Sprintf("%s-%d", soNumber, i),
			ToolModel:  model,
		})
	}
	return tools
}
