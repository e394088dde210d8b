package importer

import "testing"

func TestToolsFromMapping_NumericOrder(t *testing.T) {
	m := emptyMapping()
	m.Tools = []ToolColumn{
		{Number: "3137-10", Col: 4},
		{Number: "3137-2", Col: 3},
		{Number: "3137-1", Col: 2},
	}
	tools := ToolsFromMapping(m)
	want := []string{"3137-1", "3137-2", "3137-10"}
	if len(tools) != len(want) {
		t.Fatalf("got %d tools, want %d", len(tools), len(want))
	}
	for i, w := range want {
		if tools[i].ToolNumber != w {
			t.Errorf("tools[%d] = %q, want %q", i, tools[i].ToolNumber, w)
		}
	}
}

func TestSyntheticTools(t *testing.T) {
	tools := SyntheticTools("3137", 3, "M-200")
	if len(tools) != 3 {
		t.Fatalf("got %d tools, want 3", len(tools))
	}
	if tools[0].ToolNumber != "3137-1" || tools[2].ToolNumber != "3137-3" {
		t.Errorf("tool numbers = %q..%q, want 3137-1..3137-3", tools[0].ToolNumber, tools[2].ToolNumber)
	}
	if tools[1].ToolModel != "M-200" {
		t.Errorf("ToolModel = %q, want M-200", tools[1].ToolModel)
	}

	// A zero count still yields one tool.
	if got := len(SyntheticTools("3137", 0, "")); got != 1 {
		t.Errorf("SyntheticTools with count 0 yielded %d tools, want 1", got)
	}
}
