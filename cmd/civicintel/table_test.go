package main

import (
	"strings"
	"testing"
)

func tableCell(t *testing.T, rendered, rowKey string, col int) string {
	t.Helper()
	for _, line := range strings.Split(rendered, "\n") {
		if !strings.Contains(line, rowKey) {
			continue
		}
		cells := strings.Split(line, "│")
		if len(cells) <= col+1 {
			t.Fatalf("row %q has %d cells", line, len(cells))
		}
		return cells[col+1]
	}
	t.Fatalf("no row containing %q in:\n%s", rowKey, rendered)
	return ""
}

func TestRenderTableRightAlignsRequestedColumns(t *testing.T) {
	rendered := renderTable(
		[]string{"Jurisdiction", "Discovered"},
		[][]string{
			{"Testville", "7"},
			{"Springfield", "123"},
		},
		1)

	if !strings.Contains(rendered, "╭") {
		t.Fatalf("expected rounded borders, got:\n%s", rendered)
	}

	name := tableCell(t, rendered, "Testville", 0)
	if !strings.HasPrefix(name, " Testville") {
		t.Errorf("name cell %q should be left aligned", name)
	}
	count := tableCell(t, rendered, "Testville", 1)
	if !strings.HasSuffix(count, "7 ") || !strings.HasPrefix(count, "  ") {
		t.Errorf("count cell %q should be right aligned", count)
	}
}

func TestRenderTableLeftAlignsHeaders(t *testing.T) {
	rendered := renderTable(
		[]string{"Jurisdiction", "Discovered"},
		[][]string{{"Testville", "7"}},
		1)

	header := tableCell(t, rendered, "DISCOVERED", 1)
	if !strings.HasPrefix(header, " DISCOVERED") {
		t.Errorf("header cell %q should be left aligned even over a numeric column", header)
	}
}
