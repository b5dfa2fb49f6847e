package determinism

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type row struct {
	Region string
	Year   int
}

func TestSortRowsChain(t *testing.T) {
	rows := []row{
		{"R12_WEU", 2030},
		{"R12_AFR", 2030},
		{"R12_WEU", 2020},
		{"R12_AFR", 2020},
	}

	SortRows(rows, By(func(r row) string { return r.Region }), By(func(r row) int { return r.Year }))

	want := []row{
		{"R12_AFR", 2020},
		{"R12_AFR", 2030},
		{"R12_WEU", 2020},
		{"R12_WEU", 2030},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("SortRows mismatch (-want +got):\n%s", diff)
	}
}

func TestUniqueIsSorted(t *testing.T) {
	rows := []row{{"b", 1}, {"a", 2}, {"b", 3}, {"c", 4}}
	got := Unique(rows, func(r row) string { return r.Region })
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("Unique mismatch (-want +got):\n%s", diff)
	}
}

func TestRangeMapSortedStops(t *testing.T) {
	m := map[int]string{3: "c", 1: "a", 2: "b"}
	var visited []int
	RangeMapSorted(m, func(k int, _ string) bool {
		visited = append(visited, k)
		return k < 2
	})
	if diff := cmp.Diff([]int{1, 2}, visited); diff != "" {
		t.Errorf("RangeMapSorted visited (-want +got):\n%s", diff)
	}
}
