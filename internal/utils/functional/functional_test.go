package functional

import (
	"reflect"
	"strconv"
	"testing"
)

func TestMap(t *testing.T) {
	got := Map([]int64{1, 2, 3}, func(v int64) string {
		return strconv.FormatInt(v, 10)
	})

	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Map = %v, want %v", got, want)
	}

	if got := Map(nil, func(v int64) int64 { return v }); len(got) != 0 {
		t.Errorf("Map(nil) = %v, want empty", got)
	}
}
