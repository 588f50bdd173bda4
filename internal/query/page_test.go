package query

import "testing"

func TestPage_Pages(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int64
	}{
		{0, 10, 0},
		{1, 10, 1},
		{9, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 10, 10},
		{101, 10, 11},
		{5, 1, 5},
		{5, 100, 1},
	}
	for _, tc := range cases {
		p := Page[int]{Total: tc.total, PageSize: tc.size}
		if got := p.Pages(); got != tc.want {
			t.Errorf("Pages(total=%d, size=%d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

// Для любых total и size действует инвариант ceil:
// (pages-1)*size < total <= pages*size.
func TestPage_PagesBounds(t *testing.T) {
	for _, size := range []int{1, 3, 7, 10, 100} {
		for total := int64(1); total <= 250; total++ {
			pages := Page[int]{Total: total, PageSize: size}.Pages()
			lo := (pages - 1) * int64(size)
			hi := pages * int64(size)
			if !(lo < total && total <= hi) {
				t.Fatalf("size=%d total=%d: pages=%d breaks (pages-1)*size < total <= pages*size", size, total, pages)
			}
		}
	}
}

func TestSpec_Offset(t *testing.T) {
	cases := []struct {
		page, size int
		want       uint64
	}{
		{1, 10, 0},
		{2, 10, 10},
		{3, 25, 50},
		{1, 1, 0},
	}
	for _, tc := range cases {
		s := &Spec{Page: tc.page, PageSize: tc.size}
		if got := s.Offset(); got != tc.want {
			t.Errorf("Offset(page=%d, size=%d) = %d, want %d", tc.page, tc.size, got, tc.want)
		}
	}
}

func TestNewPage(t *testing.T) {
	s := &Spec{Page: 2, PageSize: 5}
	p := NewPage([]string{"a", "b"}, 12, s)
	if p.Page != 2 || p.PageSize != 5 || p.Total != 12 || len(p.Items) != 2 {
		t.Errorf("page = %+v", p)
	}
	if p.Pages() != 3 {
		t.Errorf("Pages() = %d, want 3", p.Pages())
	}
}
