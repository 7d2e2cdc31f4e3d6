package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		url  string
		want int
	}{
		{"/audit", 1},
		{"/audit?page=3", 3},
		{"/audit?page=0", 1},
		{"/audit?page=-2", 1},
		{"/audit?page=abc", 1},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := ParsePage(httptest.NewRequest("GET", tt.url, nil)); got != tt.want {
				t.Errorf("ParsePage(%q) = %d, want %d", tt.url, got, tt.want)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1); got != 0 {
		t.Errorf("Offset(1) = %d", got)
	}
	if got := Offset(3); got != 2*PageSize {
		t.Errorf("Offset(3) = %d", got)
	}
	if got := Offset(0); got != 0 {
		t.Errorf("Offset(0) = %d", got)
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		total int64
		want  Page
	}{
		{"empty", 1, 0, Page{Page: 1, TotalPages: 1}},
		{"single page", 1, 50, Page{Page: 1, TotalPages: 1, Total: 50}},
		{"first of two", 1, 51, Page{Page: 1, TotalPages: 2, Total: 51, HasNext: true}},
		{"last of two", 2, 51, Page{Page: 2, TotalPages: 2, Total: 51, HasPrev: true}},
		{"middle", 2, 140, Page{Page: 2, TotalPages: 3, Total: 140, HasPrev: true, HasNext: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.page, tt.total); got != tt.want {
				t.Errorf("Compute(%d, %d) = %+v, want %+v", tt.page, tt.total, got, tt.want)
			}
		})
	}
}
