package pagination

import "testing"

func TestPaginate(t *testing.T) {
	tests := []struct {
		name          string
		count         int
		requestedPage int
		pageSize      int
		wantPage      int
		wantTotal     int
		wantOffset    int
	}{
		{"first page", 25, 1, 10, 1, 3, 0},
		{"middle page", 25, 2, 10, 2, 3, 10},
		{"last partial page", 25, 3, 10, 3, 3, 20},
		{"page beyond end clamps to last", 25, 99, 10, 3, 3, 20},
		{"page zero clamps to first", 25, 0, 10, 1, 3, 0},
		{"negative page clamps to first", 25, -4, 10, 1, 3, 0},
		{"empty collection still has one page", 0, 1, 10, 1, 1, 0},
		{"empty collection high page clamps", 0, 7, 10, 1, 1, 0},
		{"exact multiple", 30, 3, 10, 3, 3, 20},
		{"single item", 1, 1, 10, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.count, tt.requestedPage, tt.pageSize)
			if p.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.TotalPages != tt.wantTotal {
				t.Errorf("TotalPages = %d, want %d", p.TotalPages, tt.wantTotal)
			}
			if p.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", p.Offset, tt.wantOffset)
			}
			if p.PageSize != tt.pageSize {
				t.Errorf("PageSize = %d, want %d", p.PageSize, tt.pageSize)
			}
		})
	}
}

func TestPaginateDefaultPageSize(t *testing.T) {
	p := Paginate(25, 1, 0)
	if p.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want default %d", p.PageSize, DefaultPageSize)
	}
	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
}
