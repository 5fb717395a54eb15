package schema

import "testing"

func TestYearColumns(t *testing.T) {
	cols := YearColumns()
	if len(cols) != 64 {
		t.Fatalf("len(YearColumns()) = %d, want 64", len(cols))
	}
	if cols[0] != "1960" || cols[len(cols)-1] != "2023" {
		t.Errorf("YearColumns() range = %s..%s, want 1960..2023", cols[0], cols[len(cols)-1])
	}
}

func TestYearIndex(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{1960, 0},
		{1999, 39},
		{2023, 63},
		{1959, -1},
		{2024, -1},
	}
	for _, tt := range tests {
		if got := YearIndex(tt.year); got != tt.want {
			t.Errorf("YearIndex(%d) = %d, want %d", tt.year, got, tt.want)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INDICATOR_CODE", "indicator code"},
		{"Indicator Code", "indicator code"},
		{"  IncomeGroup ", "incomegroup"},
		{"Country  Name", "country name"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrimaryFields(t *testing.T) {
	if len(API.Fields) != PrimaryColumnCount {
		t.Fatalf("len(API.Fields) = %d, want %d", len(API.Fields), PrimaryColumnCount)
	}
	if API.Fields[3].Name != ColIndicatorCode {
		t.Errorf("API.Fields[3] = %q, want %q", API.Fields[3].Name, ColIndicatorCode)
	}
	if API.Fields[4].Type != FieldNumeric {
		t.Errorf("first year column should be numeric")
	}
}
