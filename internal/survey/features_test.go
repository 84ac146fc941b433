package survey

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtractFeatures_Frequency(t *testing.T) {
	table, err := ParseTable("id,freq\n1,Always\n2,Never", ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}

	got := ExtractFeatures(table.Rows, "freq", KindFrequency)
	if diff := cmp.Diff([]float64{4, 0}, got); diff != "" {
		t.Errorf("frequency mismatch (-want +got):\n%s", diff)
	}
}

func TestFeatureValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind Kind
		want float64
	}{
		{"always", "Always", KindFrequency, 4},
		{"often", "Often", KindFrequency, 3},
		{"sometimes", "Sometimes", KindFrequency, 2},
		{"rarely", "Rarely", KindFrequency, 1},
		{"never", "Never", KindFrequency, 0},
		{"frequency is case sensitive", "always", KindFrequency, 0},
		{"frequency unmapped", "Weekly", KindFrequency, 0},
		{"frequency empty", "", KindFrequency, 0},

		{"very important", "very important", KindImportance, 3},
		{"slightly important", "slightly important", KindImportance, 2},
		{"slightly unimportant", "slightly unimportant", KindImportance, 1},
		{"very unimportant", "very unimportant", KindImportance, 0},
		{"importance unmapped", "Very Important", KindImportance, 0},

		{"integer", "42", KindNumeric, 42},
		{"negative", "-7", KindNumeric, -7},
		{"plus sign", "+5", KindNumeric, 5},
		{"leading space", "  12", KindNumeric, 12},
		{"trailing text", "3 people", KindNumeric, 3},
		{"decimal truncated", "3.9", KindNumeric, 3},
		{"not a number", "More Than 5", KindNumeric, 0},
		{"sign only", "-", KindNumeric, 0},
		{"numeric empty", "", KindNumeric, 0},

		{"unknown kind", "Always", Kind(99), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := featureValue(tt.raw, tt.kind); got != tt.want {
				t.Errorf("featureValue(%q, %v) = %v, want %v", tt.raw, tt.kind, got, tt.want)
			}
		})
	}
}

func TestExtractFeatures_MissingColumn(t *testing.T) {
	rows := []Row{{"a": "Always"}, {"a": "Often"}}

	got := ExtractFeatures(rows, "b", KindFrequency)
	if diff := cmp.Diff([]float64{0, 0}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractFeatures_AlignedWithRows(t *testing.T) {
	rows := []Row{
		{"n": "1"}, {"n": "x"}, {"n": "3"},
	}
	got := ExtractFeatures(rows, "n", KindNumeric)
	if len(got) != len(rows) {
		t.Fatalf("len = %d, want %d", len(got), len(rows))
	}
	if diff := cmp.Diff([]float64{1, 0, 3}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTally(t *testing.T) {
	var rows []Row
	for _, v := range []string{"A", "B", "A", "C", "B", "A"} {
		rows = append(rows, Row{"kind": v})
	}

	tally := Tally(rows, "kind")

	wantCounts := map[string]int{"A": 3, "B": 2, "C": 1}
	if diff := cmp.Diff(wantCounts, tally.Counts()); diff != "" {
		t.Errorf("Counts() mismatch (-want +got):\n%s", diff)
	}

	categories, counts := tally.Split()
	if diff := cmp.Diff([]string{"A", "B", "C"}, categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{3, 2, 1}, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestTally_FreeFormAndEmpty(t *testing.T) {
	rows := []Row{
		{"kind": "Food bank referral"},
		{"kind": ""},
		{"kind": "Food bank referral"},
		{},
	}

	got := Tally(rows, "kind").Counts()
	want := map[string]int{"Food bank referral": 2, "": 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	total := 0
	for _, c := range Tally(rows, "kind") {
		total += c.Count
	}
	if total != len(rows) {
		t.Errorf("tally total = %d, want one per row (%d)", total, len(rows))
	}
}

func TestKindString(t *testing.T) {
	if KindImportance.String() != "importance" {
		t.Errorf("KindImportance.String() = %q", KindImportance.String())
	}
	if Kind(42).String() != "unknown" {
		t.Errorf("Kind(42).String() = %q", Kind(42).String())
	}
}
