package resumes

import "testing"

func TestSuggestTitle(t *testing.T) {
	taken := takenTitles([]TitleRef{
		{ID: "a", Title: "Jane Doe Resume"},
		{ID: "b", Title: "jane doe resume (2)"},
		{ID: "c", Title: "Designer"},
	}, "")

	cases := []struct {
		in       string
		want     string
		wantFree bool
	}{
		{in: "Fresh Title", want: "Fresh Title", wantFree: true},
		{in: "Jane Doe Resume", want: "Jane Doe Resume (3)", wantFree: false},
		{in: "  JANE   doe resume ", want: "JANE   doe resume (3)", wantFree: false},
		{in: "Jane Doe Resume (2)", want: "Jane Doe Resume (3)", wantFree: false},
		{in: "Designer", want: "Designer (2)", wantFree: false},
	}
	for _, tc := range cases {
		got, free := suggestTitle(tc.in, taken)
		if got != tc.want || free != tc.wantFree {
			t.Fatalf("suggestTitle(%q) = %q,%v; want %q,%v", tc.in, got, free, tc.want, tc.wantFree)
		}
	}
}

func TestTakenTitlesExcludesID(t *testing.T) {
	taken := takenTitles([]TitleRef{{ID: "a", Title: "Mine"}}, "a")
	if _, ok := taken["mine"]; ok {
		t.Fatal("expected excluded resume to be ignored")
	}
}
