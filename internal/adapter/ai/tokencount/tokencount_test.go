package tokencount

import "testing"

func TestCount_NonEmptyText(t *testing.T) {
	c := NewCounter()
	if got := c.Count("gemini-1.5-flash", "how does garbage collection work"); got <= 0 {
		t.Fatalf("want positive count, got %d", got)
	}
	if got := c.Count("gemini-1.5-flash", ""); got != 0 {
		t.Fatalf("empty text: want 0, got %d", got)
	}
}

func TestTruncate_WithinBudgetUnchanged(t *testing.T) {
	c := NewCounter()
	text := "short answer"
	if got := c.Truncate("gemini-1.5-flash", text, 1000); got != text {
		t.Fatalf("text within budget was altered: %q", got)
	}
	if got := c.Truncate("gemini-1.5-flash", text, 0); got != text {
		t.Fatalf("non-positive budget must be a no-op: %q", got)
	}
}

func TestNormalizeModelName(t *testing.T) {
	cases := map[string]string{
		"google/gemini-1.5-flash": "gemini-1.5-flash",
		" Gemini-1.5-Flash ":      "gemini-1.5-flash",
		"gpt-4o":                  "gpt-4o",
	}
	for in, want := range cases {
		if got := normalizeModelName(in); got != want {
			t.Errorf("normalizeModelName(%q): want %q, got %q", in, want, got)
		}
	}
}
