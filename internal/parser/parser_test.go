package parser

import "testing"

func TestParseOutline(t *testing.T) {
	source := []byte(`intro line

# Plan

- [ ] first task
- [x] completed task
- plain item

## Details

` + "```go\nfunc skipped() {}\n```\n")

	s := Parse(source)

	if s.Title != "Plan" {
		t.Fatalf("expected title from first heading, got %q", s.Title)
	}
	if len(s.Headings) != 2 || s.Headings[1].Level != 2 || s.Headings[1].Text != "Details" {
		t.Fatalf("unexpected headings %+v", s.Headings)
	}
	if s.Headings[0].Line != 3 {
		t.Fatalf("expected first heading on line 3, got %d", s.Headings[0].Line)
	}

	done, total := s.TaskCounts()
	if done != 1 || total != 2 {
		t.Fatalf("expected 1/2 tasks, got %d/%d", done, total)
	}
	if s.Tasks[0].Content != "first task" || s.Tasks[0].Line != 5 {
		t.Fatalf("unexpected first task %+v", s.Tasks[0])
	}
	if !s.Tasks[1].Done {
		t.Fatalf("expected second task checked")
	}
}

func TestParseWordsSkipCode(t *testing.T) {
	s := Parse([]byte("one two `three`\n\n    four five\n\nsix\n"))
	if s.Words != 3 {
		t.Fatalf("expected 3 words outside code, got %d", s.Words)
	}
}

func TestParseEmpty(t *testing.T) {
	s := Parse(nil)
	if s.Title != "" || len(s.Headings) != 0 || len(s.Tasks) != 0 || s.Words != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}
