package output

import (
	"bytes"
	"testing"

	"vtodo/internal/service"
)

func TestFormatItem(t *testing.T) {
	tests := []struct {
		name string
		num  int
		item service.Item
		want string
	}{
		{"open", 1, service.Item{Text: "buy milk"}, "   1  [ ] buy milk\n"},
		{"done", 12, service.Item{Text: "ship", Done: true}, "  12  [x] ship\n"},
		{"newline", 3, service.Item{Text: "a\nb"}, "   3  [ ] a b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatItem(&buf, tt.num, tt.item)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestFormatListHeader(t *testing.T) {
	var buf bytes.Buffer
	FormatListHeader(&buf, "Work", true)
	want := "------------\nWork [active]\n------------\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatListName(t *testing.T) {
	var buf bytes.Buffer
	FormatListName(&buf, "Personal", false)
	FormatListName(&buf, "  ", true)
	want := "Personal\n(untitled) [active]\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
