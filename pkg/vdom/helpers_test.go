package vdom

import "testing"

func TestTextf(t *testing.T) {
	node := Textf("Count: %d", 42)

	if node.Kind != KindText {
		t.Errorf("Kind = %v, want KindText", node.Kind)
	}
	if node.Text != "Count: 42" {
		t.Errorf("Text = %v, want 'Count: 42'", node.Text)
	}
}

func TestRange(t *testing.T) {
	rows := Range([]string{"A", "B", ""}, func(name string, i int) *VNode {
		if name == "" {
			return nil
		}
		return Tr(Key(i), Td(name))
	})
	if len(rows) != 2 {
		t.Fatalf("Range len = %d, want 2", len(rows))
	}
	if rows[1].Props["key"] != "1" {
		t.Errorf("key = %v, want 1", rows[1].Props["key"])
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		name  string
		class string
		want  string
	}{
		{"default class", "", PlaceholderClass},
		{"custom class", "slot", "slot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Placeholder(tt.class)
			if p.Kind != KindElement || p.Tag != PlaceholderTag {
				t.Fatalf("Placeholder = %v <%s>", p.Kind, p.Tag)
			}
			if got := p.Props["class"]; got != tt.want {
				t.Errorf("class = %v, want %q", got, tt.want)
			}
			if p == Placeholder(tt.class) {
				t.Error("Placeholder should return a fresh node each call")
			}
		})
	}
}
