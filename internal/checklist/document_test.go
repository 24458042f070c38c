package checklist

import (
	"errors"
	"testing"
)

func TestAppendAddsUncheckedItem(t *testing.T) {
	doc := NewDocument("/notes/todo.md")
	if doc.Title != "todo" {
		t.Fatalf("title = %q, want todo", doc.Title)
	}
	item, err := doc.Append("  buy\nbread  ")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if item.Checked || item.Text != "buy bread" {
		t.Fatalf("unexpected item %+v", *item)
	}
	if len(doc.Items) != 1 || doc.Items[0] != item {
		t.Fatalf("item not appended")
	}
	if _, err := doc.Append(" \n "); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if len(doc.Items) != 1 {
		t.Fatalf("blank append must not add an item")
	}
}

func TestAppendKeepsInteriorWhitespace(t *testing.T) {
	doc := NewDocument("todo.md")
	for _, text := range []string{"a  b", "x\ty", "buy  2\tapples"} {
		item, err := doc.Append(text)
		if err != nil {
			t.Fatalf("append %q: %v", text, err)
		}
		if item.Text != text {
			t.Fatalf("text = %q, want %q", item.Text, text)
		}
	}
	item, err := doc.Append("one\r\ntwo")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if item.Text != "one two" {
		t.Fatalf("text = %q, want %q", item.Text, "one two")
	}
}

func TestRemoveByReferenceKeepsOrder(t *testing.T) {
	doc := NewDocument("d.md")
	a, _ := doc.Append("same")
	b, _ := doc.Append("same")
	c, _ := doc.Append("other")
	d, _ := doc.Append("same")

	if n := doc.Remove(b); n != 1 {
		t.Fatalf("removed %d, want 1", n)
	}
	want := []*Item{a, c, d}
	if len(doc.Items) != len(want) {
		t.Fatalf("len = %d, want %d", len(doc.Items), len(want))
	}
	for i := range want {
		if doc.Items[i] != want[i] {
			t.Fatalf("item %d is not the expected reference", i)
		}
	}
	if n := doc.Remove(b, nil, &Item{Text: "same"}); n != 0 {
		t.Fatalf("removing foreign items removed %d", n)
	}
	if n := doc.Remove(a, d); n != 2 {
		t.Fatalf("removed %d, want 2", n)
	}
	if len(doc.Items) != 1 || doc.Items[0] != c {
		t.Fatalf("unexpected remaining items")
	}
}

func TestToggleAndProgress(t *testing.T) {
	doc := NewDocument("d.md")
	a, _ := doc.Append("a")
	doc.Append("b")
	if !doc.Toggle(a) {
		t.Fatalf("toggle should check the item")
	}
	done, total := doc.Progress()
	if done != 1 || total != 2 {
		t.Fatalf("progress = %d/%d, want 1/2", done, total)
	}
	if doc.Toggle(&Item{Text: "a"}) {
		t.Fatalf("toggling a foreign item must be a no-op")
	}
	if doc.Toggle(a) {
		t.Fatalf("second toggle should uncheck")
	}
	if doc.IndexOf(a) != 0 || doc.IndexOf(nil) != -1 {
		t.Fatalf("unexpected IndexOf results")
	}
}
