package stack

import (
	"testing"
)

func TestStack_New(t *testing.T) {
	t.Parallel()

	s := New[int]()
	if !s.IsEmpty() {
		t.Error("New() stack should be empty")
	}
	if s.Size() != 0 {
		t.Errorf("New() stack size = %d, want 0", s.Size())
	}

	c := NewWithCapacity[string](8)
	if !c.IsEmpty() {
		t.Error("NewWithCapacity() stack should be empty")
	}
}

func TestStack_PushAndPop(t *testing.T) {
	t.Parallel()

	s := New[int]()
	s.Push(1, 2)
	s.Push(3)

	if s.Size() != 3 {
		t.Fatalf("Push() stack size = %d, want 3", s.Size())
	}

	for _, want := range []int{3, 2, 1} {
		got, ok := s.Pop()
		if !ok || got != want {
			t.Errorf("Pop() = %d, %t, want %d, true", got, ok, want)
		}
	}

	if _, ok := s.Pop(); ok {
		t.Error("Pop() on empty stack should report false")
	}
}

func TestStack_PushReverse(t *testing.T) {
	t.Parallel()

	s := New[string]()
	s.Push("bottom")
	s.PushReverse("a", "b", "c")

	for _, want := range []string{"a", "b", "c", "bottom"} {
		got, ok := s.Pop()
		if !ok || got != want {
			t.Errorf("Pop() = %q, %t, want %q, true", got, ok, want)
		}
	}
}

func TestStack_Peek(t *testing.T) {
	t.Parallel()

	s := New[int]()
	if _, ok := s.Peek(); ok {
		t.Error("Peek() on empty stack should report false")
	}

	s.Push(7)
	got, ok := s.Peek()
	if !ok || got != 7 {
		t.Errorf("Peek() = %d, %t, want 7, true", got, ok)
	}
	if s.Size() != 1 {
		t.Errorf("Peek() must not remove the element, size = %d", s.Size())
	}
}
