package setutil

import (
	"reflect"
	"testing"
)

func TestUintSetBasics(t *testing.T) {
	s := NewUintSet(3, 1, 2)
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if !s.Contains(2) {
		t.Error("Contains(2) = false, want true")
	}
	s.Add(2)
	if s.Len() != 3 {
		t.Errorf("Len() after duplicate Add = %d, want 3", s.Len())
	}
	s.Remove(2)
	if s.Contains(2) {
		t.Error("Contains(2) after Remove = true, want false")
	}
}

func TestUintSetUnion(t *testing.T) {
	a := NewUintSet(1, 2)
	b := NewUintSet(2, 3)
	a.Union(b)
	if got := a.Sorted(); !reflect.DeepEqual(got, []uint{1, 2, 3}) {
		t.Errorf("Union result = %v, want [1 2 3]", got)
	}
	a.Union(nil)
	if a.Len() != 3 {
		t.Errorf("Union(nil) changed set, Len = %d", a.Len())
	}
}

func TestUintSetEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b *UintSet
		want bool
	}{
		{"same values", NewUintSet(1, 2), NewUintSet(2, 1), true},
		{"different sizes", NewUintSet(1), NewUintSet(1, 2), false},
		{"different values", NewUintSet(1, 2), NewUintSet(1, 3), false},
		{"both empty", NewUintSet(), NewUintSet(), true},
		{"nil other empty", NewUintSet(), nil, true},
		{"nil other nonempty", NewUintSet(1), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUintSetSorted(t *testing.T) {
	s := NewUintSet(5, 1, 9, 3)
	if got := s.Sorted(); !reflect.DeepEqual(got, []uint{1, 3, 5, 9}) {
		t.Errorf("Sorted() = %v, want [1 3 5 9]", got)
	}
}
