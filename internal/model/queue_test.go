package model

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueue(t *testing.T) {
	q := NewQueue()
	for _, id := range []string{"a", "b", "c"} {
		if err := q.AddPlayer(Player{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := q.AddPlayer(Player{ID: "b"}); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("AddPlayer(b) again error = %v; want ErrAlreadyQueued", err)
	}

	first, second, ok := q.GetNextPair()
	if !ok {
		t.Fatal("GetNextPair() found no pair")
	}
	if diff := cmp.Diff([]string{"a", "b"}, []string{first.ID, second.ID}); diff != "" {
		t.Errorf("pair mismatch (-want +got):\n%s", diff)
	}
	if _, _, ok := q.GetNextPair(); ok {
		t.Error("GetNextPair() paired a lone player")
	}

	if q.RemovePlayer("x") {
		t.Error("RemovePlayer(x) reported a removal")
	}
	if !q.RemovePlayer("c") || q.Size() != 0 {
		t.Errorf("RemovePlayer(c) left size %d", q.Size())
	}
}
