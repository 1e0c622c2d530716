package ws

import (
	"context"
	"errors"
	"testing"
	"time"

	"dotc_server/internal/deck"
	"dotc_server/internal/engine"
)

func TestReasonFor(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&deck.ValidationError{Reason: "пустой сет"}, "ValidationError"},
		{engine.ErrRoomBusy, "RoomBusy"},
		{engine.ErrAlreadyResolved, "AlreadyResolved"},
		{engine.ErrNotYourTurn, "NotYourTurn"},
		{engine.ErrUnknownCard, "UnknownCard"},
		{engine.ErrUnknownPlayer, "UnknownPlayer"},
		{errors.New("что-то еще"), "InternalError"},
	}

	for _, tc := range cases {
		if got := reasonFor(tc.err); got != tc.want {
			t.Errorf("reasonFor(%v) = %q, ожидалось %q", tc.err, got, tc.want)
		}
	}
}

func TestHub_GetOrCreateRoomReusesRoom(t *testing.T) {
	h := NewHub(nil, nil, nil, nil, time.Second)

	r1, err := h.GetOrCreateRoom(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("GetOrCreateRoom: %v", err)
	}
	t.Cleanup(func() {
		r1.core.Close()
		close(r1.quit)
	})

	r2, err := h.GetOrCreateRoom(context.Background(), "game-1")
	if err != nil {
		t.Fatalf("повторный GetOrCreateRoom: %v", err)
	}
	if r1 != r2 {
		t.Fatal("комната обязана переиспользоваться по ID")
	}

	st := h.Status()
	if len(st) != 1 || st[0].ID != "game-1" {
		t.Fatalf("неожиданный статус: %+v", st)
	}
	if st[0].Busy {
		t.Fatal("свежая комната не может быть под затвором")
	}
}
