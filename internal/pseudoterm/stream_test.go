package pseudoterm

import (
	"fmt"
	"testing"
	"time"
)

func TestTextStreamPreservesOrder(t *testing.T) {
	s := newTextStream()
	defer s.Close()

	const n = 1000
	for i := 0; i < n; i++ {
		s.Send(fmt.Sprintf("frame-%d", i))
	}

	for i := 0; i < n; i++ {
		select {
		case msg := <-s.C():
			want := fmt.Sprintf("frame-%d", i)
			if msg != want {
				t.Fatalf("frame %d = %q, want %q", i, msg, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for frame %d", i)
		}
	}
}

func TestTextStreamSendNeverBlocks(t *testing.T) {
	s := newTextStream()
	defer s.Close()

	done := make(chan struct{})
	go func() {
		// No consumer; all sends must still return.
		for i := 0; i < 10000; i++ {
			s.Send("chunk")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked without a consumer")
	}
}

func TestTextStreamCloseDrainsBuffered(t *testing.T) {
	s := newTextStream()
	s.Send("a")
	s.Send("b")
	s.Close()

	var got []string
	for msg := range s.C() {
		got = append(got, msg)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("drained %v, want [a b]", got)
	}
}

func TestTextStreamSendAfterCloseDropped(t *testing.T) {
	s := newTextStream()
	s.Close()
	s.Send("late")

	for range s.C() {
		t.Fatal("expected no frames after close")
	}
}
