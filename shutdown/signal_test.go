package shutdown

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestSignalCounter_Record(t *testing.T) {
	var forced []os.Signal
	counter := NewSignalCounter(2, func(sig os.Signal) {
		forced = append(forced, sig)
	})

	if got := counter.Record(os.Interrupt); got != 1 {
		t.Errorf("first Record() = %d, want 1", got)
	}
	if len(forced) != 0 {
		t.Fatal("force callback should not run after one signal")
	}

	if got := counter.Record(syscall.SIGTERM); got != 2 {
		t.Errorf("second Record() = %d, want 2", got)
	}
	if len(forced) != 1 || forced[0] != syscall.SIGTERM {
		t.Errorf("forced = %v, want [SIGTERM]", forced)
	}
	if counter.First() != os.Interrupt {
		t.Errorf("First() = %v, want interrupt", counter.First())
	}
	if counter.Count() != 2 {
		t.Errorf("Count() = %d, want 2", counter.Count())
	}
}

func TestSignalCounter_Defaults(t *testing.T) {
	counter := NewSignalCounter(0, nil)
	if counter.forceAfter != DefaultForceAfter {
		t.Errorf("forceAfter = %d, want %d", counter.forceAfter, DefaultForceAfter)
	}
	counter.Record(os.Interrupt)
	counter.Record(os.Interrupt)
	if counter.First() != os.Interrupt {
		t.Errorf("First() = %v", counter.First())
	}
}

func TestWatch_StopCancels(t *testing.T) {
	ctx, stop := Watch(context.Background(), NewSignalCounter(2, nil))
	stop()
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by stop")
	}
}

func TestWatch_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := Watch(parent, NewSignalCounter(2, nil))
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled with its parent")
	}
}
