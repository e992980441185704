package threadpool

import (
	"sync"
	"testing"
	"time"

	"github.com/kelthar/nebula/task"
)

func TestNewBlockingTaskRunsOnWorker(t *testing.T) {
	p := New(2, time.Second)
	defer p.Close()

	tsk, handle := NewBlockingTask(p, 1, func() int {
		return 21 * 2
	})

	cx := &task.Context{Waker: task.NewWaker(func() {})}
	deadline := time.Now().Add(2 * time.Second)
	for !tsk.Poll(cx) {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for blocking task to complete")
		}
		time.Sleep(time.Millisecond)
	}

	out, ok := handle.Poll(cx)
	if !ok {
		t.Fatal("expected the JoinHandle to be ready once the task completed")
	}
	if out.Err != nil || out.Value != 42 {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestNewBlockingTaskCapturesPanic(t *testing.T) {
	p := New(1, time.Second)
	defer p.Close()

	tsk, handle := NewBlockingTask(p, 1, func() int {
		panic("pool boom")
	})

	cx := &task.Context{Waker: task.NewWaker(func() {})}
	deadline := time.Now().Add(2 * time.Second)
	for !tsk.Poll(cx) {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for blocking task to complete")
		}
		time.Sleep(time.Millisecond)
	}

	out, _ := handle.Poll(cx)
	if out.Err == nil || out.Err.Panic != "pool boom" {
		t.Fatalf("expected captured panic, got %+v", out.Err)
	}
}

func TestPoolRespectsCap(t *testing.T) {
	const cap = 2
	p := New(cap, 50*time.Millisecond)
	defer p.Close()

	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	release := make(chan struct{})

	var handles []*task.JoinHandle[struct{}]
	for i := 0; i < 5; i++ {
		_, h := NewBlockingTask(p, uint64(i+1), func() struct{} {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()
			<-release
			mu.Lock()
			inFlight--
			mu.Unlock()
			return struct{}{}
		})
		handles = append(handles, h)
	}

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	got := maxInFlight
	mu.Unlock()
	if got > cap {
		t.Fatalf("expected at most %d concurrent workers, saw %d", cap, got)
	}
	close(release)

	cx := &task.Context{Waker: task.NewWaker(func() {})}
	_ = handles
	_ = cx
}
