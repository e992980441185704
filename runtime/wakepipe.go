package runtime

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/kelthar/nebula/internal/reactor"
	"github.com/kelthar/nebula/task"
)

// wakePipe is the cross-thread wakeup carrier described in spec.md
// §4.1: a real pipe(2) (not an eventfd — the teacher's own
// wakeup_linux.go uses eventfd, which this module deliberately does
// not reuse; see DESIGN.md). The read end is non-blocking and
// registered with the Reactor; the write end stays blocking. A waker
// invoked off the executor goroutine writes its task id as eight
// native-endian bytes; the dedicated drain waker re-arms read interest
// after each drain, since poll(2) is level-triggered.
type wakePipe struct {
	r, w int
	reg  *reactor.Registration
}

func newWakePipe(react *reactor.Reactor, onIDs func([]uint64)) (*wakePipe, error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return nil, fmt.Errorf("nebula/runtime: pipe2: %w", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, fmt.Errorf("nebula/runtime: setnonblock: %w", err)
	}
	reg, err := react.Register(fds[0])
	if err != nil {
		unix.Close(fds[0])
		unix.Close(fds[1])
		return nil, err
	}

	wp := &wakePipe{r: fds[0], w: fds[1], reg: reg}
	var waker *task.Waker
	waker = task.NewWaker(func() {
		wp.drain(onIDs)
		wp.reg.WakeWhen(reactor.Read, waker)
	})
	wp.reg.WakeWhen(reactor.Read, waker)
	return wp, nil
}

// drain reads every available id off the pipe in 512-byte chunks
// (spec.md §4.1 rationale: "writing fixed-size ids avoids a shared
// lock") and hands the batch to onIDs.
func (wp *wakePipe) drain(onIDs func([]uint64)) {
	var buf [512]byte
	var ids []uint64
	for {
		n, err := unix.Read(wp.r, buf[:])
		if n > 0 {
			for off := 0; off+8 <= n; off += 8 {
				ids = append(ids, binary.NativeEndian.Uint64(buf[off:off+8]))
			}
		}
		if err != nil || n <= 0 {
			break
		}
		if n < len(buf) {
			break
		}
	}
	if len(ids) > 0 {
		onIDs(ids)
	}
}

// notify writes id to the blocking write end, for use by wakers
// invoked from a goroutine other than the executor's own.
func (wp *wakePipe) notify(id uint64) error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], id)
	_, err := unix.Write(wp.w, buf[:])
	return err
}

func (wp *wakePipe) close() {
	wp.reg.Close()
	unix.Close(wp.r)
	unix.Close(wp.w)
}
