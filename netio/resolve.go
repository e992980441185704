// Package netio implements spec.md §4.7's non-blocking TCP surface,
// grounded on original_source/src/net.rs: a raw-syscall TcpSocket/
// TcpStream pair (no net.Dial — connect is driven through the Reactor
// directly, exactly as the original drives it through Registration),
// plus DNS resolution dispatched onto the thread pool with a
// literal-address fast path.
package netio

import (
	"fmt"
	"net"

	"github.com/kelthar/nebula/runtime"
	"github.com/kelthar/nebula/task"
)

// ResolveResult is what resolving a host:port pair produces: zero or
// more addresses, or an error. Mirrors original_source's
// ToSocketAddrs::to_socket_addrs.
type ResolveResult struct {
	Addrs []*net.TCPAddr
	Err   error
}

// ResolveTCPAddr resolves hostport to a TCP address; on success Addrs
// holds exactly one entry (the one net.ResolveTCPAddr picks). If
// hostport already names a literal IP and port it resolves
// synchronously (the Ready branch original_source's str impl takes
// when SocketAddr::from_str succeeds); otherwise the lookup runs on
// the thread pool via runtime.SpawnBlocking, exactly as
// original_source's to_socket_addrs helper spawn_blocking's the
// std::net::ToSocketAddrs call.
func ResolveTCPAddr(hostport string) (task.Future[ResolveResult], error) {
	if literalHost(hostport) {
		addr, err := net.ResolveTCPAddr("tcp", hostport)
		if err != nil {
			return readyResolve(ResolveResult{Err: err}), nil
		}
		return readyResolve(ResolveResult{Addrs: []*net.TCPAddr{addr}}), nil
	}

	handle, err := runtime.SpawnBlocking(func() ResolveResult {
		addr, err := net.ResolveTCPAddr("tcp", hostport)
		if err != nil {
			return ResolveResult{Err: err}
		}
		return ResolveResult{Addrs: []*net.TCPAddr{addr}}
	})
	if err != nil {
		return nil, err
	}
	return &resolveFuture{handle: handle}, nil
}

func literalHost(hostport string) bool {
	host, _, err := net.SplitHostPort(hostport)
	if err != nil {
		return false
	}
	return net.ParseIP(host) != nil
}

// readyResolve wraps an already-computed ResolveResult as a
// task.Future that is Ready on its first poll.
func readyResolve(r ResolveResult) task.Future[ResolveResult] {
	return task.FutureFunc[ResolveResult](func(*task.Context) (ResolveResult, bool) {
		return r, true
	})
}

// resolveFuture unwraps a JoinHandle[ResolveResult] from the thread
// pool into a plain task.Future[ResolveResult]. A recovered panic from
// the pool worker (which should not occur under normal operation,
// since net.ResolveTCPAddr reports failures as errors, not panics) is
// re-raised here rather than silently swallowed.
type resolveFuture struct {
	handle *task.JoinHandle[ResolveResult]
}

func (f *resolveFuture) Poll(cx *task.Context) (ResolveResult, bool) {
	out, ok := f.handle.Poll(cx)
	if !ok {
		return ResolveResult{}, false
	}
	if out.Err != nil {
		panic(fmt.Sprintf("nebula/netio: dns lookup panicked: %v", out.Err.Panic))
	}
	return out.Value, true
}
