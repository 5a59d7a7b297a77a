//go:build !(darwin || dragonfly || freebsd || linux || netbsd || openbsd)

package lower

type syscalls struct {
	write          int64
	mmap           int64
	stdout         int64
	protReadWrite  int64
	mapPrivateAnon int64
}

// hostSyscalls is nil here; importing an intrinsic fails with
// ErrUnsupportedHost.
var hostSyscalls *syscalls
