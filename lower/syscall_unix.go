//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

package lower

import "golang.org/x/sys/unix"

// syscalls holds the host's system call numbers and flags used by the
// intrinsics.
type syscalls struct {
	write          int64
	mmap           int64
	stdout         int64
	protReadWrite  int64
	mapPrivateAnon int64
}

var hostSyscalls = &syscalls{
	write:          unix.SYS_WRITE,
	mmap:           unix.SYS_MMAP,
	stdout:         int64(unix.Stdout),
	protReadWrite:  unix.PROT_READ | unix.PROT_WRITE,
	mapPrivateAnon: unix.MAP_PRIVATE | unix.MAP_ANON,
}
