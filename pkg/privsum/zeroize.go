package privsum

import "runtime"

// ZeroizeBytes overwrites the provided slice with zeros and prevents compiler
// dead store elimination using runtime.KeepAlive.
//
// The engine uses it to wipe wire frames after the share material they carry
// has been parsed or handed to the transport. Go's garbage collector may
// still have copied the buffer, so this is best-effort hygiene rather than a
// guarantee, per the pattern discussed in golang/go#33325.
func ZeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	// Prevent dead store elimination per golang/go#33325
	runtime.KeepAlive(buf)
}
