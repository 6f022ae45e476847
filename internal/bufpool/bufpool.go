// Package bufpool recycles the byte slices used to build outgoing SMB
// frames.
//
// Two size classes cover the traffic of a metadata client: small buffers
// for path queries and search requests, and frame buffers sized to the
// largest NetBIOS payload a server normally accepts. Larger requests are
// allocated directly and never pooled.
//
//	buf := bufpool.Get(n)
//	defer bufpool.Put(buf)
package bufpool

import "sync"

const (
	// SmallSize fits any QUERY_PATH_INFORMATION or FIND request with a
	// path of a few hundred characters.
	SmallSize = 1 << 10

	// FrameSize fits one full SMB1 frame at the common 64KiB buffer size.
	FrameSize = 64 << 10
)

// Pool hands out byte slices from two size classes.
type Pool struct {
	small     sync.Pool
	frame     sync.Pool
	smallSize int
	frameSize int
}

// NewPool creates a pool with the given class sizes. Non-positive sizes
// select the package defaults.
func NewPool(smallSize, frameSize int) *Pool {
	if smallSize <= 0 {
		smallSize = SmallSize
	}
	if frameSize <= 0 {
		frameSize = FrameSize
	}
	p := &Pool{smallSize: smallSize, frameSize: frameSize}
	p.small.New = func() any {
		buf := make([]byte, p.smallSize)
		return &buf
	}
	p.frame.New = func() any {
		buf := make([]byte, p.frameSize)
		return &buf
	}
	return p
}

// Get returns a slice of length size. Its capacity identifies the class it
// came from; the caller must hand it back with Put once done.
func (p *Pool) Get(size int) []byte {
	var bufPtr *[]byte
	switch {
	case size <= p.smallSize:
		bufPtr = p.small.Get().(*[]byte)
	case size <= p.frameSize:
		bufPtr = p.frame.Get().(*[]byte)
	default:
		return make([]byte, size)
	}
	return (*bufPtr)[:size]
}

// Put returns buf to its class. Slices that did not come from Get are
// dropped.
func (p *Pool) Put(buf []byte) {
	full := buf[:cap(buf)]
	switch cap(buf) {
	case p.smallSize:
		p.small.Put(&full)
	case p.frameSize:
		p.frame.Put(&full)
	}
}

var global = NewPool(0, 0)

// Get returns a slice of length size from the shared pool.
func Get(size int) []byte { return global.Get(size) }

// Put returns buf to the shared pool.
func Put(buf []byte) { global.Put(buf) }
