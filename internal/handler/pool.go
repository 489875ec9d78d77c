package handler

import (
	"bytes"
	"sync"
)

const (
	// sized for a full garden snapshot with six plots
	initialBufferSize = 2048
	// buffers grown past this are left for the GC
	maxPooledBufferSize = 64 << 10
)

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferSize {
		return
	}
	buf.Reset()
	bufferPool.Put(buf)
}
