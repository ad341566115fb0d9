package dragondb

import (
	"github.com/valyala/bytebufferpool"
)

// SQL text is assembled in pooled buffers.

func getBuffer() *bytebufferpool.ByteBuffer {
	return bytebufferpool.Get()
}

func putBuffer(buf *bytebufferpool.ByteBuffer) {
	bytebufferpool.Put(buf)
}
