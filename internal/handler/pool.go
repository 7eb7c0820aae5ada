package handler

import (
	"bytes"
	"sync"
)

// Response bodies here are small (quest views, history pages, event display
// lines), so JSON encoding runs through pooled buffers instead of allocating
// per request.
var responseBuffers = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

func acquireBuffer() *bytes.Buffer {
	return responseBuffers.Get().(*bytes.Buffer)
}

func releaseBuffer(buf *bytes.Buffer) {
	buf.Reset()
	responseBuffers.Put(buf)
}
