package gateway

import (
	"bytes"
	"sync"
)

// bufferPool is a synchronized bytes.Buffer pool, reused across inbound
// frames to avoid allocating per message. Grounded on
// wrapper/socket/bpool.go's get/put pair.
var bufferPool sync.Pool

func getBuffer() *bytes.Buffer {
	if b := bufferPool.Get(); b != nil {
		return b.(*bytes.Buffer)
	}

	return new(bytes.Buffer)
}

func putBuffer(b *bytes.Buffer) {
	b.Reset()
	bufferPool.Put(b)
}
