package transport

import "bytes"

// limitedBuffer collects output up to limit bytes. Once the limit is passed
// it calls onExceed once and, unless discard is set, fails every later write.
type limitedBuffer struct {
	buf      bytes.Buffer
	limit    int64
	exceeded bool
	discard  bool
	onExceed func()
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if b.exceeded {
		if b.discard {
			return len(p), nil
		}
		return 0, ErrOutputLimit
	}
	if b.limit > 0 && int64(b.buf.Len())+int64(len(p)) > b.limit {
		b.exceeded = true
		if b.onExceed != nil {
			b.onExceed()
		}
		if b.discard {
			room := b.limit - int64(b.buf.Len())
			b.buf.Write(p[:room])
			return len(p), nil
		}
		return 0, ErrOutputLimit
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) String() string {
	return b.buf.String()
}

func (b *limitedBuffer) Exceeded() bool {
	return b.exceeded
}
