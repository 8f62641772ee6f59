package resource

import (
	"context"
	"io"
)

// ThrottleWriter wraps w so that every write first waits on the
// controller's upload limit. Writes larger than the limiter's burst are
// split into smaller chunks so they can never exceed it.
func ThrottleWriter(ctx context.Context, c *Controller, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &throttleWriter{ctx: ctx, c: c, w: w}
}

type throttleWriter struct {
	ctx context.Context
	c   *Controller
	w   io.Writer
}

func (t *throttleWriter) Write(p []byte) (int, error) {
	burst := t.c.ioLimiter.Burst()

	written := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > burst {
			chunk = chunk[:burst]
		}
		if err := t.c.AcquireIO(t.ctx, len(chunk)); err != nil {
			return written, err
		}
		n, err := t.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[len(chunk):]
	}
	return written, nil
}
