package polish

import (
	"context"
	"io"
)

// Stream yields decoded text chunks from one polish request. Recv returns
// io.EOF when the stream is exhausted; Close cancels production and releases
// the underlying connection. A closed stream never yields another chunk.
type Stream interface {
	Recv() (string, error)
	Close() error
}

type segment struct {
	text string
	err  error
}

type chunkStream struct {
	ctx    context.Context
	cancel context.CancelFunc
	segs   <-chan segment
}

// newChunkStream runs the producer in a goroutine and exposes its output as
// a Stream. A non-nil error from run is delivered as the final Recv result.
func newChunkStream(ctx context.Context, run func(context.Context, chan<- segment) error) Stream {
	streamCtx, cancel := context.WithCancel(ctx)
	ch := make(chan segment, 16)
	go func() {
		defer close(ch)
		if err := run(streamCtx, ch); err != nil {
			select {
			case ch <- segment{err: err}:
			case <-streamCtx.Done():
			}
		}
	}()
	return &chunkStream{ctx: streamCtx, cancel: cancel, segs: ch}
}

func (s *chunkStream) Recv() (string, error) {
	// Non-blocking drain: consume any buffered segment before checking
	// ctx.Done(), so chunks produced just before cancellation are not lost
	// to the race between the two channels.
	select {
	case seg, ok := <-s.segs:
		return unpack(seg, ok)
	default:
	}

	select {
	case <-s.ctx.Done():
		return "", s.ctx.Err()
	case seg, ok := <-s.segs:
		return unpack(seg, ok)
	}
}

func unpack(seg segment, ok bool) (string, error) {
	if !ok {
		return "", io.EOF
	}
	if seg.err != nil {
		return "", seg.err
	}
	return seg.text, nil
}

func (s *chunkStream) Close() error {
	s.cancel()
	return nil
}
