package encode

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/gen2brain/x264-go"

	"github.com/loopforge/loopforge/common"
)

// h264Encoder is the production Encoder: x264 software encode tuned for
// zero-latency so every Encode call yields one complete access unit, muxed
// into fragmented MP4 on a separate goroutine. Container errors surface
// through Flush/Close, never mid-frame.
type h264Encoder struct {
	cfg    Config
	enc    *x264.Encoder
	buf    *bytes.Buffer
	aus    chan []byte
	done   chan struct{}
	errMu  sync.Mutex
	muxErr error
	closed bool
}

var _ Encoder = &h264Encoder{}

// NewH264Encoder creates the default MP4/H.264 encoder. It satisfies
// Factory.
//
// Parameters:
//   - cfg: output dimensions, frame rate and rate-control hints
//   - sink: destination for the muxed container bytes
//
// Returns:
//   - Encoder: the encoder, nil on error
//   - error: error if the underlying codec rejects the configuration
func NewH264Encoder(cfg Config, sink Sink) (Encoder, error) {
	if cfg.Width < 2 || cfg.Height < 2 || cfg.FPS < 1 {
		return nil, fmt.Errorf("invalid encode config %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	buf := &bytes.Buffer{}
	enc, err := x264.NewEncoder(buf, &x264.Options{
		Width:     cfg.Width,
		Height:    cfg.Height,
		FrameRate: cfg.FPS,
		Tune:      "zerolatency",
		Preset:    "veryfast",
		Profile:   "high",
		LogLevel:  x264.LogError,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating H.264 encoder: %w", err)
	}

	h := &h264Encoder{
		cfg:  cfg,
		enc:  enc,
		buf:  buf,
		aus:  make(chan []byte, 16),
		done: make(chan struct{}),
	}
	go h.muxLoop(NewMuxer(sink, cfg.FPS))
	return h, nil
}

// muxLoop drains access units into the container. The first error is stored
// and later units are discarded so the producer never blocks on a dead sink.
func (h *h264Encoder) muxLoop(mux *Muxer) {
	defer close(h.done)
	for au := range h.aus {
		if h.storedErr() != nil {
			continue
		}
		if err := mux.WriteAccessUnit(au); err != nil {
			h.storeErr(err)
		}
	}
}

func (h *h264Encoder) storedErr() error {
	h.errMu.Lock()
	defer h.errMu.Unlock()
	return h.muxErr
}

func (h *h264Encoder) storeErr(err error) {
	h.errMu.Lock()
	if h.muxErr == nil {
		h.muxErr = err
	}
	h.errMu.Unlock()
}

// Encode submits one frame. The zero-latency tune guarantees the codec
// emits the matching access unit before returning, so the buffer holds
// exactly one unit per call.
func (h *h264Encoder) Encode(frame *common.Frame) error {
	if h.closed {
		return ErrClosed
	}
	if frame.Width != h.cfg.Width || frame.Height != h.cfg.Height {
		return fmt.Errorf("frame is %dx%d, encoder expects %dx%d",
			frame.Width, frame.Height, h.cfg.Width, h.cfg.Height)
	}
	img := &image.RGBA{
		Pix:    frame.Pix,
		Stride: frame.Width * 4,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}
	if err := h.enc.Encode(img); err != nil {
		return fmt.Errorf("error encoding frame: %w", err)
	}
	h.forwardBuffered()
	return nil
}

// forwardBuffered hands any bytes the codec produced to the mux goroutine.
func (h *h264Encoder) forwardBuffered() {
	if h.buf.Len() == 0 {
		return
	}
	au := append([]byte(nil), h.buf.Bytes()...)
	h.buf.Reset()
	h.aus <- au
}

// Flush drains delayed codec output, waits for the container to catch up and
// re-raises the first stored mux error.
func (h *h264Encoder) Flush() error {
	if h.closed {
		return ErrClosed
	}
	if err := h.enc.Flush(); err != nil {
		return fmt.Errorf("error flushing encoder: %w", err)
	}
	h.forwardBuffered()
	close(h.aus)
	<-h.done
	h.closed = true
	return h.storedErr()
}

// Close releases the codec. If Flush was skipped it is performed first so
// the container is always finalized.
func (h *h264Encoder) Close() error {
	var flushErr error
	if !h.closed {
		flushErr = h.Flush()
	}
	if err := h.enc.Close(); err != nil {
		return fmt.Errorf("error closing encoder: %w", err)
	}
	return flushErr
}
