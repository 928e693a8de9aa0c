package capture

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/loopforge/loopforge/common"
)

// assembleLoop folds the overlap tail back over the head of the sequence.
// The first blendFrames output frames are cross-faded toward the frames
// captured past the nominal end, heaviest at frame zero, so the jump from
// the last frame back to the first lands on near-identical pixels. The
// input slice is not modified; blended frames are fresh allocations.
func assembleLoop(captured []*common.Frame, frameCount, blendFrames int) []*common.Frame {
	out := make([]*common.Frame, frameCount)
	copy(out, captured[:frameCount])
	for i := 0; i < blendFrames; i++ {
		w := float64(blendFrames-i) / float64(blendFrames+1)
		out[i] = mixFrames(captured[i], captured[frameCount+i], w)
	}
	return out
}

// assemblePingPong plays the captured half forward then backward. The
// turnaround endpoints are not repeated, and the palindrome is trimmed to
// exactly frameCount frames.
func assemblePingPong(captured []*common.Frame, frameCount int) []*common.Frame {
	out := make([]*common.Frame, 0, frameCount)
	out = append(out, captured...)
	for i := len(captured) - 2; i >= 1 && len(out) < frameCount; i-- {
		out = append(out, captured[i])
	}
	return out[:frameCount]
}

// mixFrames lerps b over a with weight w in [0,1]. Frames must share
// dimensions.
func mixFrames(a, b *common.Frame, w float64) *common.Frame {
	out := common.NewFrame(a.Width, a.Height)
	wb := uint32(w * 256)
	wa := 256 - wb
	for i := range a.Pix {
		out.Pix[i] = uint8((uint32(a.Pix[i])*wa + uint32(b.Pix[i])*wb) >> 8)
	}
	return out
}

// conformFrame resizes src to w by h, cover-cropping the longer axis so the
// output fills the requested aspect ratio without letterbox bars. The
// result is always a fresh frame, detaching the capture from the host's
// reusable render buffer.
func conformFrame(src *common.Frame, w, h int) *common.Frame {
	if src.Width == w && src.Height == h {
		return src.Clone()
	}

	cropW, cropH := src.Width, src.Height
	if src.Width*h > w*src.Height {
		// Source is wider than the target: crop the sides.
		cropW = src.Height * w / h
	} else {
		cropH = src.Width * h / w
	}
	x0 := (src.Width - cropW) / 2
	y0 := (src.Height - cropH) / 2

	out := common.NewFrame(w, h)
	srcImg := &image.RGBA{
		Pix:    src.Pix,
		Stride: src.Width * 4,
		Rect:   image.Rect(0, 0, src.Width, src.Height),
	}
	dstImg := &image.RGBA{
		Pix:    out.Pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, h),
	}
	xdraw.ApproxBiLinear.Scale(dstImg, dstImg.Rect, srcImg,
		image.Rect(x0, y0, x0+cropW, y0+cropH), xdraw.Src, nil)
	return out
}
