package encode

import (
	"fmt"

	"github.com/Eyevinn/mp4ff/avc"
	"github.com/Eyevinn/mp4ff/mp4"
)

const (
	muxTrackID   = 1
	muxTimescale = 90000
)

// Muxer wraps Annex B access units from the H.264 encoder into a fragmented
// MP4 stream: one init segment once parameter sets are known, then one
// fragment per access unit. Writing per access unit keeps memory flat no
// matter how long the export is.
type Muxer struct {
	sink        Sink
	sampleDur   uint32
	spsNALUs    [][]byte
	ppsNALUs    [][]byte
	initWritten bool
	seqNr       uint32
	decTime     uint64
}

// NewMuxer creates a Muxer writing to sink at the given frame rate.
//
// Parameters:
//   - sink: destination for the muxed bytes
//   - fps: constant frame rate of the incoming access units
//
// Returns:
//   - *Muxer: the muxer, never nil
func NewMuxer(sink Sink, fps int) *Muxer {
	if fps < 1 {
		fps = 1
	}
	return &Muxer{
		sink:      sink,
		sampleDur: uint32(muxTimescale / fps),
		seqNr:     1,
	}
}

// WriteAccessUnit consumes one Annex B access unit and emits it as a single
// MP4 fragment. Parameter sets found in the stream are captured for the init
// segment and stripped from the sample payload.
//
// Parameters:
//   - au: one complete Annex B access unit
//
// Returns:
//   - error: error if the init segment or fragment cannot be written
func (m *Muxer) WriteAccessUnit(au []byte) error {
	nalus := avc.ExtractNalusFromByteStream(au)
	if len(nalus) == 0 {
		return nil
	}

	var payload []byte
	isSync := false
	for _, nalu := range nalus {
		switch avc.GetNaluType(nalu[0]) {
		case avc.NALU_SPS:
			m.spsNALUs = appendParamSet(m.spsNALUs, nalu)
			continue
		case avc.NALU_PPS:
			m.ppsNALUs = appendParamSet(m.ppsNALUs, nalu)
			continue
		case avc.NALU_AUD:
			continue
		case avc.NALU_IDR:
			isSync = true
		}
		payload = appendLengthPrefixed(payload, nalu)
	}
	if len(payload) == 0 {
		return nil
	}

	if !m.initWritten {
		if err := m.writeInit(); err != nil {
			return err
		}
	}

	frag, err := mp4.CreateFragment(m.seqNr, muxTrackID)
	if err != nil {
		return fmt.Errorf("error creating fragment %d: %w", m.seqNr, err)
	}
	flags := mp4.NonSyncSampleFlags
	if isSync {
		flags = mp4.SyncSampleFlags
	}
	frag.AddFullSample(mp4.FullSample{
		Sample: mp4.Sample{
			Flags: flags,
			Dur:   m.sampleDur,
			Size:  uint32(len(payload)),
		},
		DecodeTime: m.decTime,
		Data:       payload,
	})
	if err := frag.Encode(m.sink); err != nil {
		return fmt.Errorf("error writing fragment %d: %w", m.seqNr, err)
	}
	m.seqNr++
	m.decTime += uint64(m.sampleDur)
	return nil
}

// writeInit emits the init segment from the captured parameter sets.
func (m *Muxer) writeInit() error {
	if len(m.spsNALUs) == 0 || len(m.ppsNALUs) == 0 {
		return fmt.Errorf("coded frame arrived before SPS/PPS")
	}
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(muxTimescale, "video", "und")
	trak := init.Moov.Trak
	if err := trak.SetAVCDescriptor("avc1", m.spsNALUs, m.ppsNALUs, true); err != nil {
		return fmt.Errorf("error building AVC descriptor: %w", err)
	}
	if err := init.Encode(m.sink); err != nil {
		return fmt.Errorf("error writing init segment: %w", err)
	}
	m.initWritten = true
	return nil
}

// appendParamSet stores a parameter set once, ignoring repeats of the same
// bytes the encoder emits ahead of each IDR.
func appendParamSet(sets [][]byte, nalu []byte) [][]byte {
	for _, s := range sets {
		if string(s) == string(nalu) {
			return sets
		}
	}
	cp := append([]byte(nil), nalu...)
	return append(sets, cp)
}

// appendLengthPrefixed converts one NALU to the 4-byte length-field format
// MP4 samples use.
func appendLengthPrefixed(dst, nalu []byte) []byte {
	n := len(nalu)
	dst = append(dst, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	return append(dst, nalu...)
}
