package video

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// H.264 NAL unit types this pipeline cares about.
const (
	nalSliceNonIDR = 1 // coded slice, non-IDR
	nalSliceA      = 2
	nalSliceB      = 3
	nalSliceC      = 4
	nalSliceIDR    = 5 // keyframe slice
	nalSEI         = 6
	nalSPS         = 7
	nalPPS         = 8
	nalAUD         = 9
)

// ErrNoParameterSets is returned when a keyframe's byte stream does not
// contain both an SPS and a PPS NAL unit.
var ErrNoParameterSets = errors.New("video: annex-b stream missing SPS/PPS")

// splitNALUnits splits an Annex-B byte stream into NAL units, scanning for
// 3-byte (00 00 01) and 4-byte (00 00 00 01) start codes. The returned
// slices are views into data.
func splitNALUnits(data []byte) [][]byte {
	var nals [][]byte

	start := -1
	i := 0
	for i+2 < len(data) {
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			if start >= 0 {
				end := i
				// A 4-byte start code leaves one zero byte
				// trailing the previous NAL.
				if end > start && data[end-1] == 0 {
					end--
				}
				if end > start {
					nals = append(nals, data[start:end])
				}
			}
			start = i + 3
			i += 3
			continue
		}
		i++
	}
	if start >= 0 && start < len(data) {
		nals = append(nals, data[start:])
	}
	return nals
}

// nalType extracts the NAL unit type from the first header byte.
func nalType(nal []byte) byte {
	if len(nal) == 0 {
		return 0
	}
	return nal[0] & 0x1F
}

// isVCLOrSEI reports whether a NAL unit may appear in-band once parameter
// sets have been supplied out of band: VCL types 1-5 plus SEI type 6.
// SPS/PPS/AUD must not reappear in the AVCC stream.
func isVCLOrSEI(t byte) bool {
	return t >= nalSliceNonIDR && t <= nalSEI
}

// extractParameterSets pulls the first SPS and PPS NAL units out of an
// Annex-B stream. Both must be present for decoder initialization. An SPS
// shorter than its fixed header is treated as absent.
func extractParameterSets(data []byte) (sps, pps []byte, err error) {
	for _, nal := range splitNALUnits(data) {
		switch nalType(nal) {
		case nalSPS:
			if sps == nil && len(nal) >= 4 {
				sps = nal
			}
		case nalPPS:
			if pps == nil {
				pps = nal
			}
		}
		if sps != nil && pps != nil {
			return sps, pps, nil
		}
	}
	return nil, nil, ErrNoParameterSets
}

// codecProfile derives the codec string for a hardware decoder from the
// SPS's profile_idc, constraint flags, and level_idc bytes, in the
// "avc1.PPCCLL" form used by decoder configuration APIs.
func codecProfile(sps []byte) string {
	if len(sps) < 4 {
		return "avc1.42E01E" // constrained baseline 3.0 fallback
	}
	return fmt.Sprintf("avc1.%02X%02X%02X", sps[1], sps[2], sps[3])
}

// buildDecoderConfig synthesizes an ISO 14496-15 AVCDecoderConfigurationRecord
// ("avcC") out of one SPS and one PPS. This is handed to the decoder as
// out-of-band configuration, which is why parameter sets are stripped from
// the in-band stream afterwards.
func buildDecoderConfig(sps, pps []byte) []byte {
	rec := make([]byte, 0, 11+len(sps)+len(pps))
	rec = append(rec,
		1,      // configurationVersion
		sps[1], // AVCProfileIndication
		sps[2], // profile_compatibility
		sps[3], // AVCLevelIndication
		0xFF,   // reserved (6 bits) + lengthSizeMinusOne = 3
		0xE1,   // reserved (3 bits) + numOfSequenceParameterSets = 1
	)
	rec = append(rec, byte(len(sps)>>8), byte(len(sps)))
	rec = append(rec, sps...)
	rec = append(rec, 1) // numOfPictureParameterSets
	rec = append(rec, byte(len(pps)>>8), byte(len(pps)))
	rec = append(rec, pps...)
	return rec
}

// annexBToAVCC rewrites an Annex-B access unit into AVCC framing: NAL units
// are filtered to VCL types 1-5 and SEI type 6, and each kept NAL is
// re-emitted with a 4-byte big-endian length prefix in place of its start
// code.
func annexBToAVCC(data []byte) []byte {
	nals := splitNALUnits(data)

	size := 0
	for _, nal := range nals {
		if isVCLOrSEI(nalType(nal)) {
			size += 4 + len(nal)
		}
	}

	out := make([]byte, 0, size)
	var lenBuf [4]byte
	for _, nal := range nals {
		if !isVCLOrSEI(nalType(nal)) {
			continue
		}
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(nal)))
		out = append(out, lenBuf[:]...)
		out = append(out, nal...)
	}
	return out
}
