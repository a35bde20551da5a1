// Package audio holds best-effort audio helpers. Duration estimation here is
// a heuristic over payload size, not a codec parser.
package audio

import "strings"

// Rough bytes-per-second rates for common voice recording formats.
var byteRates = map[string]float64{
	"audio/webm": 6000,  // opus ~48kbps
	"audio/ogg":  6000,  // opus
	"audio/mpeg": 16000, // mp3 ~128kbps
	"audio/mp4":  16000, // aac
	"audio/wav":  176400, // 44.1kHz 16-bit stereo pcm
}

const defaultByteRate = 12000

// EstimateDurationSeconds guesses a clip's duration from its size and mime
// type. The result is advisory only; callers must not rely on its accuracy.
func EstimateDurationSeconds(data []byte, mimeType string) float64 {
	if len(data) == 0 {
		return 0
	}
	rate := float64(defaultByteRate)
	for prefix, r := range byteRates {
		if strings.HasPrefix(mimeType, prefix) {
			rate = r
			break
		}
	}
	return float64(len(data)) / rate
}

// MimeTypeForReference maps a file extension to a mime type, defaulting to
// webm (the browser recorder default).
func MimeTypeForReference(reference string) string {
	switch {
	case strings.HasSuffix(reference, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(reference, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(reference, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(reference, ".m4a"), strings.HasSuffix(reference, ".mp4"):
		return "audio/mp4"
	default:
		return "audio/webm"
	}
}
