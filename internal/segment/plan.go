package segment

import (
	"errors"
	"fmt"
)

// Chunk is one time-bounded slice of the source audio. Indices are 1-based
// and contiguous; Path is empty until the chunk has been materialized.
type Chunk struct {
	Index int
	Start float64 // seconds
	End   float64 // seconds
	Path  string
}

var (
	ErrBadDuration = errors.New("chunk duration must be positive")
	ErrBadOverlap  = errors.New("overlap must satisfy 0 <= overlap < chunk duration")
	ErrBadTotal    = errors.New("total duration must be positive")
)

// Plan computes chunk boundaries for an audio file of total seconds, split
// into chunkDur-second windows where consecutive windows share overlap
// seconds. Pure: no files are touched.
//
// The chunk that reaches the end of the audio is the last one, so a final
// window shorter than chunkDur is emitted rather than a zero-length tail.
func Plan(total, chunkDur, overlap float64) ([]Chunk, error) {
	if chunkDur <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrBadDuration, chunkDur)
	}
	if overlap < 0 || overlap >= chunkDur {
		return nil, fmt.Errorf("%w: overlap %g, chunk duration %g", ErrBadOverlap, overlap, chunkDur)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrBadTotal, total)
	}

	var chunks []Chunk
	start := 0.0
	for i := 1; ; i++ {
		end := start + chunkDur
		if end > total {
			end = total
		}
		chunks = append(chunks, Chunk{Index: i, Start: start, End: end})
		if end >= total {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}
