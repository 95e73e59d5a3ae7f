package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/zudsniper/gemini-transcribe/internal/media"
)

// Splitter materializes a chunk plan as files on disk. Probe and Cut default
// to the ffmpeg/ffprobe wrappers and are injectable for tests.
type Splitter struct {
	ChunksDir string
	ChunkDur  float64
	Overlap   float64
	Log       *zap.SugaredLogger

	Probe func(ctx context.Context, path string) (float64, error)
	Cut   func(ctx context.Context, src, dst string, startSec, durSec float64) error
}

func NewSplitter(chunksDir string, chunkDur, overlap float64, log *zap.SugaredLogger) *Splitter {
	return &Splitter{
		ChunksDir: chunksDir,
		ChunkDur:  chunkDur,
		Overlap:   overlap,
		Log:       log,
		Probe:     media.Probe,
		Cut:       media.Cut,
	}
}

// Split probes the source duration, plans the chunk windows, and cuts every
// chunk file up front. One failed cut aborts the whole split so no remote
// work is ever attempted against a partial plan.
func (s *Splitter) Split(ctx context.Context, audioPath string) ([]Chunk, error) {
	total, err := s.Probe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", audioPath, err)
	}
	s.Log.Infof("total audio duration: %.1f minutes", total/60)

	chunks, err := Plan(total, s.ChunkDur, s.Overlap)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.ChunksDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunks dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	ext := filepath.Ext(audioPath)
	for i := range chunks {
		c := &chunks[i]
		// The cut is a stream copy, so the chunk keeps the source extension.
		c.Path = filepath.Join(s.ChunksDir, fmt.Sprintf("%s_chunk_%02d%s", stem, c.Index, ext))
		if err := s.Cut(ctx, audioPath, c.Path, c.Start, s.ChunkDur); err != nil {
			return nil, fmt.Errorf("cut chunk %d: %w", c.Index, err)
		}
		s.Log.Infof("created chunk %d: %.1fm - %.1fm", c.Index, c.Start/60, c.End/60)
	}
	s.Log.Infof("created %d chunks", len(chunks))
	return chunks, nil
}
