package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zudsniper/gemini-transcribe/internal/checkpoint"
	"github.com/zudsniper/gemini-transcribe/internal/config"
	"github.com/zudsniper/gemini-transcribe/internal/gemini"
	"github.com/zudsniper/gemini-transcribe/internal/output"
	"github.com/zudsniper/gemini-transcribe/internal/prompt"
	"github.com/zudsniper/gemini-transcribe/internal/segment"
)

// Remote is the slice of the Gemini client the pipeline drives.
type Remote interface {
	Upload(ctx context.Context, path, displayName, mimeType string) (*gemini.File, error)
	AwaitReady(ctx context.Context, file *gemini.File) (*gemini.File, error)
	Generate(ctx context.Context, req gemini.GenerateRequest) (string, error)
}

// Splitter materializes the chunk plan for a source file.
type Splitter interface {
	Split(ctx context.Context, audioPath string) ([]segment.Chunk, error)
}

// Options configures a Pipeline. Prompt templates are passed in explicitly
// so concurrent runs never share mutable defaults.
type Options struct {
	Remote   Remote
	Splitter Splitter
	Store    *checkpoint.Store
	Log      *zap.SugaredLogger

	Speakers      []string
	Instructions  string
	MergeTemplate string
	Header        string

	ChunkGen config.GenerationSettings
	MergeGen config.GenerationSettings
	Parallel int
}

// Pipeline drives one transcription run: split, transcribe or resume each
// chunk, merge, write.
type Pipeline struct {
	opts Options
}

func New(opts Options) *Pipeline {
	if opts.MergeTemplate == "" {
		opts.MergeTemplate = prompt.DefaultMerge
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	return &Pipeline{opts: opts}
}

// Run state machine. Stages are strictly forward; failed is reachable from
// every working state and the state at failure names the stage in the error.
func newRunFSM() *fsm.FSM {
	working := []string{"start", "split", "transcribe", "merge", "write"}
	return fsm.NewFSM(
		"start",
		fsm.Events{
			{Name: "split", Src: []string{"start"}, Dst: "split"},
			{Name: "transcribe", Src: []string{"split"}, Dst: "transcribe"},
			{Name: "merge", Src: []string{"transcribe"}, Dst: "merge"},
			{Name: "write", Src: []string{"merge"}, Dst: "write"},
			{Name: "finish", Src: []string{"write"}, Dst: "done"},
			{Name: "fail", Src: working, Dst: "failed"},
		},
		fsm.Callbacks{},
	)
}

// Run transcribes audioPath and writes the final document to outPath.
// Checkpoints written before a failure are left in place so a re-run
// resumes from the failure point.
func (p *Pipeline) Run(ctx context.Context, audioPath, outPath string) error {
	runID := uuid.NewString()[:8]
	log := p.opts.Log.With("run", runID)
	m := newRunFSM()

	fail := func(err error) error {
		stage := m.Current()
		m.Event(ctx, "fail")
		return fmt.Errorf("%s: %w", stage, err)
	}

	// Template problems are configuration, not remote failures; reject them
	// before any file or network work.
	if err := prompt.ValidateMergeTemplate(p.opts.MergeTemplate); err != nil {
		return fail(err)
	}

	m.Event(ctx, "split")
	log.Infof("step 1: splitting audio into chunks")
	chunks, err := p.opts.Splitter.Split(ctx, audioPath)
	if err != nil {
		return fail(err)
	}

	m.Event(ctx, "transcribe")
	log.Infof("step 2: loading/transcribing %d chunks", len(chunks))
	transcripts, err := p.transcribeAll(ctx, log, chunks)
	if err != nil {
		return fail(err)
	}

	m.Event(ctx, "merge")
	log.Infof("step 3: merging and final formatting pass")
	merged, err := p.merge(ctx, transcripts)
	if err != nil {
		return fail(err)
	}

	m.Event(ctx, "write")
	if err := output.Write(outPath, p.opts.Header, merged); err != nil {
		return fail(err)
	}
	m.Event(ctx, "finish")
	log.Infof("final transcript saved to %s (%d chars)", outPath, len(merged))
	return nil
}

// transcribeAll produces the transcript for every chunk, skipping remote
// work for indices the checkpoint store already has. Chunks are independent,
// so they run under a bounded worker pool; results land in an
// index-addressed slice so merge input order never depends on completion
// order.
func (p *Pipeline) transcribeAll(ctx context.Context, log *zap.SugaredLogger, chunks []segment.Chunk) ([]string, error) {
	chunkPrompt := prompt.Chunk(p.opts.Speakers, p.opts.Instructions)
	transcripts := make([]string, len(chunks))
	total := len(chunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Parallel)
	for _, c := range chunks {
		c := c
		g.Go(func() error {
			text, err := p.transcribeChunk(gctx, log, c, total, chunkPrompt)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", c.Index, err)
			}
			transcripts[c.Index-1] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge may only proceed with a transcript for every index 1..N.
	for i, t := range transcripts {
		if t == "" {
			return nil, fmt.Errorf("no transcript produced for chunk %d", i+1)
		}
	}
	return transcripts, nil
}

func (p *Pipeline) transcribeChunk(ctx context.Context, log *zap.SugaredLogger, c segment.Chunk, total int, chunkPrompt string) (string, error) {
	if p.opts.Store.Has(c.Index) {
		text, err := p.opts.Store.Load(c.Index)
		if err != nil {
			return "", err
		}
		log.Infof("chunk %d/%d: loaded checkpoint (%d chars)", c.Index, total, len(text))
		return text, nil
	}

	log.Infof("chunk %d/%d: processing (%.0fm - %.0fm)", c.Index, total, c.Start/60, c.End/60)
	displayName := strings.TrimSuffix(filepath.Base(c.Path), filepath.Ext(c.Path))
	mime := gemini.MimeType(c.Path)

	file, err := p.opts.Remote.Upload(ctx, c.Path, displayName, mime)
	if err != nil {
		return "", err
	}
	file, err = p.opts.Remote.AwaitReady(ctx, file)
	if err != nil {
		return "", err
	}

	log.Infof("chunk %d/%d: transcribing", c.Index, total)
	text, err := p.opts.Remote.Generate(ctx, gemini.GenerateRequest{
		Prompt:          chunkPrompt,
		File:            file,
		MimeType:        mime,
		Temperature:     p.opts.ChunkGen.Temperature,
		MaxOutputTokens: p.opts.ChunkGen.MaxOutputTokens,
		Timeout:         time.Duration(p.opts.ChunkGen.TimeoutSec) * time.Second,
	})
	if err != nil {
		return "", err
	}
	if err := p.opts.Store.Save(c.Index, text); err != nil {
		return "", err
	}
	log.Infof("chunk %d/%d: saved transcript (%d chars)", c.Index, total, len(text))
	return text, nil
}

// merge reconciles all chunk transcripts in one generation call with a
// larger budget and a longer timeout than the per-chunk calls.
func (p *Pipeline) merge(ctx context.Context, transcripts []string) (string, error) {
	combined := prompt.Combine(transcripts)
	return p.opts.Remote.Generate(ctx, gemini.GenerateRequest{
		Prompt:          prompt.RenderMerge(p.opts.MergeTemplate, combined),
		Temperature:     p.opts.MergeGen.Temperature,
		MaxOutputTokens: p.opts.MergeGen.MaxOutputTokens,
		Timeout:         time.Duration(p.opts.MergeGen.TimeoutSec) * time.Second,
	})
}
