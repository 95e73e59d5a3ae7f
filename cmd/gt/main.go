package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zudsniper/gemini-transcribe/internal/checkpoint"
	"github.com/zudsniper/gemini-transcribe/internal/config"
	"github.com/zudsniper/gemini-transcribe/internal/gemini"
	"github.com/zudsniper/gemini-transcribe/internal/logging"
	"github.com/zudsniper/gemini-transcribe/internal/pipeline"
	"github.com/zudsniper/gemini-transcribe/internal/segment"
)

const version = "0.1.0"

type stringSlice []string

func (s *stringSlice) String() string { return strings.Join(*s, ",") }
func (s *stringSlice) Set(v string) error {
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			*s = append(*s, p)
		}
	}
	return nil
}

const defaultInstructionsFile = "transcription_instructions.md"

func main() {
	var (
		outPath       string
		apiKey        string
		model         string
		chunkDuration float64
		overlap       float64
		instructions  string
		header        string
		chunksDir     string
		configFile    string
		speakers      stringSlice
		parallel      int
		quiet         bool
		showVersion   bool
	)

	flag.StringVar(&outPath, "output", "", "Output file path (default transcript.md) (-o)")
	flag.StringVar(&outPath, "o", "", "Output file path")
	flag.StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY) (-k)")
	flag.StringVar(&apiKey, "k", "", "Gemini API key")
	flag.StringVar(&model, "model", "", "Gemini model to use (-m)")
	flag.StringVar(&model, "m", "", "Gemini model to use")
	flag.Float64Var(&chunkDuration, "chunk-duration", 0, "Chunk duration in seconds (default 1200 = 20 minutes)")
	flag.Float64Var(&overlap, "overlap", -1, "Overlap between chunks in seconds (default 10)")
	flag.StringVar(&instructions, "instructions", "", "Path to custom transcription instructions file (-i)")
	flag.StringVar(&instructions, "i", "", "Path to custom transcription instructions file")
	flag.StringVar(&header, "header", "", "Header text to prepend to the transcript")
	flag.StringVar(&chunksDir, "chunks-dir", "", "Directory for audio chunks and checkpoints (default audio_chunks)")
	flag.StringVar(&configFile, "config", "", "Optional yaml config file")
	flag.Var(&speakers, "speakers", "Speaker names (comma-separated or repeatable)")
	flag.IntVar(&parallel, "parallel", 0, "Number of chunks to transcribe concurrently (default 1)")
	flag.BoolVar(&quiet, "quiet", false, "Suppress progress messages (-q)")
	flag.BoolVar(&quiet, "q", false, "Suppress progress messages")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit (-v)")
	flag.BoolVar(&showVersion, "v", false, "Print version and exit")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("gemini-transcribe %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	audioFile := flag.Arg(0)

	log := logging.New(quiet)
	defer log.Sync()

	cfg, err := config.Load(configFile)
	if err != nil {
		log.Errorf("error: %v", err)
		os.Exit(1)
	}

	// Flags override config file and env.
	if outPath != "" {
		cfg.Output = outPath
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if model != "" {
		cfg.Model = model
	}
	if chunkDuration != 0 {
		cfg.ChunkDuration = chunkDuration
	}
	if overlap >= 0 {
		cfg.Overlap = overlap
	}
	if chunksDir != "" {
		cfg.ChunksDir = chunksDir
	}
	if parallel != 0 {
		cfg.Parallel = parallel
	}

	if err := cfg.Validate(); err != nil {
		log.Errorf("error: %v", err)
		os.Exit(1)
	}
	if _, err := os.Stat(audioFile); err != nil {
		log.Errorf("error: audio file not found: %s", audioFile)
		os.Exit(1)
	}

	// Fall back to the default instructions file in the working directory.
	if instructions == "" {
		if _, err := os.Stat(defaultInstructionsFile); err == nil {
			instructions = defaultInstructionsFile
			log.Infof("using instructions from %s", defaultInstructionsFile)
		}
	}
	var instructionsText string
	if instructions != "" {
		b, err := os.ReadFile(instructions)
		if err != nil {
			log.Errorf("error: read instructions: %v", err)
			os.Exit(1)
		}
		instructionsText = string(b)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := gemini.NewClient(cfg.APIKey, cfg.Model, log,
		gemini.WithPollInterval(time.Duration(cfg.PollIntervalSec)*time.Second),
		gemini.WithReuseUploads(cfg.ReuseUploads),
	)
	if err != nil {
		log.Errorf("error: %v", err)
		os.Exit(1)
	}

	p := pipeline.New(pipeline.Options{
		Remote:       client,
		Splitter:     segment.NewSplitter(cfg.ChunksDir, cfg.ChunkDuration, cfg.Overlap, log),
		Store:        checkpoint.New(cfg.ChunksDir),
		Log:          log,
		Speakers:     []string(speakers),
		Instructions: instructionsText,
		Header:       header,
		ChunkGen:     cfg.ChunkGen,
		MergeGen:     cfg.MergeGen,
		Parallel:     cfg.Parallel,
	})

	if err := p.Run(ctx, audioFile, cfg.Output); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(130)
		}
		log.Errorf("error: %v", err)
		os.Exit(1)
	}
	log.Infof("done")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: gt [options] <audio_file>

Transcribe long audio files using Google's Gemini API with chunking for quality.

Options:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment Variables:
  GEMINI_API_KEY    Your Google AI API key (required)

Examples:
  gt interview.wav
  gt interview.wav -o my_transcript.md
  gt interview.wav --instructions transcription_instructions.md
  gt interview.wav --chunk-duration 1800
  gt interview.wav --header "# Interview with Dr. Smith"
`)
}
