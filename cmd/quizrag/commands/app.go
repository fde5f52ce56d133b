package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"quizrag/internal/chunker"
	"quizrag/internal/config"
	"quizrag/internal/domain"
	"quizrag/internal/embedding/hashing"
	"quizrag/internal/embedding/openai"
	"quizrag/internal/extractor"
	"quizrag/internal/generator"
	"quizrag/internal/indexstore"
	"quizrag/internal/logging"
	"quizrag/internal/retriever"
	"quizrag/internal/service"
	"quizrag/internal/summarizer"
)

// app holds the components one command invocation works with.
type app struct {
	cfg      *config.AppConfig
	logger   *log.Logger
	closeLog func() error
	embedder domain.Embedder
	store    *indexstore.Store
}

// newApp loads .env and the config, then assembles the index pipeline.
// Interactive sessions log to the configured file only, so the terminal stays clean.
func newApp(cmd *cobra.Command, opts *rootOptions, interactive bool) (*app, error) {
	_ = godotenv.Load()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}

	logger, closeLog := logging.Discard(), func() error { return nil }
	switch {
	case cfg.Log.File != "":
		logger, closeLog, err = logging.Open(cfg.Log.File, level)
	case !interactive:
		logger, err = logging.New(cmd.ErrOrStderr(), level)
	}
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	emb, err := newEmbedder(cfg, logger)
	if err != nil {
		closeLog()
		return nil, err
	}
	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.TargetSize)
	default:
		closeLog()
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}
	store := indexstore.New(indexstore.Options{
		IndexPath:    cfg.Index.Path,
		MetadataPath: cfg.Index.MetadataPath,
		DocsDir:      cfg.Documents.Dir,
		Pattern:      cfg.Documents.Pattern,
		BatchSize:    cfg.Embedder.BatchSize,
		Logger:       logger,
	}, extractor.NewPDFExtractor(logger), ch, emb)

	return &app{cfg: cfg, logger: logger, closeLog: closeLog, embedder: emb, store: store}, nil
}

func loadConfig(path string) (*config.AppConfig, error) {
	if path == "" {
		cfg, _, err := config.LoadDefault()
		return cfg, err
	}
	return config.Load(path)
}

func newEmbedder(cfg *config.AppConfig, logger *log.Logger) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "hashing", "":
		return hashing.NewEmbedder(cfg.Embedder.Hashing.Dimension), nil
	case "openai":
		o := cfg.Embedder.OpenAI
		if o == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:    o.BaseURL,
			APIKeyEnv:  o.APIKeyEnv,
			Model:      o.Model,
			BatchSize:  cfg.Embedder.BatchSize,
			Timeout:    time.Duration(o.TimeoutSecs) * time.Second,
			MaxRetries: o.MaxRetries,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func (a *app) Close() error { return a.closeLog() }

func (a *app) newRetriever() *retriever.Retriever {
	return retriever.New(a.store, a.embedder, a.logger)
}

// newSession requires the generator credential, so callers create it before touching the index.
func (a *app) newSession() (*service.Session, error) {
	key, err := config.RequireAPIKey(a.cfg.Generator.APIKeyEnv)
	if err != nil {
		return nil, err
	}
	gen, err := generator.New(generator.Config{
		BaseURL:         a.cfg.Generator.BaseURL,
		APIKey:          key,
		PreferredModel:  a.cfg.Generator.PreferredModel,
		FallbackModels:  a.cfg.Generator.FallbackModels,
		Timeout:         a.cfg.GeneratorTimeout(),
		Temperature:     a.cfg.Generator.Temperature,
		MaxPromptTokens: a.cfg.Generator.MaxPromptTokens,
		Logger:          a.logger,
	})
	if err != nil {
		return nil, err
	}
	return service.NewSession(a.newRetriever(), gen, a.cfg.Retriever.TopK, a.logger), nil
}

func (a *app) newSummarizer() (domain.Summarizer, error) {
	switch a.cfg.Summarizer.Type {
	case "frequency", "":
		return summarizer.NewFrequencySummarizer(), nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", a.cfg.Summarizer.Type)
	}
}
