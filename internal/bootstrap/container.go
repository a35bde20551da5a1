package bootstrap

import (
	"log"
	"net/http"

	"voicenotes-be/internal/config"
	"voicenotes-be/internal/pkg/logger"
	"voicenotes-be/internal/repository/contract"
	"voicenotes-be/internal/repository/implementation"
	"voicenotes-be/internal/repository/memory"
	"voicenotes-be/internal/service"
	"voicenotes-be/pkg/cache"
	"voicenotes-be/pkg/embedding"
	"voicenotes-be/pkg/imagegen"
	pktNats "voicenotes-be/pkg/nats"
	"voicenotes-be/pkg/speech"
	"voicenotes-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

// Container owns the process-scoped component instances. Everything is
// explicitly constructed here so external capabilities can be swapped for
// test doubles.
type Container struct {
	PipelineService     service.IPipelineService
	RelatedNotesService service.IRelatedNotesService
	ConsumerService     service.IConsumerService
	NoteRepository      contract.NoteRepository
	Logger              logger.ILogger
}

// NewContainer wires the pipeline. A nil db falls back to the in-memory
// repository (tests, DB-less runs).
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	var noteRepo contract.NoteRepository
	if db != nil {
		noteRepo = implementation.NewNoteRepository(db)
	} else {
		log.Println("[WARN] No database configured, using in-memory note repository")
		noteRepo = memory.NewNoteRepository()
	}

	// Shared outbound client; every provider call gets a hard timeout.
	httpClient := &http.Client{Timeout: cfg.Pipeline.RequestTimeout}

	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
			httpClient,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, httpClient)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	speechProvider := speech.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.SpeechModel, httpClient)
	imageProvider := imagegen.NewImagenProvider(cfg.Keys.GoogleGemini, cfg.Ai.ImageModel, httpClient)

	blobs, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize blob storage: %v", err)
	}

	embCache, err := cache.NewEmbeddingCache(cfg.Pipeline.CacheCapacity)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding cache: %v", err)
	}

	// Event Bus (in-process queue transport)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		// Buffered so handing off embedding work never blocks the queue loop.
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)

	// NATS (optional, lifecycle events only)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	guard := service.NewNoteGuard()
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)

	embeddingService := service.NewEmbeddingService(
		embeddingProvider,
		embCache,
		cfg.Ai.EmbeddingDimension,
		cfg.Pipeline.MaxRetries,
		cfg.Pipeline.BaseRetryDelay,
		sysLogger,
	)
	illustrationService := service.NewIllustrationService(imageProvider, blobs, sysLogger)
	transcriptionService := service.NewTranscriptionService(
		noteRepo,
		speechProvider,
		illustrationService,
		blobs,
		natsPub,
		sysLogger,
		cfg.Pipeline.ModerationPrefix,
	)
	relatedNotesService := service.NewRelatedNotesService(noteRepo, cfg.Pipeline.RelatedCacheTTL, sysLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		noteRepo,
		embeddingService,
		relatedNotesService,
		guard,
		natsPub,
		sysLogger,
	)
	pipelineService := service.NewPipelineService(
		guard,
		transcriptionService,
		publisherService,
		noteRepo,
		sysLogger,
	)

	return &Container{
		PipelineService:     pipelineService,
		RelatedNotesService: relatedNotesService,
		ConsumerService:     consumerService,
		NoteRepository:      noteRepo,
		Logger:              sysLogger,
	}
}
