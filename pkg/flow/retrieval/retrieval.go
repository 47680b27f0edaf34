package retrieval

import (
	"context"
	"time"

	"rag-chat-be/internal/constant"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/flow"

	gocache "github.com/patrickmn/go-cache"
)

const configCacheKey = "retrieval_config:default"

// Retrieval populates the streaming and generation jobs with ranked
// documents from the vector index. Zero results is a successful outcome.
type Retrieval struct {
	embedder embedding.EmbeddingProvider
	docs     contract.DocumentRepository
	configs  contract.RetrievalConfigRepository
	cache    *gocache.Cache
	logger   logger.ILogger
}

var _ flow.RetrievalStage = &Retrieval{}

func NewRetrieval(
	embedder embedding.EmbeddingProvider,
	docs contract.DocumentRepository,
	configs contract.RetrievalConfigRepository,
	log logger.ILogger,
) *Retrieval {
	return &Retrieval{
		embedder: embedder,
		docs:     docs,
		configs:  configs,
		cache:    gocache.New(5*time.Minute, 10*time.Minute),
		logger:   log,
	}
}

func (r *Retrieval) Retrieve(ctx context.Context, job flow.RetrieveJob) flow.RetrieveResult {
	cfg := r.loadConfig(ctx)

	emb, err := r.embedder.Generate(job.Query, "RETRIEVAL_QUERY")
	if err != nil {
		r.logger.Error("Retrieval", "Query embedding failed", map[string]interface{}{
			"query_id": job.QueryID,
			"error":    err.Error(),
		})
		return flow.RetrieveResult{Successful: false}
	}

	scored, err := r.docs.SearchSimilar(ctx, emb.Embedding.Values, cfg.NumRagResults)
	if err != nil {
		r.logger.Error("Retrieval", "Index query failed", map[string]interface{}{
			"query_id": job.QueryID,
			"error":    err.Error(),
		})
		return flow.RetrieveResult{Successful: false}
	}

	documents := make([]flow.Document, 0, len(scored))
	for _, s := range scored {
		documents = append(documents, flow.Document{
			DocumentID: s.Document.DocumentId,
			Title:      s.Document.Title,
			Content:    s.Document.Content,
			Source:     s.Document.Source,
			SourceID:   s.Document.SourceId,
			Score:      s.Similarity,
		})
	}

	documents = ReorderBySourcePriority(documents, cfg.SourceIdPriority)

	clientDocs := documents
	if len(clientDocs) > cfg.MaxDocumentsToClient {
		clientDocs = clientDocs[:cfg.MaxDocumentsToClient]
	}

	r.logger.Info("Retrieval", "Documents retrieved", map[string]interface{}{
		"query_id":  job.QueryID,
		"retrieved": len(documents),
		"to_client": len(clientDocs),
	})

	return flow.RetrieveResult{
		Successful: true,
		StreamDocumentsJob: &flow.StreamDocumentsJob{
			QueryID:      job.QueryID,
			SessionID:    job.SessionID,
			ResourceType: constant.ResourceTypeDocuments,
			Documents:    clientDocs,
		},
		GenerateResponseJob: &flow.GenerateResponseJob{
			Query:        job.Query,
			QueryID:      job.QueryID,
			SessionID:    job.SessionID,
			ResourceType: constant.ResourceTypeDocuments,
			Documents:    documents,
		},
	}
}

// loadConfig reads the stored tuning row through a short-lived cache,
// falling back to built-in defaults when the row is absent or the read
// fails.
func (r *Retrieval) loadConfig(ctx context.Context) *entity.RetrievalConfig {
	if cached, ok := r.cache.Get(configCacheKey); ok {
		return cached.(*entity.RetrievalConfig)
	}

	cfg, err := r.configs.FindByName(ctx, "default")
	if err != nil {
		r.logger.Warn("Retrieval", "Config read failed, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		return entity.DefaultRetrievalConfig()
	}
	if cfg == nil {
		cfg = entity.DefaultRetrievalConfig()
	}
	if cfg.NumRagResults <= 0 {
		cfg.NumRagResults = entity.DefaultNumRagResults
	}
	if cfg.MaxDocumentsToClient <= 0 {
		cfg.MaxDocumentsToClient = entity.DefaultMaxDocumentsToClient
	}

	r.cache.Set(configCacheKey, cfg, gocache.DefaultExpiration)
	return cfg
}

// ReorderBySourcePriority stably moves documents whose SourceID appears in
// the priority list ahead of the rest, in priority order. Documents outside
// the list keep their ranked order after the prioritized block.
func ReorderBySourcePriority(documents []flow.Document, priority []string) []flow.Document {
	if len(priority) == 0 || len(documents) == 0 {
		return documents
	}

	reordered := make([]flow.Document, 0, len(documents))
	taken := make([]bool, len(documents))

	for _, sourceID := range priority {
		for i, doc := range documents {
			if !taken[i] && doc.SourceID == sourceID {
				reordered = append(reordered, doc)
				taken[i] = true
			}
		}
	}
	for i, doc := range documents {
		if !taken[i] {
			reordered = append(reordered, doc)
		}
	}
	return reordered
}
