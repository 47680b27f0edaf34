package classifier

import (
	"context"
	"strings"

	"rag-chat-be/internal/constant"
	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/flow"
)

// Classifier decides the faq/rag branch by similarity against the FAQ
// corpus: a query whose best FAQ hit clears the threshold is answered from
// that pair, everything else goes through retrieval.
type Classifier struct {
	embedder  embedding.EmbeddingProvider
	faqs      contract.FaqRepository
	threshold float64
	logger    logger.ILogger
}

var _ flow.ClassifierStage = &Classifier{}

func NewClassifier(
	embedder embedding.EmbeddingProvider,
	faqs contract.FaqRepository,
	threshold float64,
	log logger.ILogger,
) *Classifier {
	return &Classifier{
		embedder:  embedder,
		faqs:      faqs,
		threshold: threshold,
		logger:    log,
	}
}

// Classify never raises: every internal failure becomes an unsuccessful
// result for the orchestrator to branch on.
func (c *Classifier) Classify(ctx context.Context, query flow.UserQuery) flow.ClassifierResult {
	if strings.TrimSpace(query.Query) == "" {
		c.logger.Warn("Classifier", "Empty query rejected", map[string]interface{}{
			"query_id": query.QueryID,
		})
		return flow.ClassifierResult{Successful: false}
	}

	emb, err := c.embedder.Generate(query.Query, "RETRIEVAL_QUERY")
	if err != nil {
		c.logger.Error("Classifier", "Query embedding failed", map[string]interface{}{
			"query_id": query.QueryID,
			"error":    err.Error(),
		})
		return flow.ClassifierResult{Successful: false}
	}

	hits, err := c.faqs.SearchSimilar(ctx, emb.Embedding.Values, 1)
	if err != nil {
		c.logger.Error("Classifier", "FAQ lookup failed", map[string]interface{}{
			"query_id": query.QueryID,
			"error":    err.Error(),
		})
		return flow.ClassifierResult{Successful: false}
	}

	if len(hits) > 0 && hits[0].Similarity >= c.threshold {
		return c.faqResult(query, hits[0])
	}
	return c.ragResult(query)
}

func (c *Classifier) faqResult(query flow.UserQuery, hit *contract.ScoredFaq) flow.ClassifierResult {
	pair := flow.FAQ{
		FaqID:    hit.Faq.FaqId,
		Question: hit.Faq.Question,
		Answer:   hit.Faq.Answer,
		Score:    hit.Similarity,
	}

	c.logger.Info("Classifier", "Query matched FAQ", map[string]interface{}{
		"query_id":   query.QueryID,
		"faq_id":     pair.FaqID,
		"similarity": hit.Similarity,
	})

	return flow.ClassifierResult{
		Successful: true,
		QueryClass: constant.QueryClassFAQ,
		StreamDocumentsJob: &flow.StreamDocumentsJob{
			QueryID:      query.QueryID,
			SessionID:    query.SessionID,
			ResourceType: constant.ResourceTypeFAQ,
			FAQs:         []flow.FAQ{pair},
		},
		GenerateResponseJob: &flow.GenerateResponseJob{
			Query:        query.Query,
			QueryID:      query.QueryID,
			SessionID:    query.SessionID,
			ResourceType: constant.ResourceTypeFAQ,
			FAQs:         []flow.FAQ{pair},
		},
	}
}

func (c *Classifier) ragResult(query flow.UserQuery) flow.ClassifierResult {
	return flow.ClassifierResult{
		Successful: true,
		QueryClass: constant.QueryClassRAG,
		RetrieveJob: &flow.RetrieveJob{
			Query:     query.Query,
			QueryID:   query.QueryID,
			SessionID: query.SessionID,
		},
	}
}
