package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rag-chat-be/internal/config"
	"rag-chat-be/internal/entity"
	"rag-chat-be/internal/repository/contract"
	"rag-chat-be/internal/repository/implementation"
	"rag-chat-be/pkg/database"
	"rag-chat-be/pkg/embedding"
	"rag-chat-be/pkg/faq"
	"rag-chat-be/pkg/utils"

	"github.com/google/uuid"
)

const embedTaskType = "RETRIEVAL_DOCUMENT"

// ingest loads knowledge corpus files into the vector store.
//
// Files under -faq-dir are parsed as Q:/A: documents and stored as FAQ
// pairs. Files under -docs-dir are chunked and stored as retrievable
// documents, titled after the file name.
func main() {
	faqDir := flag.String("faq-dir", "", "directory of Q:/A: corpus files")
	docsDir := flag.String("docs-dir", "", "directory of plain-text knowledge documents")
	source := flag.String("source", "corpus", "source label attached to ingested documents")
	chunkSize := flag.Int("chunk-size", 1000, "document chunk size in characters")
	chunkOverlap := flag.Int("chunk-overlap", 200, "overlap between consecutive chunks")
	flag.Parse()

	if *faqDir == "" && *docsDir == "" {
		log.Fatal("Error: at least one of -faq-dir or -docs-dir is required")
	}

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	var embedder embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embedder = embedding.NewGeminiProvider(cfg.Ai.GoogleGemini)
	}

	ctx := context.Background()

	if *faqDir != "" {
		faqRepo := implementation.NewFaqRepository(db)
		n, err := ingestFaqs(ctx, faqRepo, embedder, *faqDir)
		if err != nil {
			log.Fatalf("Error: FAQ ingestion failed: %v", err)
		}
		log.Printf("✅ Ingested %d FAQ pairs from %s", n, *faqDir)
	}

	if *docsDir != "" {
		docRepo := implementation.NewDocumentRepository(db)
		n, err := ingestDocuments(ctx, docRepo, embedder, *docsDir, *source, *chunkSize, *chunkOverlap)
		if err != nil {
			log.Fatalf("Error: Document ingestion failed: %v", err)
		}
		log.Printf("✅ Ingested %d document chunks from %s", n, *docsDir)
	}
}

func ingestFaqs(ctx context.Context, repo contract.FaqRepository, embedder embedding.EmbeddingProvider, dir string) (int, error) {
	files, err := listTextFiles(dir)
	if err != nil {
		return 0, err
	}

	var faqs []*entity.Faq
	var embeddings [][]float32

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}

		pairs := faq.ParseQADocument(string(raw))
		if len(pairs) == 0 {
			log.Printf("Warn: no Q/A pairs found in %s, skipping", path)
			continue
		}

		for _, pair := range pairs {
			// Questions are embedded so queries match against them.
			resp, err := embedder.Generate(pair.Question, embedTaskType)
			if err != nil {
				return 0, fmt.Errorf("embed faq %s: %w", pair.FaqID, err)
			}

			faqs = append(faqs, &entity.Faq{
				Id:       uuid.New(),
				FaqId:    pair.FaqID,
				Question: pair.Question,
				Answer:   pair.Answer,
			})
			embeddings = append(embeddings, resp.Embedding.Values)
		}
	}

	if len(faqs) == 0 {
		return 0, nil
	}

	if err := repo.CreateBulk(ctx, faqs, embeddings); err != nil {
		return 0, err
	}
	return len(faqs), nil
}

func ingestDocuments(ctx context.Context, repo contract.DocumentRepository, embedder embedding.EmbeddingProvider, dir, source string, chunkSize, overlap int) (int, error) {
	files, err := listTextFiles(dir)
	if err != nil {
		return 0, err
	}

	var docs []*entity.Document
	var embeddings [][]float32

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		chunks := utils.SplitText(string(raw), chunkSize, overlap)

		for i, chunk := range chunks {
			resp, err := embedder.Generate(chunk, embedTaskType)
			if err != nil {
				return 0, fmt.Errorf("embed %s chunk %d: %w", title, i, err)
			}

			docs = append(docs, &entity.Document{
				Id:         uuid.New(),
				DocumentId: fmt.Sprintf("%s#%d", title, i),
				Title:      title,
				Content:    chunk,
				Source:     source,
				SourceId:   title,
			})
			embeddings = append(embeddings, resp.Embedding.Values)
		}
	}

	if len(docs) == 0 {
		return 0, nil
	}

	if err := repo.CreateBulk(ctx, docs, embeddings); err != nil {
		return 0, err
	}
	return len(docs), nil
}

func listTextFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
