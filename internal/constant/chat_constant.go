package constant

// Query classes produced by the classifier stage. Branch selection in the
// workflow is an exact match on these values; anything else fails closed.
const (
	QueryClassFAQ = "faq"
	QueryClassRAG = "rag"
)

// Resource types carried by stream-documents and generate-response jobs.
const (
	ResourceTypeDocuments = "documents"
	ResourceTypeFAQ       = "faq"
)

// User-facing error strings pushed over the error stream.
const (
	ErrMsgServer     = "A server error occurred while processing the message."
	ErrMsgUnexpected = "An unexpected error occurred while processing a message."
	ErrMsgStreaming  = "Internal server error occurred while streaming a response."
	ErrMsgThrottled  = "Request was throttled due to too many requests. Please wait and try again."
)
