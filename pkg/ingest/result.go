package ingest

// BatchStatus says how a batch ended. Skips are normal outcomes, not
// errors: a skipped batch leaves its lines unmarked so a later run
// picks them up again.
type BatchStatus string

const (
	// BatchCommitted: entries upserted and every line marked processed.
	BatchCommitted BatchStatus = "committed"
	// BatchSkippedLLM: the model returned nothing (timeout, transport
	// error, no text candidate).
	BatchSkippedLLM BatchStatus = "skipped_llm_failure"
	// BatchSkippedInvalid: the model returned text that does not parse
	// as the entries schema; the raw response was archived.
	BatchSkippedInvalid BatchStatus = "skipped_invalid_response"
)

// BatchResult is the explicit outcome of processing one batch.
type BatchResult struct {
	Status           BatchStatus
	Lines            int
	EntriesCommitted int
	EntriesFailed    int
}
