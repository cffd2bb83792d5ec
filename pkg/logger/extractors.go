package logger

// DefaultExtractors returns the extractors used by the dispatcher's log lines.
func DefaultExtractors() []ContextExtractor {
	return []ContextExtractor{RunIDExtractor(), RecipientExtractor()}
}
