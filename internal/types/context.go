package types

// ExtractedContext is the normalized form of one tab's transcript, produced
// by the context extractor and consumed by the grooming service.
type ExtractedContext struct {
	SourceTabID     string     `json:"source_tab_id"`
	SourceAgent     string     `json:"source_agent"`
	DisplayName     string     `json:"display_name"`
	ProjectRoot     string     `json:"project_root,omitempty"`
	Logs            []LogEntry `json:"logs"`
	EstimatedTokens int        `json:"estimated_tokens"`
}
