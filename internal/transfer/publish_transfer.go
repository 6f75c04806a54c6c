package transfer

// PlatformResult is the per-platform slice of an agent response. The
// top-level Success flag alone does not confirm delivery; the platform
// entry for the post's account must also report success.
type PlatformResult struct {
	Success bool   `json:"success"`
	PostURL string `json:"post_url"`
	Error   string `json:"error"`
}

type PublishResult struct {
	Success bool                      `json:"success"`
	Results map[string]PlatformResult `json:"results"`
}

// DelegationTicket is what an external scheduler hands back when it accepts
// ownership of a post. RawResponse keeps the exchanged body verbatim for
// later inspection.
type DelegationTicket struct {
	JobHandle   string `json:"job_handle"`
	RawResponse string `json:"raw_response"`
}

// ExecutionResult is the orchestrator's only output. Strategy errors are
// absorbed into it; nothing past creation has a synchronous caller to throw to.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type QueueStats struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}
