package transfer

type MediaLocator struct {
	URL       string `json:"url"`
	ObjectKey string `json:"object_key"`
}

type PostCreation struct {
	TargetID      int64          `json:"target_id"`
	PostType      string         `json:"post_type"`
	Caption       string         `json:"caption"`
	ScheduledTime string         `json:"scheduled_time"`
	Media         []MediaLocator `json:"media"`
	AssetID       int64          `json:"asset_id"`
}

// PostFilters narrows a user's post listing. Fields left zero are ignored;
// filtering happens in memory so the posts table only needs its user_id index.
type PostFilters struct {
	Status    string `json:"status"`
	PostType  string `json:"post_type"`
	AccountID int64  `json:"account_id"`
}
