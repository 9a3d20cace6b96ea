package transfer

type InstagramPostRequest struct {
	Caption  string
	PostType string // feed, carousel, reel
	PostID   int64
}

type InstagramPostResult struct {
	PostID    string `json:"post_id"`
	Permalink string `json:"permalink"`
}

type InstagramAccountInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	AccountType string `json:"account_type"`
	MediaCount  int    `json:"media_count"`
}

type InstagramStatus struct {
	Status  string `json:"status"` // connected, disconnected
	Message string `json:"message"`
}

// GraphContainer is the response to a container create or publish call.
type GraphContainer struct {
	ID string `json:"id"`
}

// GraphContainerStatus is the response to a container status poll.
type GraphContainerStatus struct {
	StatusCode string `json:"status_code"` // IN_PROGRESS, FINISHED, ERROR, EXPIRED
	ID         string `json:"id"`
}

type GraphErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}
