package github

import "time"

// PullRequest はGitHub Pull RequestのAPI応答を表す
type PullRequest struct {
	ID             int64     `json:"id"`
	Number         int       `json:"number"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	State          string    `json:"state"`
	HTMLURL        string    `json:"html_url"`
	Labels         []Label   `json:"labels"`
	Mergeable      bool      `json:"mergeable"`
	MergeableState string    `json:"mergeable_state"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ListPullRequestsOptions はPR一覧取得時のオプション
type ListPullRequestsOptions struct {
	State     string   // open, closed, all
	Labels    []string // ラベルフィルタ
	Sort      string   // created, updated, popularity
	Direction string   // asc, desc
	Page      int
	PerPage   int
}

// MergeRequest はPRマージ時のリクエストボディ
type MergeRequest struct {
	CommitTitle   string `json:"commit_title,omitempty"`
	CommitMessage string `json:"commit_message,omitempty"`
	MergeMethod   string `json:"merge_method,omitempty"` // merge, squash, rebase
}

// MergeResponse はPRマージ結果のレスポンス
type MergeResponse struct {
	SHA     string `json:"sha"`
	Merged  bool   `json:"merged"`
	Message string `json:"message"`
}
