package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/soba-dev/soba/internal/domain"
	"github.com/soba-dev/soba/internal/infra"
	"github.com/soba-dev/soba/pkg/logging"
)

// CreateLabel は新しいラベルを作成する
func (c *Client) CreateLabel(ctx context.Context, owner, repo string, request CreateLabelRequest) (*Label, error) {
	// リクエストボディの作成
	reqBody, err := json.Marshal(request)
	if err != nil {
		return nil, infra.WrapInfraError(err, "failed to marshal request body")
	}

	// HTTPリクエストの作成
	url := fmt.Sprintf("%s/repos/%s/%s/labels", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, infra.WrapInfraError(err, "failed to create request")
	}

	// リクエスト実行（リトライ付き）
	retryClient := NewRetryableClient(&RetryOptions{
		Logger: c.logger,
	})
	resp, err := retryClient.DoWithRetry(ctx, func() (*http.Response, error) {
		return c.doRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// レスポンスの処理
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.parseErrorResponse(resp)
	}

	// レスポンスのパース
	var label Label
	if err := json.NewDecoder(resp.Body).Decode(&label); err != nil {
		return nil, infra.WrapInfraError(err, "failed to decode response")
	}

	return &label, nil
}

// ListLabels はリポジトリのラベル一覧を取得する
func (c *Client) ListLabels(ctx context.Context, owner, repo string) ([]Label, error) {
	// HTTPリクエストの作成
	url := fmt.Sprintf("%s/repos/%s/%s/labels", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, infra.WrapInfraError(err, "failed to create request")
	}

	// リクエスト実行（リトライ付き）
	retryClient := NewRetryableClient(&RetryOptions{
		Logger: c.logger,
	})
	resp, err := retryClient.DoWithRetry(ctx, func() (*http.Response, error) {
		return c.doRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// レスポンスの処理
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.parseErrorResponse(resp)
	}

	// レスポンスのパース
	var labels []Label
	if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
		return nil, infra.WrapInfraError(err, "failed to decode response")
	}

	return labels, nil
}

// AddLabelToIssue はIssueにラベルを追加する
func (c *Client) AddLabelToIssue(ctx context.Context, owner, repo string, issueNumber int, label string) error {
	// リクエストボディの作成
	labels := []string{label}
	reqBody, err := json.Marshal(labels)
	if err != nil {
		return infra.WrapInfraError(err, "failed to marshal request body")
	}

	// HTTPリクエストの作成
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/labels", c.baseURL, owner, repo, issueNumber)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return infra.WrapInfraError(err, "failed to create request")
	}

	// リクエスト実行
	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// レスポンスの処理
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseErrorResponse(resp)
	}

	return nil
}

// RemoveLabelFromIssue はIssueからラベルを削除する
func (c *Client) RemoveLabelFromIssue(ctx context.Context, owner, repo string, issueNumber int, label string) error {
	// HTTPリクエストの作成
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/labels/%s", c.baseURL, owner, repo, issueNumber, label)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return infra.WrapInfraError(err, "failed to create request")
	}

	// リクエスト実行
	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// レスポンスの処理
	// ラベルが存在しない場合は404が返るが、それはエラーとしない
	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug(ctx, "Label not found on issue",
			logging.Field{Key: "owner", Value: owner},
			logging.Field{Key: "repo", Value: repo},
			logging.Field{Key: "issue", Value: issueNumber},
			logging.Field{Key: "label", Value: label},
		)
		return nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseErrorResponse(resp)
	}

	return nil
}

// GetIssueLabels はIssueのラベル一覧を取得する
func (c *Client) GetIssueLabels(ctx context.Context, owner, repo string, issueNumber int) ([]Label, error) {
	// HTTPリクエストの作成
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/labels", c.baseURL, owner, repo, issueNumber)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, infra.WrapInfraError(err, "failed to create request")
	}

	// リクエスト実行
	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// レスポンスの処理
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.parseErrorResponse(resp)
	}

	// レスポンスのパース
	var labels []Label
	if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
		return nil, infra.WrapInfraError(err, "failed to decode response")
	}

	return labels, nil
}

// UpdateIssueLabels はIssueのラベルを更新する
func (c *Client) UpdateIssueLabels(ctx context.Context, owner, repo string, issueNumber int, labels []string) error {
	// リクエストボディの作成
	reqBody, err := json.Marshal(labels)
	if err != nil {
		return infra.WrapInfraError(err, "failed to marshal request body")
	}

	// HTTPリクエストの作成
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/labels", c.baseURL, owner, repo, issueNumber)
	req, err := http.NewRequestWithContext(ctx, "PUT", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return infra.WrapInfraError(err, "failed to create request")
	}

	// リクエスト実行
	resp, err := c.doRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// レスポンスの処理
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseErrorResponse(resp)
	}

	return nil
}

// GetSobaLabels returns the full closed label vocabulary (spec §3, §6) as
// GitHub label-creation requests, sourced from domain.SobaLabels so the
// bootstrap set and the phase strategy never drift apart.
func GetSobaLabels() []CreateLabelRequest {
	requests := make([]CreateLabelRequest, 0, len(domain.SobaLabels))
	for _, l := range domain.SobaLabels {
		requests = append(requests, CreateLabelRequest{
			Name:        l.Name,
			Color:       l.Color,
			Description: l.Description,
		})
	}
	return requests
}
