package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// GitHubClient is a simple client for interacting with GitHub's API
type GitHubClient struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
}

// NewGitHubClient creates a new instance of GitHubClient with a timeout
func NewGitHubClient(token string) *GitHubClient {
	return &GitHubClient{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		BaseURL:    defaultBaseURL,
		Token:      token,
	}
}

// Repository represents the JSON structure of a GitHub repository
type Repository struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"html_url"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Language string `json:"language"`
	CloneURL string `json:"clone_url"`
	Private  bool   `json:"private"`
	Archived bool   `json:"archived"`
}

// Commit represents the JSON structure of a GitHub commit
type Commit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name  string    `json:"name"`
			Email string    `json:"email"`
			Date  time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author struct {
		Login string `json:"login"`
	} `json:"author"`
	Committer struct {
		Login string `json:"login"`
	} `json:"committer"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
}

// Collaborator represents one entry of the repository collaborators listing
type Collaborator struct {
	Login       string `json:"login"`
	Permissions struct {
		Admin    bool `json:"admin"`
		Maintain bool `json:"maintain"`
		Push     bool `json:"push"`
	} `json:"permissions"`
}

// CommitComment is a comment posted on a commit
type CommitComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	User struct {
		Login string `json:"login"`
	} `json:"user"`
}

func (c *GitHubClient) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	c.auth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: received status code %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

func (c *GitHubClient) post(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("request %s: received status code %d", url, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}
	return nil
}

func (c *GitHubClient) auth(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
}

// GetRepository fetches details of a GitHub repository by its owner and name
func (c *GitHubClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	var repository Repository
	url := fmt.Sprintf("%s/repos/%s/%s", c.BaseURL, owner, repo)
	if err := c.get(ctx, url, &repository); err != nil {
		return nil, fmt.Errorf("failed to fetch repository: %v", err)
	}
	return &repository, nil
}

// GetCommit fetches a single commit, including author/committer logins and
// parent hashes
func (c *GitHubClient) GetCommit(ctx context.Context, owner, repo, sha string) (*Commit, error) {
	var commit Commit
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.BaseURL, owner, repo, sha)
	if err := c.get(ctx, url, &commit); err != nil {
		return nil, fmt.Errorf("failed to fetch commit: %v", err)
	}
	return &commit, nil
}

// ListMaintainers returns the logins of collaborators with maintain or admin
// permission on the repository
func (c *GitHubClient) ListMaintainers(ctx context.Context, owner, repo string) ([]string, error) {
	var collaborators []Collaborator
	url := fmt.Sprintf("%s/repos/%s/%s/collaborators?per_page=100", c.BaseURL, owner, repo)
	if err := c.get(ctx, url, &collaborators); err != nil {
		return nil, fmt.Errorf("failed to fetch collaborators: %v", err)
	}

	var maintainers []string
	for _, collaborator := range collaborators {
		if collaborator.Permissions.Admin || collaborator.Permissions.Maintain {
			maintainers = append(maintainers, collaborator.Login)
		}
	}
	return maintainers, nil
}

// CreateCommitComment posts a comment on a commit. Path and Position anchor
// the comment on a diff line; both zero values post a plain commit comment.
func (c *GitHubClient) CreateCommitComment(ctx context.Context, owner, repo, sha, body, path string, position int) error {
	payload := map[string]interface{}{"body": body}
	if path != "" {
		payload["path"] = path
		payload["position"] = position
	}
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s/comments", c.BaseURL, owner, repo, sha)
	if err := c.post(ctx, url, payload, nil); err != nil {
		return fmt.Errorf("failed to create commit comment: %v", err)
	}
	return nil
}

// CreateCommentReaction reacts to an existing commit comment
func (c *GitHubClient) CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, content string) error {
	payload := map[string]string{"content": content}
	url := fmt.Sprintf("%s/repos/%s/%s/comments/%d/reactions", c.BaseURL, owner, repo, commentID)
	if err := c.post(ctx, url, payload, nil); err != nil {
		return fmt.Errorf("failed to create reaction: %v", err)
	}
	return nil
}
