// Package service implements the commit evaluation pipeline and the
// consent-gated survey workflow on top of the data stores.
package service

import (
	"context"

	"github.com/typetrace/typetrace/internal/astdiff"
	"github.com/typetrace/typetrace/internal/data"
	"github.com/typetrace/typetrace/pkg/github"
)

// Job types dispatched through the queue.
const (
	JobEvaluateCommit = "commit.evaluate"
	JobProcessComment = "comment.process"
	JobConsentRequest = "consent.request"
	JobFetchProject   = "project.fetch"
)

// EvaluatePayload asks for one commit to be (re-)evaluated.
type EvaluatePayload struct {
	CommitID uint `json:"commit_id"`
}

// ConsentRequestPayload asks for an informed-consent request on a commit.
type ConsentRequestPayload struct {
	CommitID    uint `json:"commit_id"`
	CommitterID uint `json:"committer_id"`
}

// FetchPayload asks for a project clone to be created or refreshed.
type FetchPayload struct {
	ProjectID uint `json:"project_id"`
}

// Stores bundles the database store interfaces the services work against.
type Stores struct {
	Projects    data.ProjectStore
	Commits     data.CommitStore
	Committers  data.CommitterStore
	Memberships data.MembershipStore
	Responses   data.ResponseStore
}

// GitHub is the subset of the GitHub API the services need.
type GitHub interface {
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error)
	GetCommit(ctx context.Context, owner, repo, sha string) (*github.Commit, error)
	ListMaintainers(ctx context.Context, owner, repo string) ([]string, error)
	CreateCommitComment(ctx context.Context, owner, repo, sha, body, path string, position int) error
	CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, content string) error
}

// GitRepo answers commit-level questions against a local clone.
type GitRepo interface {
	Ensure(ctx context.Context, owner, name, cloneURL string) error
	Parents(ctx context.Context, owner, name, hash string) ([]string, error)
	ChangedFiles(ctx context.Context, owner, name, hash string) ([]string, error)
	FileAt(ctx context.Context, owner, name, rev, path string) (string, bool, error)
}

// Extractor produces a structural diff for one file pair.
type Extractor interface {
	Extract(ctx context.Context, pre, post string, g astdiff.Grammar) (*astdiff.Diff, error)
}

// Enqueuer dispatches background jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload interface{}) (string, error)
}
