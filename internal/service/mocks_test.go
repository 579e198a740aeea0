package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/typetrace/typetrace/internal/astdiff"
	"github.com/typetrace/typetrace/internal/data/mocks"
	"github.com/typetrace/typetrace/pkg/github"
)

type mockGitHub struct {
	mock.Mock
}

func (m *mockGitHub) GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Repository), args.Error(1)
}

func (m *mockGitHub) GetCommit(ctx context.Context, owner, repo, sha string) (*github.Commit, error) {
	args := m.Called(ctx, owner, repo, sha)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Commit), args.Error(1)
}

func (m *mockGitHub) ListMaintainers(ctx context.Context, owner, repo string) ([]string, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGitHub) CreateCommitComment(ctx context.Context, owner, repo, sha, body, path string, position int) error {
	args := m.Called(ctx, owner, repo, sha, body, path, position)
	return args.Error(0)
}

func (m *mockGitHub) CreateCommentReaction(ctx context.Context, owner, repo string, commentID int64, content string) error {
	args := m.Called(ctx, owner, repo, commentID, content)
	return args.Error(0)
}

type mockGitRepo struct {
	mock.Mock
}

func (m *mockGitRepo) Ensure(ctx context.Context, owner, name, cloneURL string) error {
	args := m.Called(ctx, owner, name, cloneURL)
	return args.Error(0)
}

func (m *mockGitRepo) Parents(ctx context.Context, owner, name, hash string) ([]string, error) {
	args := m.Called(ctx, owner, name, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGitRepo) ChangedFiles(ctx context.Context, owner, name, hash string) ([]string, error) {
	args := m.Called(ctx, owner, name, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockGitRepo) FileAt(ctx context.Context, owner, name, rev, path string) (string, bool, error) {
	args := m.Called(ctx, owner, name, rev, path)
	return args.String(0), args.Bool(1), args.Error(2)
}

type mockExtractor struct {
	mock.Mock
}

func (m *mockExtractor) Extract(ctx context.Context, pre, post string, g astdiff.Grammar) (*astdiff.Diff, error) {
	args := m.Called(ctx, pre, post, g)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*astdiff.Diff), args.Error(1)
}

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) Enqueue(ctx context.Context, jobType string, payload interface{}) (string, error) {
	args := m.Called(ctx, jobType, payload)
	return args.String(0), args.Error(1)
}

// testStores returns a Stores bundle of fresh mocks plus the mocks themselves
// for expectation setup.
func testStores() (Stores, *mocks.ProjectStore, *mocks.CommitStore, *mocks.CommitterStore, *mocks.MembershipStore, *mocks.ResponseStore) {
	projects := new(mocks.ProjectStore)
	commits := new(mocks.CommitStore)
	committers := new(mocks.CommitterStore)
	memberships := new(mocks.MembershipStore)
	responses := new(mocks.ResponseStore)
	stores := Stores{
		Projects:    projects,
		Commits:     commits,
		Committers:  committers,
		Memberships: memberships,
		Responses:   responses,
	}
	return stores, projects, commits, committers, memberships, responses
}
