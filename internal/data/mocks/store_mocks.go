package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/typetrace/typetrace/internal/data"
)

// ProjectStore mock
type ProjectStore struct {
	mock.Mock
}

func (m *ProjectStore) CreateProject(project *data.Project) error {
	args := m.Called(project)
	return args.Error(0)
}

func (m *ProjectStore) SaveProject(project *data.Project) error {
	args := m.Called(project)
	return args.Error(0)
}

func (m *ProjectStore) GetProjectByID(id uint) (*data.Project, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Project), args.Error(1)
}

func (m *ProjectStore) GetProjectByOwnerName(owner, name string) (*data.Project, error) {
	args := m.Called(owner, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Project), args.Error(1)
}

func (m *ProjectStore) ListProjects() ([]data.Project, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]data.Project), args.Error(1)
}

func (m *ProjectStore) SoftRemoveProject(owner, name string, at time.Time) error {
	args := m.Called(owner, name, at)
	return args.Error(0)
}

func (m *ProjectStore) CountProjects() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// CommitStore mock
type CommitStore struct {
	mock.Mock
}

func (m *CommitStore) GetOrCreateCommit(commit *data.Commit) (*data.Commit, bool, error) {
	args := m.Called(commit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*data.Commit), args.Bool(1), args.Error(2)
}

func (m *CommitStore) SaveCommit(commit *data.Commit) error {
	args := m.Called(commit)
	return args.Error(0)
}

func (m *CommitStore) GetCommitByID(id uint) (*data.Commit, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Commit), args.Error(1)
}

func (m *CommitStore) GetCommitByHash(hash string) (*data.Commit, error) {
	args := m.Called(hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Commit), args.Error(1)
}

func (m *CommitStore) GetCommitsByProject(projectID uint) ([]data.Commit, error) {
	args := m.Called(projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]data.Commit), args.Error(1)
}

func (m *CommitStore) DeleteIrrelevantBefore(cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CommitStore) CountCommits() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *CommitStore) CountRelevantCommits() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// CommitterStore mock
type CommitterStore struct {
	mock.Mock
}

func (m *CommitterStore) GetOrCreateCommitter(username string) (*data.Committer, bool, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*data.Committer), args.Bool(1), args.Error(2)
}

func (m *CommitterStore) GetCommitterByUsername(username string) (*data.Committer, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Committer), args.Error(1)
}

func (m *CommitterStore) GetCommitterByID(id uint) (*data.Committer, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.Committer), args.Error(1)
}

func (m *CommitterStore) SaveCommitter(committer *data.Committer) error {
	args := m.Called(committer)
	return args.Error(0)
}

func (m *CommitterStore) PurgeCommitterData(committer *data.Committer) error {
	args := m.Called(committer)
	return args.Error(0)
}

func (m *CommitterStore) ListCommitters() ([]data.Committer, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]data.Committer), args.Error(1)
}

func (m *CommitterStore) CountCommitters() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// MembershipStore mock
type MembershipStore struct {
	mock.Mock
}

func (m *MembershipStore) GetOrCreateMembership(membership *data.ProjectCommitter) (*data.ProjectCommitter, bool, error) {
	args := m.Called(membership)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*data.ProjectCommitter), args.Bool(1), args.Error(2)
}

func (m *MembershipStore) GetMembership(projectID, committerID uint) (*data.ProjectCommitter, error) {
	args := m.Called(projectID, committerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*data.ProjectCommitter), args.Error(1)
}

func (m *MembershipStore) SaveMembership(membership *data.ProjectCommitter) error {
	args := m.Called(membership)
	return args.Error(0)
}

func (m *MembershipStore) ListMembershipsByCommitter(committerID uint) ([]data.ProjectCommitter, error) {
	args := m.Called(committerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]data.ProjectCommitter), args.Error(1)
}

func (m *MembershipStore) CountMembershipsByCommitter(committerID uint) (int64, error) {
	args := m.Called(committerID)
	return args.Get(0).(int64), args.Error(1)
}

// ResponseStore mock
type ResponseStore struct {
	mock.Mock
}

func (m *ResponseStore) CreateResponse(response *data.Response) error {
	args := m.Called(response)
	return args.Error(0)
}

func (m *ResponseStore) CountResponsesForPair(commitID, membershipID uint) (int64, error) {
	args := m.Called(commitID, membershipID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ResponseStore) CountResponsesByCommitter(committerID uint) (int64, error) {
	args := m.Called(committerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ResponseStore) CountResponses() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}
