package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/typetrace/typetrace/internal/classify"
	"github.com/typetrace/typetrace/internal/data"
	"github.com/typetrace/typetrace/internal/queue"
)

const testCooldown = 14 * 24 * time.Hour

func newTestNotifier(stores Stores, gh GitHub, now time.Time) *Notifier {
	n := NewNotifier(stores, gh, testBot, testCooldown, zap.NewNop().Sugar())
	n.clock = func() time.Time { return now }
	return n
}

func identity(login string, id uint, mutate func(*data.Committer)) Identity {
	c := &data.Committer{ID: id, Username: login}
	if mutate != nil {
		mutate(c)
	}
	return Identity{
		Login:      login,
		Committer:  c,
		Membership: &data.ProjectCommitter{ID: id + 100, CommitterID: id},
	}
}

var testPatch = "--- a/f.py\n" +
	"+++ b/f.py\n" +
	"@@ -1,2 +1,2 @@\n" +
	"-def f(x):\n" +
	"+def f(x: int):\n" +
	"     pass\n"

func TestDispatchMentionsAllEligible(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	project := &data.Project{ID: 2, Owner: "acme", Name: "widgets"}
	commit := &data.Commit{ID: 7, ProjectID: 2, Hash: "abc123"}
	primary := classify.Edit{File: "f.py", Line: 1, Kind: classify.KindAdded}

	alice := identity("alice", 1, nil)
	bob := identity("bob", 2, nil)

	stores, _, _, committers, _, _ := testStores()
	committers.On("SaveCommitter", alice.Committer).Return(nil)
	committers.On("SaveCommitter", bob.Committer).Return(nil)

	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, "acme", "widgets", "abc123",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "@alice, @bob") && strings.Contains(body, "added")
		}), "f.py", 4).Return(nil)

	n := newTestNotifier(stores, gh, now)
	err := n.Dispatch(context.Background(), project, commit, primary,
		[]Identity{alice, bob}, "def f(x):\n    pass\n", testPatch)
	require.NoError(t, err)

	require.NotNil(t, alice.Committer.LastContactDate)
	assert.Equal(t, now, *alice.Committer.LastContactDate)
	require.NotNil(t, bob.Committer.LastContactDate)
	gh.AssertExpectations(t)
	committers.AssertExpectations(t)
}

func TestDispatchFiltersIneligibleIdentities(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	project := &data.Project{ID: 2, Owner: "acme", Name: "widgets"}
	commit := &data.Commit{ID: 7, ProjectID: 2, Hash: "abc123"}
	primary := classify.Edit{File: "f.py", Line: 1, Kind: classify.KindAdded}

	fresh := identity("carol", 1, nil)
	fresh.New = true
	optedOut := identity("dave", 2, func(c *data.Committer) {
		ts := now.Add(-time.Hour)
		c.OptOut = &ts
	})
	recent := identity("erin", 3, func(c *data.Committer) {
		ts := now.Add(-24 * time.Hour)
		c.LastContactDate = &ts
	})

	stores, _, _, committers, _, _ := testStores()
	gh := new(mockGitHub)

	n := newTestNotifier(stores, gh, now)
	err := n.Dispatch(context.Background(), project, commit, primary,
		[]Identity{fresh, optedOut, recent}, "", "")
	require.NoError(t, err)

	gh.AssertNotCalled(t, "CreateCommitComment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	committers.AssertNotCalled(t, "SaveCommitter", mock.Anything)
}

func TestDispatchCollapsesDuplicateLogins(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	project := &data.Project{ID: 2, Owner: "acme", Name: "widgets"}
	commit := &data.Commit{ID: 7, ProjectID: 2, Hash: "abc123"}
	primary := classify.Edit{File: "f.py", Line: 1, Kind: classify.KindAdded}

	alice := identity("alice", 1, nil)

	stores, _, _, committers, _, _ := testStores()
	committers.On("SaveCommitter", alice.Committer).Return(nil).Once()

	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, "acme", "widgets", "abc123",
		mock.MatchedBy(func(body string) bool {
			return strings.Count(body, "@alice") == 1
		}), "f.py", 0).Return(nil)

	n := newTestNotifier(stores, gh, now)
	err := n.Dispatch(context.Background(), project, commit, primary,
		[]Identity{alice, alice}, "", "")
	require.NoError(t, err)

	committers.AssertExpectations(t)
	gh.AssertExpectations(t)
}

func TestDispatchCommentFailureIsTransient(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	project := &data.Project{ID: 2, Owner: "acme", Name: "widgets"}
	commit := &data.Commit{ID: 7, ProjectID: 2, Hash: "abc123"}
	primary := classify.Edit{File: "f.py", Line: 1, Kind: classify.KindAdded}

	alice := identity("alice", 1, nil)

	stores, _, _, committers, _, _ := testStores()
	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(errors.New("502"))

	n := newTestNotifier(stores, gh, now)
	err := n.Dispatch(context.Background(), project, commit, primary, []Identity{alice}, "", "")

	require.Error(t, err)
	assert.True(t, queue.IsTransient(err))
	// Contact dates must not be written when the comment was not posted.
	committers.AssertNotCalled(t, "SaveCommitter", mock.Anything)
	assert.Nil(t, alice.Committer.LastContactDate)
}

func TestSendConsentRequest(t *testing.T) {
	stores, projects, commits, committers, _, _ := testStores()
	committers.On("GetCommitterByID", uint(3)).Return(&data.Committer{ID: 3, Username: "alice"}, nil)
	commits.On("GetCommitByID", uint(7)).Return(&data.Commit{ID: 7, ProjectID: 2, Hash: "abc123"}, nil)
	projects.On("GetProjectByID", uint(2)).Return(&data.Project{ID: 2, Owner: "acme", Name: "widgets"}, nil)

	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, "acme", "widgets", "abc123",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "@alice") && strings.Contains(body, "@surveybot consent")
		}), "", 0).Return(nil)

	n := newTestNotifier(stores, gh, time.Now())
	err := n.SendConsentRequest(context.Background(), ConsentRequestPayload{CommitID: 7, CommitterID: 3})
	require.NoError(t, err)
	gh.AssertExpectations(t)
}

func TestSendConsentRequestFailureIsTransient(t *testing.T) {
	stores, projects, commits, committers, _, _ := testStores()
	committers.On("GetCommitterByID", uint(3)).Return(&data.Committer{ID: 3, Username: "alice"}, nil)
	commits.On("GetCommitByID", uint(7)).Return(&data.Commit{ID: 7, ProjectID: 2, Hash: "abc123"}, nil)
	projects.On("GetProjectByID", uint(2)).Return(&data.Project{ID: 2, Owner: "acme", Name: "widgets"}, nil)

	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).Return(errors.New("503"))

	n := newTestNotifier(stores, gh, time.Now())
	err := n.SendConsentRequest(context.Background(), ConsentRequestPayload{CommitID: 7, CommitterID: 3})

	require.Error(t, err)
	assert.True(t, queue.IsTransient(err))
}
