package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/typetrace/typetrace/internal/data"
)

const testBot = "surveybot"

func TestParseCommands(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []Command
	}{
		{"single consent", "@surveybot consent", []Command{CmdConsent}},
		{"case insensitive", "@SurveyBot CONSENT", []Command{CmdConsent}},
		{"bot suffix", "@surveybot[bot] optout please", []Command{CmdOptOut}},
		{"embedded in text", "sure thing!\n@surveybot consent\nthanks", []Command{CmdConsent}},
		{"two commands", "@surveybot consent @surveybot optout", []Command{CmdConsent, CmdOptOut}},
		{"all three", "@surveybot consent @surveybot optout @surveybot remove", []Command{CmdConsent, CmdOptOut, CmdRemove}},
		{"no command", "thanks for reaching out", nil},
		{"verb without mention", "I consent", nil},
		{"wrong bot", "@otherbot consent", nil},
		{"verb prefix only", "@surveybot consenting adults", nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ParseCommands(c.body, testBot))
		})
	}
}

func TestShouldContact(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	cooldown := 14 * 24 * time.Hour
	past := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	assert.True(t, ShouldContact(&data.Committer{}, now, cooldown),
		"first contact is always allowed")
	assert.True(t, ShouldContact(&data.Committer{LastContactDate: past(15 * 24 * time.Hour)}, now, cooldown))
	assert.True(t, ShouldContact(&data.Committer{LastContactDate: past(cooldown)}, now, cooldown),
		"contact exactly at the cooldown boundary is allowed")
	assert.False(t, ShouldContact(&data.Committer{LastContactDate: past(13 * 24 * time.Hour)}, now, cooldown))
	assert.False(t, ShouldContact(&data.Committer{OptOut: past(time.Hour)}, now, cooldown))
	assert.False(t, ShouldContact(&data.Committer{Removal: past(time.Hour)}, now, cooldown))
}

func newTestProcessor(stores Stores, gh GitHub, q Enqueuer, now time.Time) *CommentProcessor {
	p := NewCommentProcessor(stores, gh, q, testBot, zap.NewNop().Sugar())
	p.clock = func() time.Time { return now }
	return p
}

func TestProcessIgnoresOwnComments(t *testing.T) {
	stores, _, _, committers, _, _ := testStores()
	gh := new(mockGitHub)
	p := newTestProcessor(stores, gh, new(mockEnqueuer), time.Now())

	err := p.Process(context.Background(), CommentEvent{Commenter: "Surveybot[bot]", Body: "anything"})
	require.NoError(t, err)

	committers.AssertNotCalled(t, "GetCommitterByUsername", mock.Anything)
	gh.AssertNotCalled(t, "CreateCommitComment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessIgnoresUnknownCommenter(t *testing.T) {
	stores, _, _, committers, _, _ := testStores()
	committers.On("GetCommitterByUsername", "stranger").Return(nil, gorm.ErrRecordNotFound)
	gh := new(mockGitHub)
	p := newTestProcessor(stores, gh, new(mockEnqueuer), time.Now())

	err := p.Process(context.Background(), CommentEvent{Commenter: "stranger", Body: "@surveybot consent"})
	require.NoError(t, err)

	gh.AssertNotCalled(t, "CreateCommitComment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessConflictingCommandsChangeNothing(t *testing.T) {
	stores, _, _, committers, _, _ := testStores()
	committers.On("GetCommitterByUsername", "alice").Return(&data.Committer{ID: 1, Username: "alice"}, nil)

	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, "acme", "widgets", "abc123",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "consent") && strings.Contains(body, "optout") &&
				strings.Contains(body, "@alice")
		}), "", 0).Return(nil)

	p := newTestProcessor(stores, gh, new(mockEnqueuer), time.Now())
	err := p.Process(context.Background(), CommentEvent{
		Commenter: "alice",
		Body:      "@surveybot consent @surveybot optout",
		CommitSHA: "abc123",
		Owner:     "acme",
		Repo:      "widgets",
	})
	require.NoError(t, err)

	gh.AssertExpectations(t)
	committers.AssertNotCalled(t, "SaveCommitter", mock.Anything)
	committers.AssertNotCalled(t, "PurgeCommitterData", mock.Anything)
}

func TestProcessOptOut(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	committer := &data.Committer{ID: 1, Username: "alice"}

	stores, _, _, committers, _, _ := testStores()
	committers.On("GetCommitterByUsername", "alice").Return(committer, nil)
	committers.On("SaveCommitter", committer).Return(nil)

	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, "acme", "widgets", "abc123",
		mock.MatchedBy(func(body string) bool { return strings.Contains(body, "not be contacted again") }),
		"", 0).Return(nil)

	p := newTestProcessor(stores, gh, new(mockEnqueuer), now)
	err := p.Process(context.Background(), CommentEvent{
		Commenter: "alice",
		Body:      "@surveybot optout",
		CommitSHA: "abc123",
		Owner:     "acme",
		Repo:      "widgets",
	})
	require.NoError(t, err)

	require.NotNil(t, committer.OptOut)
	assert.Equal(t, now, *committer.OptOut)
	assert.Nil(t, committer.Removal)
	gh.AssertExpectations(t)
	committers.AssertExpectations(t)
}

func TestProcessRemovePurgesEverything(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	answer := "I like types"
	committer := &data.Committer{ID: 1, Username: "alice", InitialSurveyResponse: &answer}

	stores, _, _, committers, _, _ := testStores()
	committers.On("GetCommitterByUsername", "alice").Return(committer, nil)
	committers.On("PurgeCommitterData", committer).Return(nil)

	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, "acme", "widgets", "abc123",
		mock.MatchedBy(func(body string) bool { return strings.Contains(body, "deleted") }),
		"", 0).Return(nil)

	p := newTestProcessor(stores, gh, new(mockEnqueuer), now)
	err := p.Process(context.Background(), CommentEvent{
		Commenter: "alice",
		Body:      "@surveybot remove",
		CommitSHA: "abc123",
		Owner:     "acme",
		Repo:      "widgets",
	})
	require.NoError(t, err)

	require.NotNil(t, committer.OptOut)
	require.NotNil(t, committer.Removal)
	assert.Equal(t, now, *committer.Removal)
	assert.Nil(t, committer.InitialSurveyResponse)
	committers.AssertExpectations(t)
	gh.AssertExpectations(t)
}

func TestProcessConsent(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	optedOut := now.Add(-48 * time.Hour)
	committer := &data.Committer{ID: 1, Username: "alice", OptOut: &optedOut}

	stores, _, commits, committers, _, _ := testStores()
	committers.On("GetCommitterByUsername", "alice").Return(committer, nil)
	committers.On("SaveCommitter", committer).Return(nil)
	commits.On("GetCommitByHash", "abc123").Return(&data.Commit{ID: 7, Hash: "abc123", IsRelevant: true}, nil)

	gh := new(mockGitHub)
	gh.On("CreateCommitComment", mock.Anything, "acme", "widgets", "abc123",
		mock.MatchedBy(func(body string) bool { return strings.Contains(body, "Thank you for consenting") }),
		"", 0).Return(nil)

	p := newTestProcessor(stores, gh, new(mockEnqueuer), now)
	err := p.Process(context.Background(), CommentEvent{
		Commenter: "alice",
		Body:      "@surveybot consent",
		CommitSHA: "abc123",
		Owner:     "acme",
		Repo:      "widgets",
	})
	require.NoError(t, err)

	require.NotNil(t, committer.ConsentTimestamp)
	assert.Equal(t, now, *committer.ConsentTimestamp)
	assert.Equal(t, "acme/widgets/abc123", committer.ConsentLocation)
	assert.Nil(t, committer.OptOut, "consenting clears a previous opt-out")
	committers.AssertExpectations(t)
	gh.AssertExpectations(t)
}

func TestProcessConsentRequiresRelevantCommit(t *testing.T) {
	committer := &data.Committer{ID: 1, Username: "alice"}

	stores, _, commits, committers, _, _ := testStores()
	committers.On("GetCommitterByUsername", "alice").Return(committer, nil)
	commits.On("GetCommitByHash", "abc123").Return(&data.Commit{ID: 7, Hash: "abc123", IsRelevant: false}, nil)

	gh := new(mockGitHub)
	p := newTestProcessor(stores, gh, new(mockEnqueuer), time.Now())
	err := p.Process(context.Background(), CommentEvent{
		Commenter: "alice",
		Body:      "@surveybot consent",
		CommitSHA: "abc123",
	})
	require.NoError(t, err)

	assert.Nil(t, committer.ConsentTimestamp)
	committers.AssertNotCalled(t, "SaveCommitter", mock.Anything)
	gh.AssertNotCalled(t, "CreateCommitComment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessConsentSkipsInitialSurveyWhenAnswered(t *testing.T) {
	answer := "done already"
	committer := &data.Committer{ID: 1, Username: "alice", InitialSurveyResponse: &answer}

	stores, _, commits, committers, _, _ := testStores()
	committers.On("GetCommitterByUsername", "alice").Return(committer, nil)
	committers.On("SaveCommitter", committer).Return(nil)
	commits.On("GetCommitByHash", "abc123").Return(&data.Commit{ID: 7, Hash: "abc123", IsRelevant: true}, nil)

	gh := new(mockGitHub)
	p := newTestProcessor(stores, gh, new(mockEnqueuer), time.Now())
	err := p.Process(context.Background(), CommentEvent{
		Commenter: "alice",
		Body:      "@surveybot consent",
		CommitSHA: "abc123",
	})
	require.NoError(t, err)

	committers.AssertExpectations(t)
	gh.AssertNotCalled(t, "CreateCommitComment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
