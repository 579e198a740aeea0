package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/typetrace/typetrace/internal/data"
)

// record stores a free-text comment as a survey answer. The answer to the
// gating initial survey lives on the committer (and doubles as the
// maintainer answer for maintainers); everything else becomes a Response,
// at most one per (commit, membership) pair.
func (p *CommentProcessor) record(ctx context.Context, ev CommentEvent, committer *data.Committer, commit *data.Commit) error {
	membership, err := p.stores.Memberships.GetMembership(commit.ProjectID, committer.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up membership of %s: %w", committer.Username, err)
	}

	if membership.InitialCommitID != nil && *membership.InitialCommitID == commit.ID &&
		committer.InitialSurveyResponse == nil {
		body := ev.Body
		committer.InitialSurveyResponse = &body
		if err := p.stores.Committers.SaveCommitter(committer); err != nil {
			return fmt.Errorf("store initial survey answer of %s: %w", committer.Username, err)
		}
		if membership.IsMaintainer {
			membership.MaintainerSurveyResponse = &body
			if err := p.stores.Memberships.SaveMembership(membership); err != nil {
				return fmt.Errorf("store maintainer survey answer of %s: %w", committer.Username, err)
			}
		}
		p.log.Infow("initial survey answered", "username", committer.Username, "commit", commit.Hash)

		// The gating survey is answered, move the commit past it.
		if _, err := p.queue.Enqueue(ctx, JobEvaluateCommit, EvaluatePayload{CommitID: commit.ID}); err != nil {
			return fmt.Errorf("re-enqueue evaluation of commit %d: %w", commit.ID, err)
		}
	} else {
		count, err := p.stores.Responses.CountResponsesForPair(commit.ID, membership.ID)
		if err != nil {
			return fmt.Errorf("count responses: %w", err)
		}
		if count > 0 {
			// Already answered; later comments on the same commit are chatter.
			return nil
		}
		response := &data.Response{
			CommitID:           commit.ID,
			ProjectCommitterID: membership.ID,
			Body:               ev.Body,
		}
		if err := p.stores.Responses.CreateResponse(response); err != nil {
			// A concurrent insert for the same pair is fine, the first one wins.
			if recount, rerr := p.stores.Responses.CountResponsesForPair(commit.ID, membership.ID); rerr != nil || recount == 0 {
				return fmt.Errorf("store response: %w", err)
			}
			return nil
		}
		p.log.Infow("survey response recorded", "username", committer.Username, "commit", commit.Hash)
	}

	if err := p.gh.CreateCommentReaction(ctx, ev.Owner, ev.Repo, ev.CommentID, "+1"); err != nil {
		p.log.Warnw("reaction failed", "comment", ev.CommentID, "error", err)
	}
	return nil
}
