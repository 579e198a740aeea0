package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/typetrace/typetrace/internal/classify"
	"github.com/typetrace/typetrace/internal/data"
	"github.com/typetrace/typetrace/internal/queue"
)

// Notifier posts survey and consent comments and maintains contact
// timestamps.
type Notifier struct {
	stores   Stores
	gh       GitHub
	botName  string
	cooldown time.Duration
	clock    func() time.Time
	log      *zap.SugaredLogger
}

func NewNotifier(stores Stores, gh GitHub, botName string, cooldown time.Duration, log *zap.SugaredLogger) *Notifier {
	return &Notifier{
		stores:   stores,
		gh:       gh,
		botName:  botName,
		cooldown: cooldown,
		clock:    time.Now,
		log:      log,
	}
}

// Dispatch posts at most one survey comment per commit, jointly mentioning
// every eligible identity, anchored on the primary classification's diff
// position.
//
// Identities whose membership was created during this evaluation are
// excluded (they receive the consent request instead), duplicate logins are
// collapsed, and the cooldown predicate filters the rest.
//
// Ordering: the comment is posted before contact timestamps are written. A
// crash between the two can repost the comment on retry, but a notification
// is never marked sent without having been posted.
func (n *Notifier) Dispatch(ctx context.Context, project *data.Project, commit *data.Commit,
	primary classify.Edit, identities []Identity, preText, patch string) error {

	now := n.clock()
	seen := make(map[string]bool)
	var eligible []Identity
	for _, identity := range identities {
		if identity.New || seen[identity.Login] {
			continue
		}
		seen[identity.Login] = true
		if ShouldContact(identity.Committer, now, n.cooldown) {
			eligible = append(eligible, identity)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	logins := make([]string, len(eligible))
	for i, identity := range eligible {
		logins[i] = identity.Login
	}

	position := classify.Anchor(primary, preText, patch)
	body := renderSurvey(n.botName, logins, string(primary.Kind))
	err := n.gh.CreateCommitComment(ctx, project.Owner, project.Name, commit.Hash, body, primary.File, position)
	if err != nil {
		return queue.Transient(fmt.Errorf("post survey comment on %s: %w", commit.Hash, err))
	}

	contactedAt := n.clock()
	for _, identity := range eligible {
		identity.Committer.LastContactDate = &contactedAt
		if err := n.stores.Committers.SaveCommitter(identity.Committer); err != nil {
			return fmt.Errorf("update contact date of %s: %w", identity.Login, err)
		}
	}
	n.log.Infow("survey dispatched", "project", project.Name, "commit", commit.Hash, "notified", logins)
	return nil
}

// SendConsentRequest posts the informed-consent message for a newly seen
// identity on the commit that introduced them.
func (n *Notifier) SendConsentRequest(ctx context.Context, payload ConsentRequestPayload) error {
	committer, err := n.stores.Committers.GetCommitterByID(payload.CommitterID)
	if err != nil {
		return fmt.Errorf("load committer %d: %w", payload.CommitterID, err)
	}
	commit, err := n.stores.Commits.GetCommitByID(payload.CommitID)
	if err != nil {
		return fmt.Errorf("load commit %d: %w", payload.CommitID, err)
	}
	project, err := n.stores.Projects.GetProjectByID(commit.ProjectID)
	if err != nil {
		return fmt.Errorf("load project %d: %w", commit.ProjectID, err)
	}

	body := renderConsentRequest(n.botName, committer.Username)
	err = n.gh.CreateCommitComment(ctx, project.Owner, project.Name, commit.Hash, body, "", 0)
	if err != nil {
		return queue.Transient(fmt.Errorf("post consent request on %s: %w", commit.Hash, err))
	}
	n.log.Infow("consent request sent", "project", project.Name, "commit", commit.Hash, "username", committer.Username)
	return nil
}
