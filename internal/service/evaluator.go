package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/typetrace/typetrace/internal/astdiff"
	"github.com/typetrace/typetrace/internal/classify"
	"github.com/typetrace/typetrace/internal/data"
	"github.com/typetrace/typetrace/internal/queue"
)

// Identity is one person attached to a commit (author or committer) together
// with their roster rows.
type Identity struct {
	Login      string
	New        bool // membership created during this evaluation
	Committer  *data.Committer
	Membership *data.ProjectCommitter
}

// Evaluator classifies commits and keeps the project roster current.
type Evaluator struct {
	stores     Stores
	repos      GitRepo
	gh         GitHub
	extractor  Extractor
	classifier *classify.Classifier
	notifier   *Notifier
	queue      Enqueuer
	log        *zap.SugaredLogger
}

func NewEvaluator(stores Stores, repos GitRepo, gh GitHub, extractor Extractor,
	classifier *classify.Classifier, notifier *Notifier, q Enqueuer, log *zap.SugaredLogger) *Evaluator {
	return &Evaluator{
		stores:     stores,
		repos:      repos,
		gh:         gh,
		extractor:  extractor,
		classifier: classifier,
		notifier:   notifier,
		queue:      q,
		log:        log,
	}
}

// Evaluate classifies one commit and, when it is relevant, updates the
// project roster and dispatches notifications. Re-running it on an
// already-classified commit produces the same result.
func (e *Evaluator) Evaluate(ctx context.Context, commitID uint) error {
	commit, err := e.stores.Commits.GetCommitByID(commitID)
	if err != nil {
		return fmt.Errorf("load commit %d: %w", commitID, err)
	}
	project, err := e.stores.Projects.GetProjectByID(commit.ProjectID)
	if err != nil {
		return fmt.Errorf("load project %d: %w", commit.ProjectID, err)
	}

	lang := classify.Language(project.PrimaryLanguage)
	grammar, supported := classify.GrammarFor(lang)
	if !supported {
		return e.markIrrelevant(commit)
	}

	// The clone may lag the webhook; resolution failures are retryable.
	parents, err := e.repos.Parents(ctx, project.Owner, project.Name, commit.Hash)
	if err != nil {
		return queue.Transient(fmt.Errorf("resolve commit %s: %w", commit.Hash, err))
	}
	if len(parents) > 1 {
		e.log.Infow("merge commit skipped", "project", project.Name, "commit", commit.Hash)
		return e.markIrrelevant(commit)
	}
	parent := ""
	if len(parents) == 1 {
		parent = parents[0]
	}

	files, err := e.repos.ChangedFiles(ctx, project.Owner, project.Name, commit.Hash)
	if err != nil {
		return queue.Transient(fmt.Errorf("changed files of %s: %w", commit.Hash, err))
	}
	var kept []string
	for _, f := range files {
		if classify.FileRelevant(f, lang) {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return e.markIrrelevant(commit)
	}

	edits, primaryPre, primaryPost := e.classifyFiles(ctx, project, commit, parent, kept, grammar, lang)
	if len(edits) == 0 {
		return e.markIrrelevant(commit)
	}
	primary := edits[0]

	author, committer, err := e.updateRoster(ctx, project, commit)
	if err != nil {
		return err
	}

	commit.Evaluated = true
	commit.IsRelevant = true
	commit.RelevanceType = relevanceOf(primary.Kind)
	commit.RelevantChangeFile = primary.File
	commit.RelevantChangeLine = primary.Line
	if author != nil {
		commit.AuthorID = &author.Membership.ID
	}
	if committer != nil {
		commit.CommitterID = &committer.Membership.ID
	} else if author != nil {
		commit.CommitterID = &author.Membership.ID
	}
	if err := e.stores.Commits.SaveCommit(commit); err != nil {
		return fmt.Errorf("persist classification of %s: %w", commit.Hash, err)
	}
	e.log.Infow("commit classified relevant",
		"project", project.Name, "commit", commit.Hash,
		"kind", primary.Kind, "file", primary.File, "line", primary.Line)

	patch := unifiedPatch(primaryPre, primaryPost, primary.File)
	identities := []Identity{}
	if author != nil {
		identities = append(identities, *author)
	}
	if committer != nil {
		identities = append(identities, *committer)
	}
	return e.notifier.Dispatch(ctx, project, commit, primary, identities, primaryPre, patch)
}

// classifyFiles runs extraction and classification per changed file. One
// file's failure never aborts its siblings.
func (e *Evaluator) classifyFiles(ctx context.Context, project *data.Project, commit *data.Commit,
	parent string, files []string, grammar astdiff.Grammar, lang classify.Language) ([]classify.Edit, string, string) {

	var edits []classify.Edit
	var primaryPre, primaryPost string

	for _, file := range files {
		pre := ""
		if parent != "" {
			text, _, err := e.repos.FileAt(ctx, project.Owner, project.Name, parent, file)
			if err != nil {
				e.log.Warnw("pre-version read failed, skipping file", "file", file, "error", err)
				continue
			}
			pre = text
		}
		post, _, err := e.repos.FileAt(ctx, project.Owner, project.Name, commit.Hash, file)
		if err != nil {
			e.log.Warnw("post-version read failed, skipping file", "file", file, "error", err)
			continue
		}

		diff, err := e.extractor.Extract(ctx, pre, post, grammar)
		if err != nil {
			e.log.Warnw("diff extraction failed, skipping file", "file", file, "error", err)
			continue
		}

		fileEdits := e.classifier.Classify(diff, classify.Input{
			PreName:  file,
			PostName: file,
			PreText:  pre,
			PostText: post,
			Language: lang,
		})
		if len(fileEdits) > 0 && len(edits) == 0 {
			primaryPre, primaryPost = pre, post
		}
		edits = append(edits, fileEdits...)
	}
	return edits, primaryPre, primaryPost
}

// updateRoster resolves the commit's author and committer identities,
// creating Committer and ProjectCommitter rows for previously-unseen people.
// New memberships trigger an informed-consent request instead of a survey.
func (e *Evaluator) updateRoster(ctx context.Context, project *data.Project, commit *data.Commit) (*Identity, *Identity, error) {
	ghCommit, err := e.gh.GetCommit(ctx, project.Owner, project.Name, commit.Hash)
	if err != nil {
		return nil, nil, queue.Transient(fmt.Errorf("fetch commit %s: %w", commit.Hash, err))
	}

	var maintainers []string
	maintainersLoaded := false
	loadMaintainers := func() []string {
		if !maintainersLoaded {
			list, err := e.gh.ListMaintainers(ctx, project.Owner, project.Name)
			if err != nil {
				e.log.Warnw("maintainer listing failed", "project", project.Name, "error", err)
			}
			maintainers = list
			maintainersLoaded = true
		}
		return maintainers
	}

	resolve := func(login string) (*Identity, error) {
		if login == "" {
			return nil, nil
		}
		person, _, err := e.stores.Committers.GetOrCreateCommitter(login)
		if err != nil {
			return nil, fmt.Errorf("resolve committer %s: %w", login, err)
		}
		membership, created, err := e.stores.Memberships.GetOrCreateMembership(&data.ProjectCommitter{
			ProjectID:       project.ID,
			CommitterID:     person.ID,
			InitialCommitID: &commit.ID,
			IsMaintainer:    slices.Contains(loadMaintainers(), login),
		})
		if err != nil {
			return nil, fmt.Errorf("resolve membership of %s: %w", login, err)
		}
		if created {
			payload := ConsentRequestPayload{CommitID: commit.ID, CommitterID: person.ID}
			if _, err := e.queue.Enqueue(ctx, JobConsentRequest, payload); err != nil {
				return nil, fmt.Errorf("enqueue consent request for %s: %w", login, err)
			}
		}
		return &Identity{Login: login, New: created, Committer: person, Membership: membership}, nil
	}

	author, err := resolve(ghCommit.Author.Login)
	if err != nil {
		return nil, nil, err
	}
	var committer *Identity
	if ghCommit.Committer.Login != "" && ghCommit.Committer.Login != ghCommit.Author.Login {
		committer, err = resolve(ghCommit.Committer.Login)
		if err != nil {
			return nil, nil, err
		}
	}
	return author, committer, nil
}

func (e *Evaluator) markIrrelevant(commit *data.Commit) error {
	commit.Evaluated = true
	commit.IsRelevant = false
	commit.RelevanceType = data.RelevanceIrrelevant
	commit.RelevantChangeFile = ""
	commit.RelevantChangeLine = 0
	if err := e.stores.Commits.SaveCommit(commit); err != nil {
		return fmt.Errorf("mark commit %s irrelevant: %w", commit.Hash, err)
	}
	return nil
}

func relevanceOf(kind classify.ChangeKind) data.RelevanceType {
	switch kind {
	case classify.KindAdded:
		return data.RelevanceAdded
	case classify.KindRemoved:
		return data.RelevanceRemoved
	case classify.KindChanged:
		return data.RelevanceChanged
	}
	return data.RelevanceIrrelevant
}

// unifiedPatch renders the textual patch LineMapper anchors comments in.
func unifiedPatch(pre, post, name string) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(pre),
		B:        difflib.SplitLines(post),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return out
}

