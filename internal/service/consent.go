package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/typetrace/typetrace/internal/data"
)

// Command is one of the reply verbs a participant can send to the bot.
type Command string

const (
	CmdConsent Command = "consent"
	CmdOptOut  Command = "optout"
	CmdRemove  Command = "remove"
)

var allCommands = []Command{CmdConsent, CmdOptOut, CmdRemove}

func commandPattern(botName string, cmd Command) *regexp.Regexp {
	return regexp.MustCompile(`(?i)@` + regexp.QuoteMeta(botName) + `(\[bot\])?\s+` + string(cmd) + `\b`)
}

// ParseCommands returns every command verb present in a comment body,
// matched as "@<bot-name> <verb>", case-insensitively.
func ParseCommands(body, botName string) []Command {
	var found []Command
	for _, cmd := range allCommands {
		if commandPattern(botName, cmd).MatchString(body) {
			found = append(found, cmd)
		}
	}
	return found
}

// ShouldContact reports whether a person may be notified now: never after an
// opt-out or removal, always on first contact, and otherwise only once the
// cooldown window since the last contact has elapsed.
func ShouldContact(c *data.Committer, now time.Time, cooldown time.Duration) bool {
	if c.OptOut != nil || c.Removal != nil {
		return false
	}
	if c.LastContactDate == nil {
		return true
	}
	return now.Sub(*c.LastContactDate) >= cooldown
}

// CommentEvent is an inbound comment on a commit.
type CommentEvent struct {
	CommentID int64  `json:"comment_id"`
	Commenter string `json:"commenter"`
	Body      string `json:"body"`
	CommitSHA string `json:"commit_sha"`
	Owner     string `json:"owner"`
	Repo      string `json:"repo"`
}

// CommentProcessor routes inbound comments: consent-state commands mutate the
// committer, anything else is treated as a survey answer.
type CommentProcessor struct {
	stores  Stores
	gh      GitHub
	queue   Enqueuer
	botName string
	clock   func() time.Time
	log     *zap.SugaredLogger
}

func NewCommentProcessor(stores Stores, gh GitHub, q Enqueuer, botName string, log *zap.SugaredLogger) *CommentProcessor {
	return &CommentProcessor{
		stores:  stores,
		gh:      gh,
		queue:   q,
		botName: botName,
		clock:   time.Now,
		log:     log,
	}
}

// Process handles one comment event.
func (p *CommentProcessor) Process(ctx context.Context, ev CommentEvent) error {
	if strings.EqualFold(ev.Commenter, p.botName+"[bot]") {
		return nil
	}

	committer, err := p.stores.Committers.GetCommitterByUsername(ev.Commenter)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Commenters outside the study are ignored.
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up commenter %s: %w", ev.Commenter, err)
	}

	commands := ParseCommands(ev.Body, p.botName)
	if len(commands) > 1 {
		p.log.Infow("conflicting commands in comment", "commenter", ev.Commenter, "commands", commands)
		return p.comment(ctx, ev, renderConflictAck(ev.Commenter, commands))
	}

	if len(commands) == 1 {
		switch commands[0] {
		case CmdRemove:
			return p.remove(ctx, ev, committer)
		case CmdOptOut:
			return p.optOut(ctx, ev, committer)
		case CmdConsent:
			return p.consent(ctx, ev, committer)
		}
	}

	commit, err := p.stores.Commits.GetCommitByHash(ev.CommitSHA)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up commit %s: %w", ev.CommitSHA, err)
	}
	if !commit.IsRelevant {
		return nil
	}
	if committer.ConsentTimestamp == nil {
		return nil
	}

	return p.record(ctx, ev, committer, commit)
}

// remove implements the right to erasure: opt-out plus removal timestamps,
// the initial survey answer cleared, and every Response and membership row
// deleted in one transaction.
func (p *CommentProcessor) remove(ctx context.Context, ev CommentEvent, committer *data.Committer) error {
	now := p.clock()
	committer.OptOut = &now
	committer.Removal = &now
	committer.InitialSurveyResponse = nil
	if err := p.stores.Committers.PurgeCommitterData(committer); err != nil {
		return fmt.Errorf("purge data of %s: %w", committer.Username, err)
	}
	p.log.Infow("committer removed", "username", committer.Username)
	return p.comment(ctx, ev, renderRemovalAck(ev.Commenter))
}

func (p *CommentProcessor) optOut(ctx context.Context, ev CommentEvent, committer *data.Committer) error {
	now := p.clock()
	committer.OptOut = &now
	if err := p.stores.Committers.SaveCommitter(committer); err != nil {
		return fmt.Errorf("opt out %s: %w", committer.Username, err)
	}
	p.log.Infow("committer opted out", "username", committer.Username)
	return p.comment(ctx, ev, renderOptOutAck(p.botName, ev.Commenter))
}

// consent records the consent timestamp and location and clears any previous
// opt-out or removal marker; a consent after an opt-out re-consents.
func (p *CommentProcessor) consent(ctx context.Context, ev CommentEvent, committer *data.Committer) error {
	commit, err := p.stores.Commits.GetCommitByHash(ev.CommitSHA)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up commit %s: %w", ev.CommitSHA, err)
	}
	if !commit.IsRelevant {
		return nil
	}

	now := p.clock()
	committer.ConsentTimestamp = &now
	committer.ConsentLocation = fmt.Sprintf("%s/%s/%s", ev.Owner, ev.Repo, ev.CommitSHA)
	committer.OptOut = nil
	committer.Removal = nil
	if err := p.stores.Committers.SaveCommitter(committer); err != nil {
		return fmt.Errorf("record consent of %s: %w", committer.Username, err)
	}
	p.log.Infow("committer consented", "username", committer.Username, "location", committer.ConsentLocation)

	if committer.InitialSurveyResponse == nil {
		return p.comment(ctx, ev, renderInitialSurvey(ev.Commenter))
	}
	return nil
}

func (p *CommentProcessor) comment(ctx context.Context, ev CommentEvent, body string) error {
	if err := p.gh.CreateCommitComment(ctx, ev.Owner, ev.Repo, ev.CommitSHA, body, "", 0); err != nil {
		return fmt.Errorf("post acknowledgment: %w", err)
	}
	return nil
}
