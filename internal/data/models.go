package data

import (
	"time"
)

// RelevanceType is the persisted classification of a commit.
type RelevanceType string

const (
	RelevanceIrrelevant RelevanceType = "irrelevant"
	RelevanceAdded      RelevanceType = "added"
	RelevanceRemoved    RelevanceType = "removed"
	RelevanceChanged    RelevanceType = "changed"
)

// Project represents a tracked repository
type Project struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Owner           string     `json:"owner" gorm:"uniqueIndex:idx_projects_owner_name"`
	Name            string     `json:"name" gorm:"uniqueIndex:idx_projects_owner_name"`
	PrimaryLanguage string     `json:"primary_language"`
	TrackChanges    bool       `json:"track_changes"`
	InstallationID  string     `json:"installation_id"`
	CloneURL        string     `json:"clone_url"`
	RemovedAt       *time.Time `json:"removed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Commits         []Commit   `json:"-" gorm:"foreignKey:ProjectID"`
}

// Commit represents one evaluated commit within a project
type Commit struct {
	ID                 uint          `json:"id" gorm:"primaryKey"`
	ProjectID          uint          `json:"project_id" gorm:"uniqueIndex:idx_commits_project_hash"`
	Hash               string        `json:"hash" gorm:"uniqueIndex:idx_commits_project_hash"`
	Message            string        `json:"message"`
	Evaluated          bool          `json:"evaluated"`
	IsRelevant         bool          `json:"is_relevant"`
	RelevanceType      RelevanceType `json:"relevance_type"`
	RelevantChangeFile string        `json:"relevant_change_file"`
	RelevantChangeLine int           `json:"relevant_change_line"`
	AuthorID           *uint         `json:"author_id"`    // ProjectCommitter
	CommitterID        *uint         `json:"committer_id"` // ProjectCommitter
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Committer represents a person identified by a platform username; the
// identity is global and shared across projects
type Committer struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	Username              string     `json:"username" gorm:"uniqueIndex"`
	ConsentTimestamp      *time.Time `json:"consent_timestamp"`
	ConsentLocation       string     `json:"consent_location"`
	OptOut                *time.Time `json:"opt_out"`
	Removal               *time.Time `json:"removal"`
	InitialSurveyResponse *string    `json:"initial_survey_response"`
	LastContactDate       *time.Time `json:"last_contact_date"`
	Tags                  string     `json:"tags"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// ProjectCommitter is the membership of a Committer in a Project
type ProjectCommitter struct {
	ID                       uint      `json:"id" gorm:"primaryKey"`
	ProjectID                uint      `json:"project_id" gorm:"uniqueIndex:idx_memberships_project_committer"`
	CommitterID              uint      `json:"committer_id" gorm:"uniqueIndex:idx_memberships_project_committer"`
	IsMaintainer             bool      `json:"is_maintainer"`
	InitialCommitID          *uint     `json:"initial_commit_id"`
	MaintainerSurveyResponse *string   `json:"maintainer_survey_response"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// Response is one survey answer keyed by (commit, membership)
type Response struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	CommitID           uint      `json:"commit_id" gorm:"uniqueIndex:idx_responses_commit_membership"`
	ProjectCommitterID uint      `json:"project_committer_id" gorm:"uniqueIndex:idx_responses_commit_membership"`
	Body               string    `json:"body"`
	CreatedAt          time.Time `json:"created_at"`
}
