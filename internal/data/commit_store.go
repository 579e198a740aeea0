package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// CommitStore defines an interface for commit database operations
type CommitStore interface {
	GetOrCreateCommit(commit *Commit) (*Commit, bool, error)
	SaveCommit(commit *Commit) error
	GetCommitByID(id uint) (*Commit, error)
	GetCommitByHash(hash string) (*Commit, error)
	GetCommitsByProject(projectID uint) ([]Commit, error)
	DeleteIrrelevantBefore(cutoff time.Time) (int64, error)
	CountCommits() (int64, error)
	CountRelevantCommits() (int64, error)
}

// GormCommitStore is a GORM-based implementation of CommitStore
type GormCommitStore struct {
	db *gorm.DB
}

// NewGormCommitStore initializes a new GormCommitStore
func NewGormCommitStore(db *gorm.DB) *GormCommitStore {
	return &GormCommitStore{db: db}
}

// GetOrCreateCommit inserts the commit stub, or returns the existing row for
// the same (project, hash) pair when a concurrent insert won the race.
func (s *GormCommitStore) GetOrCreateCommit(commit *Commit) (*Commit, bool, error) {
	var existing Commit
	err := s.db.Where("project_id = ? AND hash = ?", commit.ProjectID, commit.Hash).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := s.db.Create(commit).Error; err != nil {
		// Uniqueness race: the row exists now, fetch it instead of failing.
		if ferr := s.db.Where("project_id = ? AND hash = ?", commit.ProjectID, commit.Hash).First(&existing).Error; ferr == nil {
			return &existing, false, nil
		}
		return nil, false, err
	}
	return commit, true, nil
}

func (s *GormCommitStore) SaveCommit(commit *Commit) error {
	return s.db.Save(commit).Error
}

func (s *GormCommitStore) GetCommitByID(id uint) (*Commit, error) {
	var commit Commit
	if err := s.db.First(&commit, id).Error; err != nil {
		return nil, err
	}
	return &commit, nil
}

func (s *GormCommitStore) GetCommitByHash(hash string) (*Commit, error) {
	var commit Commit
	if err := s.db.Where("hash = ?", hash).First(&commit).Error; err != nil {
		return nil, err
	}
	return &commit, nil
}

func (s *GormCommitStore) GetCommitsByProject(projectID uint) ([]Commit, error) {
	var commits []Commit
	if err := s.db.Where("project_id = ?", projectID).Order("id").Find(&commits).Error; err != nil {
		return nil, err
	}
	return commits, nil
}

// DeleteIrrelevantBefore removes evaluated, irrelevant commits created before
// the cutoff and returns how many rows were deleted.
func (s *GormCommitStore) DeleteIrrelevantBefore(cutoff time.Time) (int64, error) {
	res := s.db.Where("evaluated = ? AND is_relevant = ? AND created_at < ?", true, false, cutoff).
		Delete(&Commit{})
	return res.RowsAffected, res.Error
}

func (s *GormCommitStore) CountCommits() (int64, error) {
	var count int64
	if err := s.db.Model(&Commit{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *GormCommitStore) CountRelevantCommits() (int64, error) {
	var count int64
	if err := s.db.Model(&Commit{}).Where("is_relevant = ?", true).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
