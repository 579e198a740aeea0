package data

import (
	"errors"

	"gorm.io/gorm"
)

// MembershipStore defines an interface for project-committer membership
// database operations
type MembershipStore interface {
	GetOrCreateMembership(membership *ProjectCommitter) (*ProjectCommitter, bool, error)
	GetMembership(projectID, committerID uint) (*ProjectCommitter, error)
	SaveMembership(membership *ProjectCommitter) error
	ListMembershipsByCommitter(committerID uint) ([]ProjectCommitter, error)
	CountMembershipsByCommitter(committerID uint) (int64, error)
}

// GormMembershipStore is a GORM-based implementation of MembershipStore
type GormMembershipStore struct {
	db *gorm.DB
}

// NewGormMembershipStore initializes a new GormMembershipStore
func NewGormMembershipStore(db *gorm.DB) *GormMembershipStore {
	return &GormMembershipStore{db: db}
}

// GetOrCreateMembership inserts the membership, or returns the existing row
// for the same (project, committer) pair when a concurrent insert won.
func (s *GormMembershipStore) GetOrCreateMembership(membership *ProjectCommitter) (*ProjectCommitter, bool, error) {
	var existing ProjectCommitter
	err := s.db.Where("project_id = ? AND committer_id = ?", membership.ProjectID, membership.CommitterID).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := s.db.Create(membership).Error; err != nil {
		if ferr := s.db.Where("project_id = ? AND committer_id = ?", membership.ProjectID, membership.CommitterID).
			First(&existing).Error; ferr == nil {
			return &existing, false, nil
		}
		return nil, false, err
	}
	return membership, true, nil
}

func (s *GormMembershipStore) GetMembership(projectID, committerID uint) (*ProjectCommitter, error) {
	var membership ProjectCommitter
	err := s.db.Where("project_id = ? AND committer_id = ?", projectID, committerID).First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (s *GormMembershipStore) SaveMembership(membership *ProjectCommitter) error {
	return s.db.Save(membership).Error
}

func (s *GormMembershipStore) ListMembershipsByCommitter(committerID uint) ([]ProjectCommitter, error) {
	var memberships []ProjectCommitter
	if err := s.db.Where("committer_id = ?", committerID).Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (s *GormMembershipStore) CountMembershipsByCommitter(committerID uint) (int64, error) {
	var count int64
	err := s.db.Model(&ProjectCommitter{}).Where("committer_id = ?", committerID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
