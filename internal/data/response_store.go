package data

import (
	"gorm.io/gorm"
)

// ResponseStore defines an interface for survey-response database operations
type ResponseStore interface {
	CreateResponse(response *Response) error
	CountResponsesForPair(commitID, membershipID uint) (int64, error)
	CountResponsesByCommitter(committerID uint) (int64, error)
	CountResponses() (int64, error)
}

// GormResponseStore is a GORM-based implementation of ResponseStore
type GormResponseStore struct {
	db *gorm.DB
}

// NewGormResponseStore initializes a new GormResponseStore
func NewGormResponseStore(db *gorm.DB) *GormResponseStore {
	return &GormResponseStore{db: db}
}

func (s *GormResponseStore) CreateResponse(response *Response) error {
	return s.db.Create(response).Error
}

func (s *GormResponseStore) CountResponsesForPair(commitID, membershipID uint) (int64, error) {
	var count int64
	err := s.db.Model(&Response{}).
		Where("commit_id = ? AND project_committer_id = ?", commitID, membershipID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *GormResponseStore) CountResponsesByCommitter(committerID uint) (int64, error) {
	var count int64
	err := s.db.Model(&Response{}).
		Joins("JOIN project_committers ON project_committers.id = responses.project_committer_id").
		Where("project_committers.committer_id = ?", committerID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *GormResponseStore) CountResponses() (int64, error) {
	var count int64
	if err := s.db.Model(&Response{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
