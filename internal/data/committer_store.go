package data

import (
	"errors"

	"gorm.io/gorm"
)

// CommitterStore defines an interface for committer database operations
type CommitterStore interface {
	GetOrCreateCommitter(username string) (*Committer, bool, error)
	GetCommitterByUsername(username string) (*Committer, error)
	GetCommitterByID(id uint) (*Committer, error)
	SaveCommitter(committer *Committer) error
	// PurgeCommitterData saves the updated committer row and deletes every
	// Response and ProjectCommitter row belonging to it in one transaction.
	PurgeCommitterData(committer *Committer) error
	ListCommitters() ([]Committer, error)
	CountCommitters() (int64, error)
}

// GormCommitterStore is a GORM-based implementation of CommitterStore
type GormCommitterStore struct {
	db *gorm.DB
}

// NewGormCommitterStore initializes a new GormCommitterStore
func NewGormCommitterStore(db *gorm.DB) *GormCommitterStore {
	return &GormCommitterStore{db: db}
}

// GetOrCreateCommitter returns the committer with this username, creating it
// when missing. A duplicate insert lost to a concurrent writer is recovered
// by re-fetching the existing row.
func (s *GormCommitterStore) GetOrCreateCommitter(username string) (*Committer, bool, error) {
	var committer Committer
	err := s.db.Where("username = ?", username).First(&committer).Error
	if err == nil {
		return &committer, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	committer = Committer{Username: username}
	if err := s.db.Create(&committer).Error; err != nil {
		var existing Committer
		if ferr := s.db.Where("username = ?", username).First(&existing).Error; ferr == nil {
			return &existing, false, nil
		}
		return nil, false, err
	}
	return &committer, true, nil
}

func (s *GormCommitterStore) GetCommitterByUsername(username string) (*Committer, error) {
	var committer Committer
	if err := s.db.Where("username = ?", username).First(&committer).Error; err != nil {
		return nil, err
	}
	return &committer, nil
}

func (s *GormCommitterStore) GetCommitterByID(id uint) (*Committer, error) {
	var committer Committer
	if err := s.db.First(&committer, id).Error; err != nil {
		return nil, err
	}
	return &committer, nil
}

func (s *GormCommitterStore) SaveCommitter(committer *Committer) error {
	return s.db.Save(committer).Error
}

func (s *GormCommitterStore) PurgeCommitterData(committer *Committer) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(committer).Error; err != nil {
			return err
		}
		var memberships []ProjectCommitter
		if err := tx.Where("committer_id = ?", committer.ID).Find(&memberships).Error; err != nil {
			return err
		}
		for _, m := range memberships {
			if err := tx.Where("project_committer_id = ?", m.ID).Delete(&Response{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("committer_id = ?", committer.ID).Delete(&ProjectCommitter{}).Error
	})
}

func (s *GormCommitterStore) ListCommitters() ([]Committer, error) {
	var committers []Committer
	if err := s.db.Order("id").Find(&committers).Error; err != nil {
		return nil, err
	}
	return committers, nil
}

func (s *GormCommitterStore) CountCommitters() (int64, error) {
	var count int64
	if err := s.db.Model(&Committer{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
