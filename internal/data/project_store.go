package data

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStore defines an interface for project database operations
type ProjectStore interface {
	CreateProject(project *Project) error
	SaveProject(project *Project) error
	GetProjectByID(id uint) (*Project, error)
	GetProjectByOwnerName(owner, name string) (*Project, error)
	ListProjects() ([]Project, error)
	SoftRemoveProject(owner, name string, at time.Time) error
	CountProjects() (int64, error)
}

// GormProjectStore is a GORM-based implementation of ProjectStore
type GormProjectStore struct {
	db *gorm.DB
}

// NewGormProjectStore initializes a new GormProjectStore
func NewGormProjectStore(db *gorm.DB) *GormProjectStore {
	return &GormProjectStore{db: db}
}

func (s *GormProjectStore) CreateProject(project *Project) error {
	return s.db.Create(project).Error
}

func (s *GormProjectStore) SaveProject(project *Project) error {
	return s.db.Save(project).Error
}

func (s *GormProjectStore) GetProjectByID(id uint) (*Project, error) {
	var project Project
	if err := s.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *GormProjectStore) GetProjectByOwnerName(owner, name string) (*Project, error) {
	var project Project
	err := s.db.Where("owner = ? AND name = ?", owner, name).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *GormProjectStore) ListProjects() ([]Project, error) {
	var projects []Project
	if err := s.db.Where("removed_at IS NULL").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// SoftRemoveProject marks a project as removed without deleting its rows
func (s *GormProjectStore) SoftRemoveProject(owner, name string, at time.Time) error {
	return s.db.Model(&Project{}).
		Where("owner = ? AND name = ?", owner, name).
		Updates(map[string]interface{}{"removed_at": at, "track_changes": false}).Error
}

func (s *GormProjectStore) CountProjects() (int64, error) {
	var count int64
	if err := s.db.Model(&Project{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
