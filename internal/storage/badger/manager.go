package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	project  interfaces.ProjectStorage
	context  interfaces.ContextStorage
	response interfaces.ResponseStorage
	feature  interfaces.FeatureStorage
	prd      interfaces.PRDStorage
	template interfaces.TemplateStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		project:  NewProjectStorage(db, logger),
		context:  NewContextStorage(db, logger),
		response: NewResponseStorage(db, logger),
		feature:  NewFeatureStorage(db, logger),
		prd:      NewPRDStorage(db, logger),
		template: NewTemplateStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// ProjectStorage returns the Project storage interface
func (m *Manager) ProjectStorage() interfaces.ProjectStorage {
	return m.project
}

// ContextStorage returns the ContextFile storage interface
func (m *Manager) ContextStorage() interfaces.ContextStorage {
	return m.context
}

// ResponseStorage returns the QuestionResponse storage interface
func (m *Manager) ResponseStorage() interfaces.ResponseStorage {
	return m.response
}

// FeatureStorage returns the Feature storage interface
func (m *Manager) FeatureStorage() interfaces.FeatureStorage {
	return m.feature
}

// PRDStorage returns the PRD storage interface
func (m *Manager) PRDStorage() interfaces.PRDStorage {
	return m.prd
}

// TemplateStorage returns the PRDTemplate storage interface
func (m *Manager) TemplateStorage() interfaces.TemplateStorage {
	return m.template
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
