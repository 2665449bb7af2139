package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

// fakeStorageManager wires the in-memory fakes behind the storage
// manager interface for handler tests.
type fakeStorageManager struct {
	projects  *fakeProjectStorage
	contexts  *fakeContextStorage
	responses *fakeResponseStorage
	features  *fakeFeatureStorage
	prds      *fakePRDStorage
	templates *fakeTemplateStorage
}

func newFakeStorageManager() *fakeStorageManager {
	return &fakeStorageManager{
		projects:  &fakeProjectStorage{items: map[string]*models.Project{}},
		contexts:  &fakeContextStorage{},
		responses: &fakeResponseStorage{items: map[string]*models.QuestionResponse{}},
		features:  &fakeFeatureStorage{},
		prds:      &fakePRDStorage{},
		templates: &fakeTemplateStorage{items: map[string]*models.PRDTemplate{}},
	}
}

func (m *fakeStorageManager) ProjectStorage() interfaces.ProjectStorage   { return m.projects }
func (m *fakeStorageManager) ContextStorage() interfaces.ContextStorage   { return m.contexts }
func (m *fakeStorageManager) ResponseStorage() interfaces.ResponseStorage { return m.responses }
func (m *fakeStorageManager) FeatureStorage() interfaces.FeatureStorage   { return m.features }
func (m *fakeStorageManager) PRDStorage() interfaces.PRDStorage           { return m.prds }
func (m *fakeStorageManager) TemplateStorage() interfaces.TemplateStorage { return m.templates }
func (m *fakeStorageManager) Close() error                                { return nil }

type fakeTemplateStorage struct {
	items map[string]*models.PRDTemplate
}

func (s *fakeTemplateStorage) SaveTemplate(t *models.PRDTemplate) error {
	s.items[t.ID] = t
	return nil
}

func (s *fakeTemplateStorage) GetTemplate(id string) (*models.PRDTemplate, error) {
	t, ok := s.items[id]
	if !ok {
		return nil, common.NotFoundError("template not found: %s", id)
	}
	return t, nil
}

func (s *fakeTemplateStorage) ListTemplates() ([]*models.PRDTemplate, error) {
	list := make([]*models.PRDTemplate, 0, len(s.items))
	for _, t := range s.items {
		list = append(list, t)
	}
	return list, nil
}

func (s *fakeTemplateStorage) DeleteTemplate(id string) error {
	delete(s.items, id)
	return nil
}

type fakeProjectStorage struct {
	items   map[string]*models.Project
	deleted []string
}

func (s *fakeProjectStorage) SaveProject(p *models.Project) error {
	s.items[p.ID] = p
	return nil
}

func (s *fakeProjectStorage) GetProject(id string) (*models.Project, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, common.NotFoundError("project not found: %s", id)
	}
	return p, nil
}

func (s *fakeProjectStorage) ListProjects() ([]*models.Project, error) {
	out := make([]*models.Project, 0, len(s.items))
	for _, p := range s.items {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeProjectStorage) DeleteProject(id string) error {
	delete(s.items, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type fakeContextStorage struct {
	files          []*models.ContextFile
	deletedProject string
}

func (s *fakeContextStorage) SaveFile(f *models.ContextFile) error { s.files = append(s.files, f); return nil }

func (s *fakeContextStorage) GetFile(id string) (*models.ContextFile, error) {
	for _, f := range s.files {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, common.NotFoundError("context file not found: %s", id)
}

func (s *fakeContextStorage) ListFiles(projectID string) ([]*models.ContextFile, error) {
	var out []*models.ContextFile
	for _, f := range s.files {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeContextStorage) DeleteFile(id string) error { return nil }

func (s *fakeContextStorage) DeleteProjectFiles(projectID string) error {
	s.deletedProject = projectID
	return nil
}

type fakeResponseStorage struct {
	items          map[string]*models.QuestionResponse
	deletedProject string
}

func (s *fakeResponseStorage) UpsertResponse(r *models.QuestionResponse) (*models.QuestionResponse, error) {
	s.items[r.ProjectID+"/"+r.QuestionID] = r
	return r, nil
}

func (s *fakeResponseStorage) GetResponse(projectID, questionID string) (*models.QuestionResponse, error) {
	r, ok := s.items[projectID+"/"+questionID]
	if !ok {
		return nil, common.NotFoundError("response not found: %s", questionID)
	}
	return r, nil
}

func (s *fakeResponseStorage) ListResponses(projectID string) ([]*models.QuestionResponse, error) {
	var out []*models.QuestionResponse
	for _, r := range s.items {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeResponseStorage) DeleteProjectResponses(projectID string) error {
	s.deletedProject = projectID
	return nil
}

type fakeFeatureStorage struct {
	features       []*models.Feature
	deletedProject string
}

func (s *fakeFeatureStorage) SaveFeature(f *models.Feature) error { s.features = append(s.features, f); return nil }

func (s *fakeFeatureStorage) GetFeature(id string) (*models.Feature, error) {
	for _, f := range s.features {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, common.NotFoundError("feature not found: %s", id)
}

func (s *fakeFeatureStorage) ListFeatures(projectID string) ([]*models.Feature, error) {
	var out []*models.Feature
	for _, f := range s.features {
		if f.ProjectID == projectID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeFeatureStorage) DeleteFeature(id string) error { return nil }

func (s *fakeFeatureStorage) DeleteProjectFeatures(projectID string) error {
	s.deletedProject = projectID
	return nil
}

type fakePRDStorage struct {
	prd            *models.PRD
	deletedProject string
}

func (s *fakePRDStorage) SavePRD(p *models.PRD) error { s.prd = p; return nil }

func (s *fakePRDStorage) GetPRD(projectID string) (*models.PRD, error) {
	if s.prd == nil || s.prd.ProjectID != projectID {
		return nil, common.NotFoundError("PRD not found for project: %s", projectID)
	}
	return s.prd, nil
}

func (s *fakePRDStorage) DeletePRD(projectID string) error { return nil }

func (s *fakePRDStorage) SaveSnapshot(snap *models.PRDSnapshot) error { return nil }

func (s *fakePRDStorage) GetSnapshot(id string) (*models.PRDSnapshot, error) {
	return nil, common.NotFoundError("snapshot not found: %s", id)
}

func (s *fakePRDStorage) ListSnapshots(projectID string) ([]*models.PRDSnapshot, error) {
	return nil, nil
}

func (s *fakePRDStorage) DeleteSnapshot(id string) error { return nil }

func (s *fakePRDStorage) DeleteProjectSnapshots(projectID string) error {
	s.deletedProject = projectID
	return nil
}

func TestProjectHandler_CreateAndGet(t *testing.T) {
	storage := newFakeStorageManager()
	handler := NewProjectHandler(storage, common.GetLogger())

	body := strings.NewReader(`{"name": "Checkout Revamp", "description": "New payment flow"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Checkout Revamp", created.Name)

	req = httptest.NewRequest(http.MethodGet, "/api/projects/"+created.ID, nil)
	rec = httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Checkout Revamp")
}

func TestProjectHandler_CreateRejectsEmptyName(t *testing.T) {
	storage := newFakeStorageManager()
	handler := NewProjectHandler(storage, common.GetLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"name": "  "}`))
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, storage.projects.items)
}

func TestProjectHandler_GetUnknownIs404(t *testing.T) {
	handler := NewProjectHandler(newFakeStorageManager(), common.GetLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/projects/proj_missing", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectHandler_DeleteCascades(t *testing.T) {
	storage := newFakeStorageManager()
	storage.projects.items["proj_1"] = &models.Project{ID: "proj_1", Name: "Doomed"}
	handler := NewProjectHandler(storage, common.GetLogger())

	req := httptest.NewRequest(http.MethodDelete, "/api/projects/proj_1", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, storage.projects.items)
	assert.Equal(t, "proj_1", storage.contexts.deletedProject)
	assert.Equal(t, "proj_1", storage.responses.deletedProject)
	assert.Equal(t, "proj_1", storage.features.deletedProject)
	assert.Equal(t, "proj_1", storage.prds.deletedProject)
}

func TestProjectHandler_MethodNotAllowed(t *testing.T) {
	handler := NewProjectHandler(newFakeStorageManager(), common.GetLogger())

	req := httptest.NewRequest(http.MethodPatch, "/api/projects", nil)
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
