package features

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/clarity/internal/common"
	"github.com/ternarybob/clarity/internal/interfaces"
	"github.com/ternarybob/clarity/internal/models"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeLLM) GetMode() interfaces.LLMMode           { return interfaces.LLMModeCloud }
func (f *fakeLLM) Close() error                          { return nil }

type fakeFeatureStore struct {
	features map[string]*models.Feature
}

func newFakeFeatureStore() *fakeFeatureStore {
	return &fakeFeatureStore{features: make(map[string]*models.Feature)}
}

func (f *fakeFeatureStore) SaveFeature(feature *models.Feature) error {
	f.features[feature.ID] = feature
	return nil
}

func (f *fakeFeatureStore) GetFeature(id string) (*models.Feature, error) {
	feature, ok := f.features[id]
	if !ok {
		return nil, common.NotFoundError("feature not found")
	}
	return feature, nil
}

func (f *fakeFeatureStore) ListFeatures(projectID string) ([]*models.Feature, error) {
	var out []*models.Feature
	for _, feature := range f.features {
		if feature.ProjectID == projectID {
			out = append(out, feature)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out, nil
}

func (f *fakeFeatureStore) DeleteFeature(id string) error {
	delete(f.features, id)
	return nil
}

func (f *fakeFeatureStore) DeleteProjectFeatures(projectID string) error {
	for id, feature := range f.features {
		if feature.ProjectID == projectID {
			delete(f.features, id)
		}
	}
	return nil
}

func TestExtract_SavesSelectedAIFeatures(t *testing.T) {
	llm := &fakeLLM{reply: `Found these:
[
  {"name": "Team dashboards", "description": "Shared progress views"},
  {"name": "CSV export", "description": ""},
  {"name": "", "description": "nameless is dropped"}
]`}
	store := newFakeFeatureStore()
	svc := NewService(llm, store, common.GetLogger())

	saved, err := svc.Extract(context.Background(), "proj_1", "The product ships dashboards and exports.")
	require.NoError(t, err)
	require.Len(t, saved, 2)

	assert.Equal(t, "Team dashboards", saved[0].Name)
	assert.Equal(t, 0, saved[0].DisplayOrder)
	assert.Equal(t, 1, saved[1].DisplayOrder)
	assert.True(t, saved[0].IsSelected)
	assert.True(t, saved[0].IsAIGenerated)
}

func TestExtract_AppendsAfterExisting(t *testing.T) {
	llm := &fakeLLM{reply: `[{"name": "New feature", "description": ""}]`}
	store := newFakeFeatureStore()
	store.features["feat_0"] = &models.Feature{ID: "feat_0", ProjectID: "proj_1", Name: "Existing", DisplayOrder: 0}
	svc := NewService(llm, store, common.GetLogger())

	saved, err := svc.Extract(context.Background(), "proj_1", "context")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 1, saved[0].DisplayOrder)
}

func TestExtract_Errors(t *testing.T) {
	t.Run("empty context", func(t *testing.T) {
		svc := NewService(&fakeLLM{}, newFakeFeatureStore(), common.GetLogger())
		_, err := svc.Extract(context.Background(), "proj_1", "  ")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("llm failure", func(t *testing.T) {
		svc := NewService(&fakeLLM{err: errors.New("boom")}, newFakeFeatureStore(), common.GetLogger())
		_, err := svc.Extract(context.Background(), "proj_1", "context")
		assert.ErrorIs(t, err, common.ErrUnavailable)
	})

	t.Run("malformed reply", func(t *testing.T) {
		svc := NewService(&fakeLLM{reply: "no array here"}, newFakeFeatureStore(), common.GetLogger())
		_, err := svc.Extract(context.Background(), "proj_1", "context")
		assert.ErrorIs(t, err, common.ErrNoOutput)
	})

	t.Run("only nameless entries", func(t *testing.T) {
		svc := NewService(&fakeLLM{reply: `[{"name": "", "description": "x"}]`}, newFakeFeatureStore(), common.GetLogger())
		_, err := svc.Extract(context.Background(), "proj_1", "context")
		assert.ErrorIs(t, err, common.ErrNoOutput)
	})
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(nil, newFakeFeatureStore(), common.GetLogger())

	_, err := svc.Create("proj_1", "   ", "description")
	assert.ErrorIs(t, err, common.ErrValidation)

	feature, err := svc.Create("proj_1", "  Reporting  ", " Weekly summaries ")
	require.NoError(t, err)
	assert.Equal(t, "Reporting", feature.Name)
	assert.Equal(t, "Weekly summaries", feature.Description)
	assert.True(t, feature.IsSelected)
}

func TestSetSelectedAndSelected(t *testing.T) {
	store := newFakeFeatureStore()
	svc := NewService(nil, store, common.GetLogger())

	a, err := svc.Create("proj_1", "Feature A", "")
	require.NoError(t, err)
	b, err := svc.Create("proj_1", "Feature B", "")
	require.NoError(t, err)

	_, err = svc.SetSelected(a.ID, false)
	require.NoError(t, err)

	selected, err := svc.Selected("proj_1")
	require.NoError(t, err)
	require.Len(t, selected, 1)
	assert.Equal(t, b.ID, selected[0].ID)

	_, err = svc.SetSelected("feat_missing", true)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	store := newFakeFeatureStore()
	svc := NewService(nil, store, common.GetLogger())

	feature, err := svc.Create("proj_1", "Old name", "old")
	require.NoError(t, err)

	updated, err := svc.Update(feature.ID, "New name", "new", 5)
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, 5, updated.DisplayOrder)

	_, err = svc.Update(feature.ID, "", "desc", 0)
	assert.ErrorIs(t, err, common.ErrValidation)
}
