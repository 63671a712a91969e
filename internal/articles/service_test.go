package articles

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/shared"
)

type mockRepository struct {
	articles map[int64]*Article
	nextID   int64
	finds    int
}

func newMockRepository() *mockRepository {
	return &mockRepository{articles: make(map[int64]*Article), nextID: 1}
}

func (m *mockRepository) List(ctx context.Context, filter ListFilter, limit, offset int) ([]Article, int, error) {
	var result []Article
	for _, article := range m.articles {
		if filter.Language != "" && article.Language != filter.Language {
			continue
		}
		if filter.CategoryID > 0 && article.CategoryID != filter.CategoryID {
			continue
		}
		if filter.OnlyLive && !article.Published {
			continue
		}
		result = append(result, *article)
	}
	return result, len(result), nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*Article, error) {
	m.finds++
	article, ok := m.articles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *article
	return &copied, nil
}

func (m *mockRepository) GetOwnerID(ctx context.Context, id int64) (int64, error) {
	article, ok := m.articles[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return article.AuthorID, nil
}

func (m *mockRepository) Create(ctx context.Context, params CreateParams) (*Article, error) {
	article := &Article{
		ID:          m.nextID,
		Title:       params.Title,
		Body:        params.Body,
		Language:    params.Language,
		CategoryID:  params.CategoryID,
		NewspaperID: params.NewspaperID,
		AuthorID:    params.AuthorID,
		Published:   params.Published,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.nextID++
	m.articles[article.ID] = article
	return article, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, params UpdateParams) (*Article, error) {
	article, ok := m.articles[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	article.Title = params.Title
	article.Body = params.Body
	article.Language = params.Language
	article.CategoryID = params.CategoryID
	article.Published = params.Published
	return article, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.articles[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.articles, id)
	return nil
}

func (m *mockRepository) AddViews(ctx context.Context, id, delta int64) error {
	if article, ok := m.articles[id]; ok {
		article.Views += delta
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *mockRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	repo := newMockRepository()
	return NewService(repo, cache), repo
}

func reporterActor() shared.Actor {
	return shared.Actor{ID: 10, Role: string(authz.RoleReporter)}
}

func TestCreateSetsOwnerAndCanonicalLanguage(t *testing.T) {
	service, _ := newTestService(t)

	article, err := service.Create(context.Background(), reporterActor(), Input{
		Title:      "  Banjir di Jakarta  ",
		Body:       "Isi berita.",
		Language:   "ID",
		CategoryID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), article.AuthorID)
	assert.Equal(t, "id", article.Language)
	assert.Equal(t, "Banjir di Jakarta", article.Title)
}

func TestCreateRejectsMalformedLanguage(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Create(context.Background(), reporterActor(), Input{
		Title:      "Title here",
		Body:       "Body",
		Language:   "not a tag!",
		CategoryID: 1,
	})
	assert.Error(t, err)
}

func TestUpdateOwnerAllowed(t *testing.T) {
	service, _ := newTestService(t)
	article, err := service.Create(context.Background(), reporterActor(), Input{
		Title: "Original title", Body: "Body", Language: "id", CategoryID: 1,
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), reporterActor(), article.ID, Input{
		Title: "Edited title", Body: "Body", Language: "id", CategoryID: 1, Published: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Edited title", updated.Title)
	assert.True(t, updated.Published)
}

func TestUpdateStrangerForbidden(t *testing.T) {
	service, _ := newTestService(t)
	article, err := service.Create(context.Background(), reporterActor(), Input{
		Title: "Original title", Body: "Body", Language: "id", CategoryID: 1,
	})
	require.NoError(t, err)

	stranger := shared.Actor{ID: 99, Role: string(authz.RoleUser)}
	_, err = service.Update(context.Background(), stranger, article.ID, Input{
		Title: "Hijacked", Body: "Body", Language: "id", CategoryID: 1,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	otherReporter := shared.Actor{ID: 77, Role: string(authz.RoleReporter)}
	_, err = service.Update(context.Background(), otherReporter, article.ID, Input{
		Title: "Hijacked", Body: "Body", Language: "id", CategoryID: 1,
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUpdateEditorOverridesOwnership(t *testing.T) {
	service, _ := newTestService(t)
	article, err := service.Create(context.Background(), reporterActor(), Input{
		Title: "Original title", Body: "Body", Language: "id", CategoryID: 1,
	})
	require.NoError(t, err)

	editor := shared.Actor{ID: 55, Role: string(authz.RoleEditor)}
	updated, err := service.Update(context.Background(), editor, article.ID, Input{
		Title: "Editor pass", Body: "Body", Language: "id", CategoryID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Editor pass", updated.Title)
	// Ownership untouched by the privileged edit.
	assert.Equal(t, int64(10), updated.AuthorID)
}

func TestDeletePolicyMirrorsUpdate(t *testing.T) {
	service, repo := newTestService(t)
	article, err := service.Create(context.Background(), reporterActor(), Input{
		Title: "Doomed", Body: "Body", Language: "id", CategoryID: 1,
	})
	require.NoError(t, err)

	stranger := shared.Actor{ID: 99, Role: string(authz.RoleUser)}
	assert.ErrorIs(t, service.Delete(context.Background(), stranger, article.ID), shared.ErrForbidden)

	admin := shared.Actor{ID: 1, Role: string(authz.RoleAdmin)}
	require.NoError(t, service.Delete(context.Background(), admin, article.ID))
	assert.Empty(t, repo.articles)
}

func TestGetUsesCacheOnSecondRead(t *testing.T) {
	service, repo := newTestService(t)
	article, err := service.Create(context.Background(), reporterActor(), Input{
		Title: "Cached story", Body: "Body", Language: "id", CategoryID: 1, Published: true,
	})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), article.ID)
	require.NoError(t, err)
	_, err = service.Get(context.Background(), article.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.finds, "second read should come from cache")
}

func TestGetHidesUnpublishedDraft(t *testing.T) {
	service, repo := newTestService(t)
	draft, err := service.Create(context.Background(), reporterActor(), Input{
		Title: "Draft story", Body: "Body", Language: "id", CategoryID: 1,
	})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), draft.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// Publishing makes it readable; the draft was never cached.
	_, err = service.Update(context.Background(), reporterActor(), draft.ID, Input{
		Title: "Draft story", Body: "Body", Language: "id", CategoryID: 1, Published: true,
	})
	require.NoError(t, err)

	article, err := service.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	assert.True(t, article.Published)

	// Only the published read counted as a view.
	_, err = service.FlushViews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), repo.articles[draft.ID].Views)
}

func TestMutationInvalidatesCache(t *testing.T) {
	service, repo := newTestService(t)
	article, err := service.Create(context.Background(), reporterActor(), Input{
		Title: "Before edit", Body: "Body", Language: "id", CategoryID: 1, Published: true,
	})
	require.NoError(t, err)

	_, err = service.Get(context.Background(), article.ID)
	require.NoError(t, err)

	_, err = service.Update(context.Background(), reporterActor(), article.ID, Input{
		Title: "After edit", Body: "Body", Language: "id", CategoryID: 1, Published: true,
	})
	require.NoError(t, err)

	fresh, err := service.Get(context.Background(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, "After edit", fresh.Title)
	assert.Equal(t, 2, repo.finds)
}

func TestFlushViews(t *testing.T) {
	service, repo := newTestService(t)
	article, err := service.Create(context.Background(), reporterActor(), Input{
		Title: "Counted", Body: "Body", Language: "id", CategoryID: 1, Published: true,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = service.Get(context.Background(), article.ID)
		require.NoError(t, err)
	}

	flushed, err := service.FlushViews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, flushed)
	assert.Equal(t, int64(3), repo.articles[article.ID].Views)

	// Draining again finds nothing.
	flushed, err = service.FlushViews(context.Background())
	require.NoError(t, err)
	assert.Zero(t, flushed)
}
