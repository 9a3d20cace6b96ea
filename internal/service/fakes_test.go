package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oweru/content-api/internal/models"
	"github.com/oweru/content-api/internal/transfer"
)

type fakePostRepo struct {
	posts  map[int64]*models.Post
	nextID int64
	top    []*models.Post
	scored []*models.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	r.nextID++
	stored := *post
	stored.ID = r.nextID
	if stored.Status == "" {
		stored.Status = models.PostStatusPending
	}
	r.posts[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) List(ctx context.Context, filter transfer.PostListFilter) ([]*models.Post, int64, error) {
	var posts []*models.Post
	for _, post := range r.posts {
		if filter.Status != "" && filter.Status != "all" && post.Status != filter.Status {
			continue
		}
		if filter.Category != "" && post.Category != filter.Category {
			continue
		}
		copied := *post
		posts = append(posts, &copied)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID > posts[j].ID })
	return posts, int64(len(posts)), nil
}

func (r *fakePostRepo) Update(ctx context.Context, post *models.Post) error {
	if _, ok := r.posts[post.ID]; !ok {
		return fmt.Errorf("post %d not found", post.ID)
	}
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) UpdateModeration(ctx context.Context, postID int64, status string, moderatedBy sql.NullInt64, note sql.NullString) error {
	post, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post %d not found", postID)
	}
	post.Status = status
	post.ModeratedBy = moderatedBy
	post.ModerationNote = note
	return nil
}

func (r *fakePostRepo) TopByCategory(ctx context.Context, category string, minScore, limit int) ([]*models.Post, error) {
	return r.top, nil
}

func (r *fakePostRepo) ListScoredApproved(ctx context.Context) ([]*models.Post, error) {
	return r.scored, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error {
	delete(r.posts, id)
	return nil
}

type fakeUserRepo struct {
	users map[int64]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[int64]*models.User)}
	for _, user := range users {
		r.users[user.ID] = user
	}
	return r
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, bool, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, false, nil
	}
	return user, true, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *sql.Tx, user *models.User) (int64, error) {
	id := int64(len(r.users) + 1)
	stored := *user
	stored.ID = id
	r.users[id] = &stored
	return id, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error { return nil }
func (r *fakeUserRepo) Remove(ctx context.Context, id int64) error          { return nil }

type fakeMediaRepo struct {
	medias map[int64]*models.Media
	nextID int64
}

func newFakeMediaRepo() *fakeMediaRepo {
	return &fakeMediaRepo{medias: make(map[int64]*models.Media)}
}

func (r *fakeMediaRepo) Create(ctx context.Context, tx *sql.Tx, media *models.Media) (int64, error) {
	r.nextID++
	stored := *media
	stored.ID = r.nextID
	r.medias[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeMediaRepo) GetByID(ctx context.Context, id int64) (*models.Media, error) {
	media, ok := r.medias[id]
	if !ok {
		return nil, nil
	}
	copied := *media
	return &copied, nil
}

func (r *fakeMediaRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.Media, error) {
	var medias []*models.Media
	for _, media := range r.medias {
		if media.PostID.Valid && media.PostID.Int64 == postID {
			copied := *media
			medias = append(medias, &copied)
		}
	}
	sort.Slice(medias, func(i, j int) bool { return medias[i].DisplayOrder < medias[j].DisplayOrder })
	return medias, nil
}

func (r *fakeMediaRepo) Remove(ctx context.Context, id int64) error {
	delete(r.medias, id)
	return nil
}

func (r *fakeMediaRepo) RemoveByPostID(ctx context.Context, tx *sql.Tx, postID int64) error {
	for id, media := range r.medias {
		if media.PostID.Valid && media.PostID.Int64 == postID {
			delete(r.medias, id)
		}
	}
	return nil
}

// fakeStorage keeps objects in memory and records deletions.
type fakeStorage struct {
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

const fakeStorageOrigin = "https://media.test"

func (s *fakeStorage) Upload(ctx context.Context, key string, file []byte, contentType string) error {
	s.objects[key] = file
	s.types[key] = contentType
	return nil
}

func (s *fakeStorage) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, "", fmt.Errorf("no such object %q", key)
	}
	return io.NopCloser(bytes.NewReader(data)), s.types[key], nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return fakeStorageOrigin + "/" + key
}

func (s *fakeStorage) KeyFromURL(url string) (string, error) {
	if !strings.HasPrefix(url, fakeStorageOrigin+"/") {
		return "", fmt.Errorf("url %q is outside the media storage origin", url)
	}
	key := strings.TrimPrefix(url, fakeStorageOrigin+"/")
	if key == "" || strings.Contains(key, "/") {
		return "", fmt.Errorf("url %q does not name a stored object", url)
	}
	return key, nil
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

var (
	pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}
	mp4Bytes = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm', 0x00, 0x00, 0x00, 0x00}
)

// multipartFiles builds real multipart file headers from in-memory content.
func multipartFiles(t *testing.T, contents ...[]byte) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for i, content := range contents {
		part, err := writer.CreateFormFile("media", fmt.Sprintf("file-%d", i))
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["media"]
}
