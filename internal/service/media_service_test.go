package service

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oweru/content-api/internal/authz"
	"github.com/oweru/content-api/internal/models"
)

func newMediaFixture(t *testing.T) (MediaService, *fakePostRepo, *fakeMediaRepo, *fakeStorage) {
	t.Helper()
	pr := newFakePostRepo()
	mr := newFakeMediaRepo()
	storage := newFakeStorage()
	return NewMediaService(mr, pr, storage), pr, mr, storage
}

func TestMediaUpload_Unattached(t *testing.T) {
	svc, _, mr, storage := newMediaFixture(t)
	files := multipartFiles(t, pngBytes)

	media, err := svc.Upload(context.Background(), 0, files[0])
	require.NoError(t, err)

	assert.False(t, media.PostID.Valid)
	assert.Equal(t, models.MediaTypeImage, media.FileType)
	assert.Equal(t, int64(len(pngBytes)), media.FileSize)
	assert.Len(t, storage.objects, 1)
	assert.Len(t, mr.medias, 1)
}

func TestMediaUpload_AttachedGetsNextDisplayOrder(t *testing.T) {
	svc, pr, _, _ := newMediaFixture(t)
	postID, err := pr.Create(context.Background(), nil, &models.Post{UserID: 1, Title: "T"})
	require.NoError(t, err)

	first, err := svc.Upload(context.Background(), postID, multipartFiles(t, pngBytes)[0])
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), postID, multipartFiles(t, pngBytes)[0])
	require.NoError(t, err)

	assert.Equal(t, 0, first.DisplayOrder)
	assert.Equal(t, 1, second.DisplayOrder)
	require.True(t, second.PostID.Valid)
	assert.Equal(t, postID, second.PostID.Int64)
}

func TestMediaUpload_UnknownPost(t *testing.T) {
	svc, _, _, _ := newMediaFixture(t)

	_, err := svc.Upload(context.Background(), 404, multipartFiles(t, pngBytes)[0])
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "post_id")
}

func TestMediaRemove_OwnerDeletesSingleAsset(t *testing.T) {
	svc, pr, mr, storage := newMediaFixture(t)
	postID, err := pr.Create(context.Background(), nil, &models.Post{UserID: 1, Title: "T"})
	require.NoError(t, err)

	first, err := svc.Upload(context.Background(), postID, multipartFiles(t, pngBytes)[0])
	require.NoError(t, err)
	_, err = svc.Upload(context.Background(), postID, multipartFiles(t, pngBytes)[0])
	require.NoError(t, err)

	owner := authz.Actor{ID: 1, Role: models.RoleUser}
	require.NoError(t, svc.Remove(context.Background(), owner, first.ID))

	// Only the targeted asset is gone.
	assert.Len(t, mr.medias, 1)
	assert.Equal(t, []string{first.FileName}, storage.deleted)

	stored, err := pr.GetByID(context.Background(), postID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestMediaRemove_Authz(t *testing.T) {
	svc, pr, _, _ := newMediaFixture(t)
	postID, err := pr.Create(context.Background(), nil, &models.Post{UserID: 1, Title: "T"})
	require.NoError(t, err)

	media, err := svc.Upload(context.Background(), postID, multipartFiles(t, pngBytes)[0])
	require.NoError(t, err)

	stranger := authz.Actor{ID: 2, Role: models.RoleUser}
	assert.ErrorIs(t, svc.Remove(context.Background(), stranger, media.ID), ErrForbidden)

	admin := authz.Actor{ID: 3, Role: models.RoleAdmin}
	assert.NoError(t, svc.Remove(context.Background(), admin, media.ID))
}

func TestMediaRemove_UnattachedRequiresAdmin(t *testing.T) {
	svc, _, _, _ := newMediaFixture(t)

	media, err := svc.Upload(context.Background(), 0, multipartFiles(t, pngBytes)[0])
	require.NoError(t, err)

	user := authz.Actor{ID: 1, Role: models.RoleUser}
	assert.ErrorIs(t, svc.Remove(context.Background(), user, media.ID), ErrForbidden)

	admin := authz.Actor{ID: 2, Role: models.RoleAdmin}
	assert.NoError(t, svc.Remove(context.Background(), admin, media.ID))
}

func TestMediaDownload(t *testing.T) {
	svc, _, _, _ := newMediaFixture(t)

	media, err := svc.Upload(context.Background(), 0, multipartFiles(t, pngBytes)[0])
	require.NoError(t, err)

	body, contentType, err := svc.Download(context.Background(), media.FileURL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
	assert.Equal(t, "image/png", contentType)
}

func TestMediaDownload_RejectsForeignOrigin(t *testing.T) {
	svc, _, _, _ := newMediaFixture(t)

	_, _, err := svc.Download(context.Background(), "https://evil.example/secret")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "url")
}
