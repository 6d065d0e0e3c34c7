package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"
)

const (
	AvatarFolder = "avatars"
	SpacesFolder = "spaces"
	EventsFolder = "events"

	DefaultBucket = "space-images"
	MaxImageBytes = 5 << 20
)

var ErrUnsupportedType = errors.New("unsupported content type")

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Object is one file to store. AccessToken is the uploader's session, used by
// backends that enforce per-user storage policies.
type Object struct {
	Folder      string
	Filename    string
	ContentType string
	Body        io.Reader
	AccessToken string
}

type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

// ObjectPath builds a collision-free key under folder, keeping a sensible
// extension for the content type.
func ObjectPath(folder, filename, contentType string) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedType, contentType)
	}
	if e := strings.ToLower(path.Ext(filename)); e == ".jpeg" || e == ext {
		ext = e
	}
	return path.Join(folder, uuid.NewString()+ext), nil
}

type SupabaseStorage struct {
	url    string
	key    string
	bucket string
}

func NewSupabaseStorage(supabaseURL, anonKey, bucket string) *SupabaseStorage {
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &SupabaseStorage{
		url:    strings.TrimRight(supabaseURL, "/") + "/storage/v1",
		key:    anonKey,
		bucket: bucket,
	}
}

func (s *SupabaseStorage) Upload(ctx context.Context, obj Object) (string, error) {
	key, err := ObjectPath(obj.Folder, obj.Filename, obj.ContentType)
	if err != nil {
		return "", err
	}

	token := obj.AccessToken
	if token == "" {
		token = s.key
	}
	client := storage_go.NewClient(s.url, token, map[string]string{"apikey": s.key})

	contentType := obj.ContentType
	upsert := false
	if _, err := client.UploadFile(s.bucket, key, obj.Body, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	}); err != nil {
		return "", fmt.Errorf("failed to upload to storage: %v", err)
	}

	return client.GetPublicUrl(s.bucket, key).SignedURL, nil
}

type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary) *CloudinaryUploader {
	return &CloudinaryUploader{cld: cld}
}

func (c *CloudinaryUploader) Upload(ctx context.Context, obj Object) (string, error) {
	if _, ok := allowedTypes[strings.ToLower(obj.ContentType)]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnsupportedType, obj.ContentType)
	}
	res, err := c.cld.Upload.Upload(ctx, obj.Body, uploader.UploadParams{
		Folder: path.Join("rentyclub", obj.Folder),
		Tags:   []string{"rentyclub"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %v", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected upload: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
