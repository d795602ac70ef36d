package shared

import "context"

// MediaUpload is an image submitted with a catalog or profile write
type MediaUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MediaStore keeps uploaded images and serves them by public URL
type MediaStore interface {
	// Upload stores the file under folder and returns its public URL
	Upload(ctx context.Context, folder string, file MediaUpload) (string, error)
	// Delete removes the object behind a URL previously returned by Upload
	Delete(ctx context.Context, url string) error
}
