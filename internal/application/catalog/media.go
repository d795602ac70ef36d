package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/buneko/backend/internal/application/background"
	"github.com/buneko/backend/internal/domain/shared"
)

// imageCleaner removes replaced or orphaned images after the database write
// committed. Failures are logged by the runner and never reach the caller.
type imageCleaner struct {
	media shared.MediaStore
	tasks *background.Runner
}

func (c imageCleaner) deleteLater(ctx context.Context, url string) {
	if url == "" || c.media == nil {
		return
	}
	c.tasks.Go(ctx, "delete-image", func(ctx context.Context) error {
		return c.media.Delete(ctx, url)
	})
}

func (c imageCleaner) upload(ctx context.Context, folder string, file *shared.MediaUpload) (string, error) {
	if file == nil {
		return "", nil
	}
	if c.media == nil {
		return "", shared.ErrUnavailable
	}
	return c.media.Upload(ctx, folder, *file)
}

func newImageCleaner(media shared.MediaStore, tasks *background.Runner, logger *zap.Logger) imageCleaner {
	if tasks == nil {
		tasks = background.NewRunner(logger)
	}
	return imageCleaner{media: media, tasks: tasks}
}
