package cli

import (
	"context"
	"mime"
	"os"
	"path/filepath"
)

func (a *App) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	defer f.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(path))

	file, err := a.catalog.Upload(ctx, nil, f, filepath.Base(path), mimeType)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Uploaded", file.FileName, "as", file.ID, "tagged", file.TagTitle)
	return nil
}
