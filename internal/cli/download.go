package cli

import (
	"context"
	"os"
	"strings"

	"filedeck/internal/blob"
	"filedeck/internal/classify"
	"filedeck/internal/filex"
	"filedeck/internal/netx"
)

// Download saves a file's content to dest, defaulting to its original
// name. Inline content is decoded from the record itself; object-storage
// URLs are fetched over HTTP. Either way the file is retagged as
// downloaded.
func (a *App) Download(ctx context.Context, id, dest string) error {
	file, err := a.catalog.GetFile(ctx, id)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	var data []byte
	if decoded, _, ok := blob.DecodeDataURL(file.FileURL); ok {
		data = decoded
	} else if strings.HasPrefix(file.FileURL, "http") {
		data, err = netx.FetchURL(ctx, file.FileURL)
		if err != nil {
			printlnFn(err.Error())
			return err
		}
	} else {
		printlnFn("Download URL:", file.FileURL)
		return nil
	}

	if dest == "" {
		dest = file.FileName
	}
	if err := filex.EnsureParentDir(dest); err != nil {
		printlnFn(err.Error())
		return err
	}
	if err := os.WriteFile(dest, data, 0o600); err != nil {
		printlnFn(err.Error())
		return err
	}
	printlnFn("Saved to", dest)

	if _, err := a.catalog.UpdateFileTag(ctx, id, "Downloaded", classify.ColorBlue); err != nil {
		printlnFn(err.Error())
		return err
	}
	return nil
}
