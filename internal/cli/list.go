package cli

import (
	"context"
	"fmt"
	"strings"

	"filedeck/internal/models"
)

func formatFile(f *models.File) string {
	return fmt.Sprintf("%-20s  %-30s  %10s  [%s/%s]", f.ID, f.FileName, formatSize(f.FileSize), f.TagTitle, f.TagColor)
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

func (a *App) List(ctx context.Context) error {
	files, err := a.catalog.ListFiles(ctx, nil)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if len(files) == 0 {
		printlnFn("No files yet - use 'upload <path>'")
		return nil
	}
	for _, f := range files {
		printlnFn(formatFile(f))
	}
	return nil
}

// Search lists only the files whose name, description, or tag contains
// term, case-insensitively. Filtering happens on the already-listed
// records, not in the storage layer.
func (a *App) Search(ctx context.Context, term string) error {
	files, err := a.catalog.ListFiles(ctx, nil)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	term = strings.ToLower(term)
	matched := 0
	for _, f := range files {
		if strings.Contains(strings.ToLower(f.FileName), term) ||
			strings.Contains(strings.ToLower(f.Description), term) ||
			strings.Contains(strings.ToLower(f.TagTitle), term) {
			printlnFn(formatFile(f))
			matched++
		}
	}
	if matched == 0 {
		printlnFn("No files match", term)
	}
	return nil
}
