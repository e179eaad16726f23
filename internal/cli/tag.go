package cli

import "context"

func (a *App) Tag(ctx context.Context, id, title, color string) error {
	file, err := a.catalog.UpdateFileTag(ctx, id, title, color)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Tagged", file.FileName, "as", file.TagTitle)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.catalog.DeleteFile(ctx, id); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Deleted", id)
	return nil
}
