package task

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/thenoetrevino/tasknote/internal/cli"
	"github.com/thenoetrevino/tasknote/internal/models"
)

// addFieldFlags registers the editable task fields shared by create and update
func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Task title")
	cmd.Flags().String("caption", "", "One-line caption")
	cmd.Flags().String("memo", "", "Markdown memo (use - for stdin)")
	cmd.Flags().String("link", "", "Related URL")
	cmd.Flags().String("start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().String("end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().String("image-url", "", "Image URL shown when no image is attached")
	cmd.Flags().StringSlice("image", nil, "Attach an image file (repeatable)")
}

// applyFieldFlags copies every flag the user set onto task
func applyFieldFlags(cmd *cobra.Command, task *models.Task, stdin io.Reader) error {
	text := map[string]*string{
		"title":     &task.Title,
		"caption":   &task.Caption,
		"link":      &task.Link,
		"start":     &task.StartDate,
		"end":       &task.EndDate,
		"image-url": &task.ImageURL,
	}
	for name, dst := range text {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}

	if cmd.Flags().Changed("memo") {
		raw, _ := cmd.Flags().GetString("memo")
		memo, err := cli.ReadTextArg(raw, stdin)
		if err != nil {
			return err
		}
		task.Memo = memo
	}

	if cmd.Flags().Changed("image") {
		paths, _ := cmd.Flags().GetStringSlice("image")
		images, err := loadImages(paths)
		if err != nil {
			return err
		}
		task.Images = append(task.Images, images...)
	}

	return nil
}

// loadImages reads image files, rejecting anything that isn't an image
func loadImages(paths []string) ([]models.Image, error) {
	images := make([]models.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		mime := mimetype.Detect(data)
		if !strings.HasPrefix(mime.String(), "image/") {
			return nil, fmt.Errorf("%s is %s, not an image", path, mime.String())
		}
		images = append(images, models.Image{MIMEType: mime.String(), Data: data})
	}
	return images, nil
}
