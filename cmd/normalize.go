package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/field-reports/internal/imaging"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file-or-dir>...",
	Short: "Fix orientation and size of uploaded photos",
	Long: `Rewrite uploaded photos upright and within the configured maximum
dimension (MAX_IMAGE_DIMENSION). Directories are walked recursively.
Photos that are already upright and small enough are left untouched.

With --thumbnails a <name>_thumb.jpg is written next to each photo.

Examples:
  field-reports normalize ./uploads
  field-reports normalize --dry-run photo1.jpg photo2.png`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().Int("max-dimension", 0, "Longer side bound in pixels (default MAX_IMAGE_DIMENSION)")
	normalizeCmd.Flags().Bool("thumbnails", false, "Also write thumbnails")
	normalizeCmd.Flags().Bool("dry-run", false, "List files without rewriting them")
}

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// collectPhotos expands the arguments into photo file paths, skipping
// generated thumbnails.
func collectPhotos(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			name := strings.ToLower(d.Name())
			if photoExtensions[filepath.Ext(name)] && !strings.Contains(name, "_thumb.") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return files, nil
}

func thumbnailPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb.jpg"
}

func runNormalize(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	maxDim := mustGetInt(cmd, "max-dimension")
	if maxDim <= 0 {
		maxDim = a.cfg.Images.MaxDimension
	}
	thumbs := mustGetBool(cmd, "thumbnails")
	dryRun := mustGetBool(cmd, "dry-run")

	files, err := collectPhotos(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No photos found")
		return nil
	}
	if dryRun {
		fmt.Printf("Would normalize %d photos:\n", len(files))
		for _, f := range files {
			fmt.Printf("  %s\n", f)
		}
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Normalizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	var rewritten, unchanged, skipped int
	var failures []string
	for _, path := range files {
		res, err := imaging.NormalizeFile(path, maxDim)
		switch {
		case errors.Is(err, imaging.ErrUnsupported):
			skipped++
		case err != nil:
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
		case res.Rewritten:
			rewritten++
		default:
			unchanged++
		}
		if err == nil && thumbs {
			if err := writeThumbnail(path, a.cfg.Images.ThumbnailWidth); err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			}
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Println()

	fmt.Printf("Rewritten: %d, unchanged: %d, skipped: %d, failed: %d\n",
		rewritten, unchanged, skipped, len(failures))
	for _, f := range failures {
		fmt.Printf("  %s\n", f)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d photos failed", len(failures))
	}
	return nil
}

func writeThumbnail(path string, width int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	thumb, err := imaging.Thumbnail(data, width)
	if err != nil {
		return err
	}
	return os.WriteFile(thumbnailPath(path), thumb, 0o644)
}
