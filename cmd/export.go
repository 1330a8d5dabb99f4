package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kozaktomas/field-reports/internal/database"
	"github.com/kozaktomas/field-reports/internal/export"
	"github.com/kozaktomas/field-reports/internal/report"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <project-slug>",
	Short: "Export a project's reports to a file",
	Long: `Export the reports of a project as a ZIP archive of annotated photos,
a PDF document or JPEG page images.

Reports come from the configured database, or from a JSON bundle passed
with --input. The finished file is written to --out.

Examples:
  field-reports export roads --format pdf
  field-reports export roads --format zip --from 2024-05-01 --to 2024-05-31
  field-reports export roads --format jpg --ids 12,14 --out ./exports
  field-reports export roads --input reports.json --format pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("format", "archive", "Export format: archive (zip), document (pdf) or image (jpg)")
	exportCmd.Flags().String("from", "", "Only reports created on or after this date (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "Only reports created on or before this date (YYYY-MM-DD)")
	exportCmd.Flags().String("ids", "", "Comma separated report IDs or a JSON array")
	exportCmd.Flags().String("input", "", "Read the project and reports from a JSON bundle instead of the database")
	exportCmd.Flags().String("out", ".", "Directory to write the export into")
	exportCmd.Flags().Bool("no-progress", false, "Disable the progress bar")
}

func runExport(cmd *cobra.Command, args []string) error {
	slug := args[0]
	if err := report.ValidateSlug(slug); err != nil {
		return err
	}

	req, err := report.ParseRequest(
		mustGetString(cmd, "format"),
		mustGetString(cmd, "from"),
		mustGetString(cmd, "to"),
		mustGetString(cmd, "ids"),
	)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := a.context()

	project, reports, err := loadForExport(ctx, a, slug, mustGetString(cmd, "input"), req)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	var onReport func()
	if !mustGetBool(cmd, "no-progress") {
		bar = newReportBar(len(reports), "Rendering")
		onReport = func() { _ = bar.Add(1) }
	}

	exporter, err := a.exporter(onReport)
	if err != nil {
		return err
	}

	fmt.Printf("Exporting %d reports of %s as %s\n", len(reports), project.DisplayName(), req.Format)
	art, err := exporter.Export(ctx, project, reports, req.Format)
	if bar != nil {
		_ = bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	defer art.Remove()

	dest := filepath.Join(mustGetString(cmd, "out"), art.Filename)
	if err := deliver(art, dest); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", dest)
	return nil
}

// loadForExport reads the project and the filtered reports either from a
// JSON bundle or from the configured database.
func loadForExport(ctx context.Context, a *app, slug, input string, req report.Request) (*report.Project, []report.Report, error) {
	if input != "" {
		bundle, err := report.LoadFile(input)
		if err != nil {
			return nil, nil, err
		}
		if bundle.Project.Slug != slug {
			return nil, nil, fmt.Errorf("%w: %s holds project %q", database.ErrProjectNotFound, input, bundle.Project.Slug)
		}
		reports, err := req.Filter(bundle.Reports)
		if err != nil {
			return nil, nil, err
		}
		return &bundle.Project, reports, nil
	}

	reader, closer, err := a.openReports(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer closer.Close()
	return database.LoadExport(ctx, reader, slug, req)
}

// deliver moves the artifact to dest, copying when a rename crosses
// filesystems.
func deliver(art *export.Artifact, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.Rename(art.Path, dest); err == nil {
		return nil
	}

	src, err := os.Open(art.Path)
	if err != nil {
		return fmt.Errorf("opening export: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Join(fmt.Errorf("writing %s: %w", dest, err), os.Remove(dest))
	}
	return dst.Close()
}

func newReportBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("reports"),
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
}
