package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/klauspost/compress/zip"
	"github.com/kozaktomas/field-reports/internal/report"
)

// images renders one page image per report. A single report is delivered as
// a bare JPEG; several reports are zipped as "<slug>-<reportID>.jpg".
func (x *Exporter) images(ctx context.Context, project *report.Project, reports []report.Report) (*Artifact, error) {
	slug := project.Slug
	if len(reports) == 1 {
		return x.singleImage(ctx, project, &reports[0])
	}

	path := x.outputPath(slug+"-jpg", ".zip")
	f, err := createOutput(path)
	if err != nil {
		return nil, fail("create archive", err)
	}
	zw := zip.NewWriter(f)
	done := false
	defer func() {
		if !done {
			zw.Close()
			discard(f)
		}
	}()

	var buf bytes.Buffer
	for i := range reports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l := x.locate(ctx, &reports[i])
		buf.Reset()
		if err := x.pages.RenderJPEG(ctx, x.pageInput(project, l), &buf); err != nil {
			return nil, fail("render page", fmt.Errorf("report %d: %w", l.ID, err))
		}
		name := fmt.Sprintf("%s-%d.jpg", slug, l.ID)
		if err := addEntry(zw, name, &buf); err != nil {
			return nil, fail("add archive entry", err)
		}
		x.reportDone(l.Report)
	}

	if err := zw.Close(); err != nil {
		return nil, fail("finalize archive", err)
	}
	if err := f.Close(); err != nil {
		return nil, fail("finalize archive", err)
	}
	done = true
	return &Artifact{Path: path, ContentType: ContentTypeZip, Filename: slug + "-jpg-export.zip"}, nil
}

func (x *Exporter) singleImage(ctx context.Context, project *report.Project, r *report.Report) (*Artifact, error) {
	base := fmt.Sprintf("%s-%d", project.Slug, r.ID)
	l := x.locate(ctx, r)

	path := x.outputPath(base, ".jpg")
	f, err := createOutput(path)
	if err != nil {
		return nil, fail("create image", err)
	}
	if err := x.pages.RenderJPEG(ctx, x.pageInput(project, l), f); err != nil {
		discard(f)
		return nil, fail("render page", fmt.Errorf("report %d: %w", r.ID, err))
	}
	if err := f.Close(); err != nil {
		discard(f)
		return nil, fail("write image", err)
	}
	x.reportDone(r)
	return &Artifact{Path: path, ContentType: ContentTypeJPEG, Filename: base + ".jpg"}, nil
}
