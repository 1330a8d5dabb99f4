package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/zip"
	"github.com/kozaktomas/field-reports/internal/cache"
	"github.com/kozaktomas/field-reports/internal/constants"
	"github.com/kozaktomas/field-reports/internal/imaging"
	"github.com/kozaktomas/field-reports/internal/report"
)

// archive writes every photo of every report into a ZIP as
// "<slug>-<reportID>-<n>.jpg". Photos are prepared in a scratch directory:
// stamped with a location badge when the report has coordinates and tagged
// with the report metadata as EXIF ImageDescription.
func (x *Exporter) archive(ctx context.Context, project *report.Project, reports []report.Report) (*Artifact, error) {
	slug := project.Slug
	path := x.outputPath(slug, ".zip")
	f, err := createOutput(path)
	if err != nil {
		return nil, fail("create archive", err)
	}
	scratch, err := os.MkdirTemp(x.exportDir, cache.ScratchPrefix+"*")
	if err != nil {
		discard(f)
		return nil, fail("create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	zw := zip.NewWriter(f)
	done := false
	defer func() {
		if !done {
			zw.Close()
			discard(f)
		}
	}()

	for i := range reports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l := x.locate(ctx, &reports[i])
		desc, err := description(metadata(l))
		if err != nil {
			return nil, fail("encode metadata", err)
		}
		for j, p := range l.Photos {
			prepared, err := x.preparePhoto(ctx, scratch, l, j, p, desc)
			if err != nil {
				return nil, err
			}
			name := fmt.Sprintf("%s-%d-%d.jpg", slug, l.ID, j+1)
			if err := addFile(zw, name, prepared); err != nil {
				return nil, fail("add archive entry", err)
			}
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
	return &Artifact{Path: path, ContentType: ContentTypeZip, Filename: slug + "-export.zip"}, nil
}

// preparePhoto copies photo j of l into scratch and decorates the copy. A
// photo that is missing or cannot be decoded for stamping aborts the export;
// a failed badge or metadata embed only leaves the copy undecorated.
func (x *Exporter) preparePhoto(ctx context.Context, scratch string, l located, j int, p report.Photo, desc string) (string, error) {
	dst := filepath.Join(scratch, fmt.Sprintf("%d-%d.jpg", l.ID, j+1))
	if err := copyFile(x.photoPath(p), dst); err != nil {
		return "", fail("copy photo", fmt.Errorf("%s: %w", p.Path, err))
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		return "", fail("read photo", err)
	}

	var img image.Image
	if l.hasPoint && x.stamper != nil {
		stamped, ok, err := x.stamper.StampFile(ctx, data, l.point, x.badge)
		if err != nil {
			return "", fail("decode photo", fmt.Errorf("%s: %w", p.Path, err))
		}
		if ok {
			img = stamped
		}
	}
	if img == nil && !mimetype.Detect(data).Is("image/jpeg") {
		// Entries are always JPEG, whatever the upload format was.
		img, _, err = imaging.DecodeOriented(data)
		if err != nil {
			return "", fail("decode photo", fmt.Errorf("%s: %w", p.Path, err))
		}
	}
	if img != nil {
		var buf bytes.Buffer
		if err := imaging.EncodeJPEG(&buf, img, constants.ArchiveJPEGQuality); err != nil {
			return "", fail("encode photo", err)
		}
		data = buf.Bytes()
	}

	if tagged, err := EmbedDescription(data, desc); err != nil {
		x.logger.Warn("could not embed metadata", "photo", p.Path, "err", err)
	} else {
		data = tagged
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fail("write photo", err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// addFile streams the file at path into the archive as name.
func addFile(zw *zip.Writer, name, path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	return addEntry(zw, name, in)
}

func addEntry(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}
