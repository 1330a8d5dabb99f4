// Package export turns a project's reports into downloadable artifacts: a
// ZIP of annotated photos, a PDF document, or flattened page images.
package export

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/kozaktomas/field-reports/internal/exifgps"
	"github.com/kozaktomas/field-reports/internal/geocode"
	"github.com/kozaktomas/field-reports/internal/layout"
	"github.com/kozaktomas/field-reports/internal/logging"
	"github.com/kozaktomas/field-reports/internal/mapimage"
	"github.com/kozaktomas/field-reports/internal/metrics"
	"github.com/kozaktomas/field-reports/internal/report"
)

// Geocoder resolves a coordinate to a road name and address.
type Geocoder interface {
	Resolve(ctx context.Context, p report.GeoPoint) (geocode.Place, bool)
}

// Stamper composes a location badge onto encoded photo bytes.
type Stamper interface {
	StampFile(ctx context.Context, data []byte, center report.GeoPoint, opts mapimage.CornerOptions) (image.Image, bool, error)
}

// PageRenderer draws one report as a JPEG page.
type PageRenderer interface {
	RenderJPEG(ctx context.Context, in layout.Input, w io.Writer) error
}

// Options wires an Exporter.
type Options struct {
	UploadsDir string // root that Photo.Path is relative to
	ExportDir  string // where artifacts and scratch directories are created
	Geocoder   Geocoder
	Stamper    Stamper
	Pages      PageRenderer
	Badge      mapimage.CornerOptions
	Logger     *log.Logger
	// OnReport, when set, is called after each report has been rendered.
	OnReport func(r *report.Report)
}

// Exporter produces export artifacts. Each Export call is independent; an
// Exporter may serve concurrent calls.
type Exporter struct {
	uploadsDir string
	exportDir  string
	geocoder   Geocoder
	stamper    Stamper
	pages      PageRenderer
	badge      mapimage.CornerOptions
	logger     *log.Logger
	onReport   func(r *report.Report)
}

// New creates an Exporter. Geocoder and Stamper are optional; without them
// reports export without addresses and badges.
func New(opts Options) (*Exporter, error) {
	if opts.ExportDir == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if opts.Pages == nil {
		return nil, fmt.Errorf("page renderer is required")
	}
	badge := opts.Badge
	if badge.Width == 0 {
		badge = mapimage.DefaultCornerOptions()
	}
	return &Exporter{
		uploadsDir: opts.UploadsDir,
		exportDir:  opts.ExportDir,
		geocoder:   opts.Geocoder,
		stamper:    opts.Stamper,
		pages:      opts.Pages,
		badge:      badge,
		logger:     logging.OrDiscard(opts.Logger),
		onReport:   opts.OnReport,
	}, nil
}

// Export builds one artifact of format for reports, which are exported in
// the given order. The returned artifact lives in the export directory until
// the caller removes it. Tile and geocoding failures only drop the affected
// decoration; anything else aborts the export and removes partial output.
func (x *Exporter) Export(ctx context.Context, project *report.Project, reports []report.Report, format report.Format) (*Artifact, error) {
	if len(reports) == 0 {
		return nil, report.ErrNoReports
	}
	if err := os.MkdirAll(x.exportDir, 0o755); err != nil {
		return nil, fail("prepare export directory", err)
	}

	start := time.Now()
	var (
		art *Artifact
		err error
	)
	switch format {
	case report.FormatArchive:
		art, err = x.archive(ctx, project, reports)
	case report.FormatDocument:
		art, err = x.document(ctx, project, reports)
	case report.FormatImage:
		art, err = x.images(ctx, project, reports)
	default:
		return nil, fmt.Errorf("%w: %q", report.ErrInvalidFormat, format)
	}

	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	metrics.ExportsTotal.WithLabelValues(string(format), outcome).Inc()
	metrics.ExportDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())

	if err != nil {
		x.logger.Error("export failed", "project", project.Slug, "format", format, "err", err)
		return nil, err
	}
	x.logger.Info("export ready", "project", project.Slug, "format", format,
		"reports", len(reports), "file", filepath.Base(art.Path), "duration", time.Since(start).Round(time.Millisecond))
	return art, nil
}

// located is a report with its resolved coordinate and place.
type located struct {
	*report.Report
	point    report.GeoPoint
	hasPoint bool
	place    geocode.Place
}

// locate resolves the report coordinate, falling back to the GPS data of the
// first photo that has any, and reverse geocodes it.
func (x *Exporter) locate(ctx context.Context, r *report.Report) located {
	l := located{Report: r}
	l.point, l.hasPoint = r.Location()
	if !l.hasPoint {
		l.point, l.hasPoint = exifgps.FirstPoint(r.Photos)
	}
	if l.hasPoint && x.geocoder != nil {
		if place, ok := x.geocoder.Resolve(ctx, l.point); ok {
			l.place = place
		}
	}
	return l
}

// location is the human readable location line of the document format.
func (l located) location() string {
	coords := ""
	if l.hasPoint {
		coords = fmt.Sprintf("%s, %s", formatRounded(l.point.Lat), formatRounded(l.point.Lng))
	}
	switch {
	case l.place.Address != "" && coords != "":
		return l.place.Address + " (" + coords + ")"
	case l.place.Address != "":
		return l.place.Address
	case coords != "":
		return coords
	}
	return "Not recorded"
}

func formatRounded(v float64) string {
	s := fmt.Sprintf("%.5f", report.Round5(v))
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// pageInput is the layout input of one report.
func (x *Exporter) pageInput(project *report.Project, l located) layout.Input {
	r := *l.Report
	if l.hasPoint {
		r.SetLocation(l.point)
	}
	return layout.ReportInput(project, &r, l.place.Road, l.place.Address, x.uploadsDir)
}

func (x *Exporter) reportDone(r *report.Report) {
	if x.onReport != nil {
		x.onReport(r)
	}
}

func (x *Exporter) photoPath(p report.Photo) string {
	return filepath.Join(x.uploadsDir, filepath.FromSlash(p.Path))
}

// outputPath returns a fresh artifact path "<prefix>-<random><ext>".
func (x *Exporter) outputPath(prefix, ext string) string {
	return filepath.Join(x.exportDir, prefix+"-"+randomSuffix()+ext)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:13]
}

// createOutput creates the artifact file. On failure of the surrounding
// export the caller removes it with discard.
func createOutput(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func discard(f *os.File) {
	f.Close()
	os.Remove(f.Name())
}
