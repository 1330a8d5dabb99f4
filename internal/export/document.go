package export

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/kozaktomas/field-reports/internal/constants"
	"github.com/kozaktomas/field-reports/internal/imaging"
	"github.com/kozaktomas/field-reports/internal/report"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// A4 portrait geometry in millimetres.
const (
	docPageW      = 210.0
	docPageH      = 297.0
	docMargin     = 15.0
	docContentW   = 180.0
	docGap        = 10.0
	docBoxPadding = 3.5
	docLineH      = 5.0
	docFontSize   = 10.0
	docFontFamily = "Go"
)

// document renders one PDF page per photo, each with the photo on top and
// an info box below it. Reports without photos get a single text page.
func (x *Exporter) document(ctx context.Context, project *report.Project, reports []report.Report) (*Artifact, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreator("Field Reports", true)
	pdf.SetTitle(project.DisplayName(), true)
	pdf.SetAutoPageBreak(true, docMargin)
	pdf.AddUTF8FontFromBytes(docFontFamily, "", goregular.TTF)
	pdf.AddUTF8FontFromBytes(docFontFamily, "B", gobold.TTF)
	pdf.SetFont(docFontFamily, "", docFontSize)

	for i := range reports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l := x.locate(ctx, &reports[i])
		fields := docFields(l)

		for j, p := range l.Photos {
			pdf.AddPage()
			if err := x.placePhoto(pdf, l, j, p, boxHeight(pdf, fields)); err != nil {
				return nil, err
			}
			drawInfoBox(pdf, fields)
		}
		if len(l.Photos) == 0 {
			pdf.AddPage()
			pdf.SetFont(docFontFamily, "", docFontSize)
			pdf.Write(docLineH, textPage(l))
		}
		if pdf.Err() {
			return nil, fail("render document", pdf.Error())
		}
		x.reportDone(l.Report)
	}

	slug := project.Slug
	path := x.outputPath(slug, ".pdf")
	f, err := createOutput(path)
	if err != nil {
		return nil, fail("create document", err)
	}
	if err := pdf.Output(f); err != nil {
		discard(f)
		return nil, fail("write document", err)
	}
	if err := f.Close(); err != nil {
		discard(f)
		return nil, fail("write document", err)
	}
	return &Artifact{Path: path, ContentType: ContentTypePDF, Filename: slug + "-export.pdf"}, nil
}

type docField struct {
	label string
	value string
}

func docFields(l located) []docField {
	var fields []docField
	if l.place.Road != "" {
		fields = append(fields, docField{"Road", l.place.Road})
	}
	fields = append(fields,
		docField{"Selections", l.Selections.String()},
		docField{"Note", l.Note},
		docField{"Date", l.DateString()},
		docField{"Location", l.location()},
	)
	if l.Comment != "" {
		fields = append(fields, docField{"Comment", l.Comment})
	}
	return fields
}

func textPage(l located) string {
	s := "Report #" + strconv.FormatInt(l.ID, 10) + ": " + l.Selections.String() + "\n"
	if l.place.Road != "" {
		s += "Road: " + l.place.Road + "\n"
	}
	s += l.Note + "\n"
	s += "Date: " + l.DateString() + "\n"
	s += "Location: " + l.location()
	return s
}

// placePhoto draws photo j at the top of the page, full content width, or
// narrower when it would leave no room for an info box of boxH.
func (x *Exporter) placePhoto(pdf *fpdf.Fpdf, l located, j int, p report.Photo, boxH float64) error {
	img, err := imaging.LoadOriented(x.photoPath(p))
	if err != nil {
		return fail("read photo", fmt.Errorf("%s: %w", p.Path, err))
	}
	var buf bytes.Buffer
	if err := imaging.EncodeJPEG(&buf, img, constants.ArchiveJPEGQuality); err != nil {
		return fail("encode photo", err)
	}

	name := fmt.Sprintf("report-%d-photo-%d", l.ID, j)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	info := pdf.RegisterImageOptionsReader(name, opts, &buf)
	if pdf.Err() || info == nil {
		return fail("embed photo", pdf.Error())
	}

	w := docContentW
	h := w * info.Height() / info.Width()
	maxH := docPageH - 2*docMargin - docGap - boxH
	if h > maxH && maxH > 0 {
		h = maxH
		w = h * info.Width() / info.Height()
	}
	left := docMargin + (docContentW-w)/2
	pdf.ImageOptions(name, left, docMargin, w, h, false, opts, 0, "")
	pdf.SetY(docMargin + h + docGap)
	return nil
}

// boxHeight estimates the info box height, measuring with the bold face so
// the estimate never falls short.
func boxHeight(pdf *fpdf.Fpdf, fields []docField) float64 {
	pdf.SetFont(docFontFamily, "B", docFontSize)
	defer pdf.SetFont(docFontFamily, "", docFontSize)
	lines := 0
	inner := docContentW - 2*docBoxPadding
	for _, f := range fields {
		lines += max(1, len(pdf.SplitText(f.label+": "+f.value, inner)))
	}
	return float64(lines)*docLineH + 2*docBoxPadding
}

// drawInfoBox draws the bordered field list at the current y.
func drawInfoBox(pdf *fpdf.Fpdf, fields []docField) {
	y := pdf.GetY()
	h := boxHeight(pdf, fields)

	pdf.SetFillColor(249, 249, 249)
	pdf.SetDrawColor(204, 204, 204)
	pdf.Rect(docMargin, y, docContentW, h, "FD")

	left, _, right, _ := pdf.GetMargins()
	pdf.SetLeftMargin(docMargin + docBoxPadding)
	pdf.SetRightMargin(docPageW - docMargin - docContentW + docBoxPadding)
	pdf.SetXY(docMargin+docBoxPadding, y+docBoxPadding)
	for _, f := range fields {
		pdf.SetFont(docFontFamily, "B", docFontSize)
		pdf.Write(docLineH, f.label+": ")
		pdf.SetFont(docFontFamily, "", docFontSize)
		pdf.Write(docLineH, f.value)
		pdf.Ln(docLineH)
	}
	pdf.SetLeftMargin(left)
	pdf.SetRightMargin(right)
}
