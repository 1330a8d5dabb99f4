package export

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"github.com/kozaktomas/field-reports/internal/constants"
	"github.com/kozaktomas/field-reports/internal/report"
)

// metadata is the JSON object embedded into archive photos: the report
// selections followed by road, address, note and date. A selection with one
// of those names is overwritten in place.
func metadata(l located) report.Selections {
	meta := append(report.Selections(nil), l.Selections...)
	set := func(key, value string) {
		for i := range meta {
			if meta[i].Label == key {
				meta[i].Value = value
				return
			}
		}
		meta = append(meta, report.Selection{Label: key, Value: value})
	}
	set("road", l.place.Road)
	set("address", l.place.Address)
	set("note", l.Note)
	set("date", l.DateString())
	return meta
}

// description encodes meta for the ImageDescription tag, truncating it to
// the tag limit with a trailing "...".
func description(meta report.Selections) (string, error) {
	data, err := meta.MarshalJSON()
	if err != nil {
		return "", err
	}
	s := string(data)
	if len(s) <= constants.MaxDescriptionBytes {
		return s, nil
	}
	cut := constants.MaxDescriptionBytes - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "...", nil
}

// EmbedDescription returns jpeg with its IFD0 ImageDescription set to desc.
// Existing EXIF data is kept; a JPEG without EXIF gets a fresh IFD0.
func EmbedDescription(jpeg []byte, desc string) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("embedding exif: %v", r)
		}
	}()

	parsed, err := jpegstructure.NewJpegMediaParser().ParseBytes(jpeg)
	if err != nil {
		return nil, fmt.Errorf("parsing jpeg: %w", err)
	}
	sl, ok := parsed.(*jpegstructure.SegmentList)
	if !ok {
		return nil, errors.New("parsing jpeg: unexpected segment container")
	}

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		im, err := exifcommon.NewIfdMappingWithStandard()
		if err != nil {
			return nil, fmt.Errorf("creating ifd mapping: %w", err)
		}
		rootIb = exif.NewIfdBuilder(im, exif.NewTagIndex(), exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)
	}

	ifd0, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD0")
	if err != nil {
		return nil, fmt.Errorf("opening IFD0: %w", err)
	}
	if err := ifd0.SetStandardWithName("ImageDescription", desc); err != nil {
		return nil, fmt.Errorf("setting ImageDescription: %w", err)
	}
	if err := sl.SetExif(rootIb); err != nil {
		return nil, fmt.Errorf("storing exif: %w", err)
	}

	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadDescription returns the IFD0 ImageDescription of jpeg.
func ReadDescription(jpeg []byte) (desc string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading exif: %v", r)
		}
	}()

	parsed, err := jpegstructure.NewJpegMediaParser().ParseBytes(jpeg)
	if err != nil {
		return "", fmt.Errorf("parsing jpeg: %w", err)
	}
	sl, ok := parsed.(*jpegstructure.SegmentList)
	if !ok {
		return "", errors.New("parsing jpeg: unexpected segment container")
	}
	_, _, et, err := sl.DumpExif()
	if err != nil {
		return "", fmt.Errorf("reading exif: %w", err)
	}
	for _, tag := range et {
		if tag.TagName == "ImageDescription" {
			if s, ok := tag.Value.(string); ok {
				return s, nil
			}
			return fmt.Sprintf("%v", tag.Value), nil
		}
	}
	return "", errors.New("no ImageDescription tag")
}
