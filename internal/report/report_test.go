package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionsKeepOrder(t *testing.T) {
	var s Selections
	require.NoError(t, json.Unmarshal([]byte(`{"Status":"Done","Category":"B","Count":3}`), &s))

	require.Len(t, s, 3)
	assert.Equal(t, "Status", s[0].Label)
	assert.Equal(t, "Category", s[1].Label)
	assert.Equal(t, "3", s[2].Value)
	assert.Equal(t, "Status: Done | Category: B | Count: 3", s.String())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"Status":"Done","Category":"B","Count":"3"}`, string(out))
}

func TestSelectionsNull(t *testing.T) {
	var s Selections
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Empty(t, s)
	assert.Equal(t, "", s.String())
}

func TestRound5(t *testing.T) {
	assert.InDelta(t, 40.44611, Round5(40.4461111), 1e-12)
	assert.InDelta(t, -79.98222, Round5(-79.9822222), 1e-12)
	p := GeoPoint{Lat: 50.0875049, Lng: 14.4212535}.Rounded()
	assert.InDelta(t, 50.0875, p.Lat, 1e-12)
	assert.InDelta(t, 14.42125, p.Lng, 1e-12)
}

func TestReportLocation(t *testing.T) {
	lat, lng := 50.1, 14.4

	r := Report{Lat: &lat}
	_, ok := r.Location()
	assert.False(t, ok, "lone latitude must be ignored")

	r.Lng = &lng
	p, ok := r.Location()
	require.True(t, ok)
	assert.Equal(t, GeoPoint{Lat: 50.1, Lng: 14.4}, p)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatArchive},
		{"zip", FormatArchive},
		{"pdf", FormatDocument},
		{"document", FormatDocument},
		{"jpg", FormatImage},
		{"IMAGE", FormatImage},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseFormat("docx")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs("[3, 1, 3, -2]")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids)

	ids, err = ParseIDs(" 5, x, 7 ,5")
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 7}, ids)

	ids, err = ParseIDs("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = ParseIDs("0,-1,abc")
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestSanitizeDate(t *testing.T) {
	assert.Equal(t, "2024-03-01", SanitizeDate("2024-03-01"))
	assert.Equal(t, "", SanitizeDate("2024-02-30"))
	assert.Equal(t, "", SanitizeDate("01/03/2024"))
	assert.Equal(t, "", SanitizeDate(""))
}

func TestRequestFilter(t *testing.T) {
	day := func(s string) time.Time {
		ts, err := time.Parse(DateTimeLayout, s)
		require.NoError(t, err)
		return ts
	}
	reports := []Report{
		{ID: 1, CreatedAt: day("2024-03-01 08:00:00")},
		{ID: 2, CreatedAt: day("2024-03-02 23:59:59")},
		{ID: 3, CreatedAt: day("2024-03-03 00:00:00")},
	}

	req, err := ParseRequest("pdf", "2024-03-02", "2024-03-03", "")
	require.NoError(t, err)
	got, err := req.Filter(reports)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)

	req, err = ParseRequest("zip", "", "", "[1,3]")
	require.NoError(t, err)
	got, err = req.Filter(reports)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	req, err = ParseRequest("zip", "2025-01-01", "", "")
	require.NoError(t, err)
	_, err = req.Filter(reports)
	assert.True(t, errors.Is(err, ErrNoReports))
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("demo-project"))
	assert.NoError(t, ValidateSlug("a1"))
	assert.ErrorIs(t, ValidateSlug("Demo"), ErrInvalid)
	assert.ErrorIs(t, ValidateSlug("demo--project"), ErrInvalid)
	assert.ErrorIs(t, ValidateSlug("-demo"), ErrInvalid)
}

func TestSelectionsValidate(t *testing.T) {
	groups := []OptionGroup{
		{Label: "Category", Choices: []string{"A", "B"}},
		{Label: "Status", Choices: []string{"Pending", "Done"}},
	}

	ok := Selections{{"Category", "A"}, {"Status", "Done"}}
	assert.NoError(t, ok.Validate(groups))

	assert.ErrorIs(t, Selections{{"Category", "C"}, {"Status", "Done"}}.Validate(groups), ErrInvalid)
	assert.ErrorIs(t, Selections{{"Category", "A"}}.Validate(groups), ErrInvalid)
	assert.ErrorIs(t, Selections{{"Colour", "A"}}.Validate(groups), ErrInvalid)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports.json")
	body := `{
		"project": {"id": 1, "name": "Demo", "slug": "demo",
			"option_groups": [{"label": "Category", "choices": ["A"]}]},
		"reports": [{
			"id": 7, "project_id": 1, "selections": {"Category": "A"},
			"created_at": "2024-03-01T10:00:00Z",
			"photos": [
				{"photo_path": "b.jpg", "sort_order": 1},
				{"photo_path": "a.jpg", "sort_order": 0}
			]
		}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	b, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", b.Project.Slug)
	require.Len(t, b.Reports, 1)
	assert.Equal(t, "a.jpg", b.Reports[0].Photos[0].Path)
	assert.Equal(t, "2024-03-01 10:00:00", b.Reports[0].DateString())
}
