package forms

import (
	"bytes"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civicsync-web/models"
	"civicsync-web/services"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type upload struct {
	name string
	data []byte
}

func fileHeaders(t *testing.T, files ...upload) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		part, err := w.CreateFormFile("images", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

func fieldError(t *testing.T, err error) *FieldError {
	t.Helper()
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	return fe
}

func validForm() ReportForm {
	return ReportForm{
		IssueType:   "Pothole",
		Latitude:    "43.6532",
		Longitude:   "-79.3832",
		Description: "  Deep pothole in the right lane  ",
	}
}

func TestReportFormValidationOrder(t *testing.T) {
	images := []services.Upload{{Filename: "a.png", ContentType: "image/png", Data: pngHeader}}

	tests := []struct {
		name    string
		mutate  func(f *ReportForm)
		images  []services.Upload
		field   string
		message string
	}{
		{"nothing filled", func(f *ReportForm) { *f = ReportForm{} }, nil, "IssueType", "Select an issue type"},
		{"unknown type", func(f *ReportForm) { f.IssueType = "Flood" }, images, "IssueType", "Select an issue type"},
		{"no location", func(f *ReportForm) { f.Latitude, f.Longitude = "", "" }, nil, "Latitude", "Pick a location"},
		{"latitude out of range", func(f *ReportForm) { f.Latitude = "95" }, images, "Latitude", "Pick a location"},
		{"blank description", func(f *ReportForm) { f.Description = "   " }, nil, "Description", "Enter a description"},
		{"long description", func(f *ReportForm) { f.Description = strings.Repeat("x", 501) }, images, "Description", "Description must be at most 500 characters"},
		{"no images", func(f *ReportForm) {}, nil, "Images", "Please upload at least one image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			_, err := f.Validate(Create, tt.images)
			fe := fieldError(t, err)
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.message, fe.Message)
		})
	}
}

func TestReportFormValid(t *testing.T) {
	f := validForm()
	f.Description = strings.Repeat("é", 500)
	images := []services.Upload{{Filename: "a.png", ContentType: "image/png", Data: pngHeader}}

	sub, err := f.Validate(Create, images)
	require.NoError(t, err)
	assert.Equal(t, models.Pothole, sub.IssueType)
	assert.InDelta(t, 43.6532, sub.Latitude, 1e-9)
	assert.InDelta(t, -79.3832, sub.Longitude, 1e-9)
	assert.Len(t, sub.Images, 1)
}

func TestReportFormEditKeepsImagesOptional(t *testing.T) {
	f := validForm()
	sub, err := f.Validate(Edit, nil)
	require.NoError(t, err)
	assert.Equal(t, "Deep pothole in the right lane", sub.Description)
	assert.Empty(t, sub.Images)
}

func TestFromReportRoundTrip(t *testing.T) {
	r := &models.Report{
		IssueType:   models.Graffiti,
		Location:    models.NewGeoPoint(43.6532, -79.3832),
		Description: "Tagged wall",
		Address:     "1 Queen St",
	}
	f := FromReport(r)
	assert.Equal(t, "43.6532", f.Latitude)
	assert.Equal(t, "-79.3832", f.Longitude)
	assert.Equal(t, MaxDescriptionLen-len("Tagged wall"), f.Remaining())

	sub, err := f.Validate(Edit, nil)
	require.NoError(t, err)
	assert.Equal(t, "1 Queen St", sub.Address)
}

func TestScreenImages(t *testing.T) {
	big := append(append([]byte{}, pngHeader...), make([]byte, MaxImageBytes)...)

	res, err := ScreenImages(fileHeaders(t,
		upload{"pothole.png", pngHeader},
		upload{"notes.txt", []byte("just some text, not an image")},
		upload{"huge.png", big},
	))
	require.NoError(t, err)

	require.Len(t, res.Uploads, 1)
	assert.Equal(t, "pothole.png", res.Uploads[0].Filename)
	assert.Equal(t, "image/png", res.Uploads[0].ContentType)
	assert.ElementsMatch(t, []string{"Only image files allowed", "Each image must be <5MB"}, res.Notices)
}

func TestScreenImagesKeepsFirstFive(t *testing.T) {
	var files []upload
	for _, name := range []string{"1.png", "2.png", "3.png", "4.png", "5.png", "6.png", "7.png"} {
		files = append(files, upload{name, pngHeader})
	}

	res, err := ScreenImages(fileHeaders(t, files...))
	require.NoError(t, err)
	assert.Len(t, res.Uploads, MaxImages)
	assert.Equal(t, "5.png", res.Uploads[4].Filename)
	assert.Equal(t, []string{"Only the first 5 images were kept"}, res.Notices)
}
