package forms

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"civicsync-web/models"
	"civicsync-web/services"
)

const (
	MaxImages         = 5
	MaxImageBytes     = 5 << 20
	MaxDescriptionLen = 500
)

// Mode selects the create or edit variant of the report form.
type Mode int

const (
	Create Mode = iota
	Edit
)

// ReportForm is the submitted report form. Fields are declared in the order
// they are checked.
type ReportForm struct {
	IssueType   string `form:"issueType" json:"issueType" validate:"required,oneof=Pothole Streetlight Graffiti Other"`
	Latitude    string `form:"latitude" json:"latitude" validate:"required,latitude"`
	Longitude   string `form:"longitude" json:"longitude" validate:"required,longitude"`
	Description string `form:"description" json:"description" validate:"required,max=500"`
	Address     string `form:"address" json:"address" validate:"max=300"`
}

var reportMessages = messages{
	"IssueType":       "Select an issue type",
	"Latitude":        "Pick a location",
	"Longitude":       "Pick a location",
	"Description":     "Enter a description",
	"Description.max": fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLen),
	"Address":         "Address is too long",
}

// ImageResult holds the images that survived screening and a notice for
// every file that was dropped.
type ImageResult struct {
	Uploads []services.Upload
	Notices []string
}

// ScreenImages keeps at most MaxImages files, skipping empty file inputs and
// dropping any file over MaxImageBytes or whose content does not sniff as an
// image.
func ScreenImages(files []*multipart.FileHeader) (ImageResult, error) {
	var res ImageResult
	files = slices.DeleteFunc(slices.Clone(files), func(fh *multipart.FileHeader) bool {
		return fh.Filename == "" && fh.Size == 0
	})
	if len(files) > MaxImages {
		res.Notices = append(res.Notices, fmt.Sprintf("Only the first %d images were kept", MaxImages))
		files = files[:MaxImages]
	}

	for _, fh := range files {
		if fh.Size > MaxImageBytes {
			res.Notices = append(res.Notices, "Each image must be <5MB")
			continue
		}
		data, err := readAll(fh)
		if err != nil {
			return res, fmt.Errorf("read upload %q: %w", fh.Filename, err)
		}
		if len(data) > MaxImageBytes {
			res.Notices = append(res.Notices, "Each image must be <5MB")
			continue
		}
		mt := mimetype.Detect(data)
		if !strings.HasPrefix(mt.String(), "image/") {
			res.Notices = append(res.Notices, "Only image files allowed")
			continue
		}
		res.Uploads = append(res.Uploads, services.Upload{
			Filename:    filepath.Base(fh.Filename),
			ContentType: mt.String(),
			Data:        data,
		})
	}
	return res, nil
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
}

// Validate checks the form in order: issue type, location, description, then
// images. At least one image is required in Create mode; in Edit mode an empty
// image set keeps the report's existing images.
func (f *ReportForm) Validate(mode Mode, images []services.Upload) (*services.ReportSubmission, error) {
	f.IssueType = strings.TrimSpace(f.IssueType)
	f.Description = strings.TrimSpace(f.Description)
	f.Address = strings.TrimSpace(f.Address)

	if err := firstError(f, reportMessages); err != nil {
		return nil, err
	}
	if len([]rune(f.Description)) > MaxDescriptionLen {
		return nil, &FieldError{Field: "Description", Message: reportMessages["Description.max"]}
	}
	if mode == Create && len(images) == 0 {
		return nil, &FieldError{Field: "Images", Message: "Please upload at least one image"}
	}

	lat, err := strconv.ParseFloat(f.Latitude, 64)
	if err != nil {
		return nil, &FieldError{Field: "Latitude", Message: reportMessages["Latitude"]}
	}
	lng, err := strconv.ParseFloat(f.Longitude, 64)
	if err != nil {
		return nil, &FieldError{Field: "Longitude", Message: reportMessages["Longitude"]}
	}

	return &services.ReportSubmission{
		IssueType:   models.IssueType(f.IssueType),
		Latitude:    lat,
		Longitude:   lng,
		Description: f.Description,
		Address:     f.Address,
		Images:      images,
	}, nil
}

// FromReport prefills the edit form.
func FromReport(r *models.Report) ReportForm {
	return ReportForm{
		IssueType:   string(r.IssueType),
		Latitude:    strconv.FormatFloat(r.Location.Latitude(), 'f', -1, 64),
		Longitude:   strconv.FormatFloat(r.Location.Longitude(), 'f', -1, 64),
		Description: r.Description,
		Address:     r.Address,
	}
}

// Remaining is the number of description characters still available.
func (f ReportForm) Remaining() int {
	return MaxDescriptionLen - len([]rune(f.Description))
}
