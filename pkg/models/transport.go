package models

// UploadedImage is one image part of an analysis upload. It lives only for
// the duration of the request that carried it.
type UploadedImage struct {
	Filename  string
	MediaType string
	Size      int64
	Data      []byte
}

// AnalysisRequest is the validated batch plus the caller's free-text notes.
// Duplicates are allowed; de-duplication belongs to the client UI.
type AnalysisRequest struct {
	Images []UploadedImage
	Notes  string
}

// Filenames returns the original filenames in arrival order.
func (r AnalysisRequest) Filenames() []string {
	names := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		names = append(names, img.Filename)
	}
	return names
}

// ErrorResponse is the body of every non-200 reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
