package models

// These structs define the JSON payloads exchanged with the note-processor
// HTTP function and the upload-trigger CloudEvent function.

// ProcessRequest is the input for one pipeline run.
type ProcessRequest struct {
	UserID   string `json:"userId"`
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
}

// ProcessResponse is returned on a completed run.
type ProcessResponse struct {
	Status                string `json:"status"`
	PdfPath               string `json:"pdfPath,omitempty"`
	AudioPath             string `json:"audioPath,omitempty"`
	SimplifiedTextPreview string `json:"simplifiedTextPreview,omitempty"`
	Error                 string `json:"error,omitempty"`
}
