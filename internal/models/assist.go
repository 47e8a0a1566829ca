package models

// QueryRequest is the JSON body for POST /query. ImgBase64 may carry an
// optional data-URL prefix (data:image/<type>;base64,...).
type QueryRequest struct {
	UserInput string `json:"user_input"`
	ImgBase64 string `json:"img_base64"`
}

// TranscribeRequest is the JSON body for POST /transcribe.
type TranscribeRequest struct {
	Audio  string `json:"audio"`
	Format string `json:"format"`
}

// TranscribeResponse is the JSON body returned by POST /transcribe.
type TranscribeResponse struct {
	Text string `json:"text"`
}
