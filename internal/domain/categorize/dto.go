package categorize

// Request is the JSON body of POST /categorize. The pdf field carries
// the document as base64; size limits apply to the decoded bytes.
type Request struct {
	PDF        string   `json:"pdf" validate:"required"`
	Categories []string `json:"categories" validate:"required,min=1"`
	AuthCode   string   `json:"authCode" validate:"required"`
}

// Response wraps the parsed model output plus credits_left.
type Response struct {
	JSONResponse map[string]interface{} `json:"jsonResponse"`
}
