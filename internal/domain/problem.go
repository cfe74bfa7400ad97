package domain

// Problem is the provider-agnostic math problem shape passed from the handler
// to the generation client. ImageData and MimeType describe an optional
// base64-encoded image; the inline part is only attached upstream when both
// are present.
type Problem struct {
	Query     string
	ImageData string
	MimeType  string
}
