package entity

// Preview is the uniform metadata result returned for every preview
// request, regardless of whether extraction succeeded, partially succeeded,
// or was replaced by fallback content.
//
// URL always carries the final normalized absolute URL that was actually
// fetched (or attempted), never the raw user input. The content fields are
// independently nullable: absence of one implies nothing about the others.
type Preview struct {
	Title       *string
	Description *string
	Image       *string
	Logo        *string
	URL         string
}

// DegradedPreview returns the preview shape used when metadata could not be
// (or was chosen not to be) extracted: all content fields empty except an
// optional fallback image.
func DegradedPreview(url, fallbackImage string) *Preview {
	p := &Preview{URL: url}
	if fallbackImage != "" {
		p.Image = &fallbackImage
	}
	return p
}
