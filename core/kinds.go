package core

// ContentKind identifies the declared format of an uploaded payload.
type ContentKind string

// Recognized content kinds.
const (
	KindPDF        ContentKind = "application/pdf"
	KindJSON       ContentKind = "application/json"
	KindHTML       ContentKind = "text/html"
	KindJavaScript ContentKind = "text/javascript"
	KindAppJS      ContentKind = "application/javascript"
	KindPlainText  ContentKind = "text/plain"
	KindCSS        ContentKind = "text/css"
	KindMarkdown   ContentKind = "text/markdown"
	KindYAML       ContentKind = "text/yaml"
	KindXML        ContentKind = "text/xml"
)

var supportedKinds = map[ContentKind]bool{
	KindPDF:        true,
	KindJSON:       true,
	KindHTML:       true,
	KindJavaScript: true,
	KindAppJS:      true,
	KindPlainText:  true,
	KindCSS:        true,
	KindMarkdown:   true,
	KindYAML:       true,
	KindXML:        true,
}

// Supported reports whether the kind is in the recognized set.
func (k ContentKind) Supported() bool {
	return supportedKinds[k]
}

// SupportedKinds returns the recognized content kinds.
// The order is unspecified.
func SupportedKinds() []ContentKind {
	kinds := make([]ContentKind, 0, len(supportedKinds))
	for k := range supportedKinds {
		kinds = append(kinds, k)
	}
	return kinds
}

// KindFromContentType maps a MIME content type (without parameters) to a
// ContentKind. Returns ErrUnsupportedKind for anything outside the
// recognized set.
func KindFromContentType(contentType string) (ContentKind, error) {
	k := ContentKind(contentType)
	if !k.Supported() {
		return "", ErrUnsupportedKind
	}
	return k, nil
}
