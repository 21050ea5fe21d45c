package images

// Attachment is a structured media reference on a feed entry: media:content,
// media:thumbnail, a typed enclosure, or a typed link.
type Attachment struct {
	URL  string
	Type string // declared MIME type, may be empty
}

// Entry is the resolver's view of one loosely structured source record. Each
// adapter maps its native shape (gofeed item, HTML fragment) onto this struct
// once, so the cascade never probes source-specific types. Absent fields stay
// zero-valued and the corresponding cascade steps are skipped.
type Entry struct {
	// Link is the entry's own article URL, used only by the webpage
	// fallback step.
	Link string

	// Structured media attachments, in source order.
	MediaContents   []Attachment
	MediaThumbnails []Attachment
	Enclosures      []Attachment
	Links           []Attachment

	// Ad-hoc custom fields keyed by field name (image, featured_image,
	// thumbnail, img, picture).
	Custom map[string]string

	// HTML fragments scanned for inline <img> tags, in cascade order:
	// summary first, then each content block, then description.
	Summary     string
	Contents    []string
	Description string
}

// adHocFields is the probe order for Entry.Custom.
var adHocFields = []string{"image", "featured_image", "thumbnail", "img", "picture"}
