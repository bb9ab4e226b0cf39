package domain

// SearchResult is the archive's search response envelope.
type SearchResult struct {
	Response struct {
		NumFound int   `json:"numFound"`
		Docs     []Doc `json:"docs"`
	} `json:"response"`
}

// Doc is one search hit. The field set depends on the caller's field
// selection, so it stays schemaless.
type Doc map[string]any

// Field returns the named field as a string. The archive returns some
// fields as a single value and some as a list; for lists the first
// element wins.
func (d Doc) Field(key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

// Identifier returns the item identifier of the hit.
func (d Doc) Identifier() string {
	return d.Field("identifier")
}

// Show is the metadata-by-identifier response: one recorded show and
// the files that make it up.
type Show struct {
	Metadata ShowMetadata `json:"metadata"`
	Files    []ShowFile   `json:"files"`
}

// ShowMetadata describes a single recording.
type ShowMetadata struct {
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	Creator    string `json:"creator"`
	Date       string `json:"date"`
	Venue      string `json:"venue"`
	Coverage   string `json:"coverage"`
	Year       string `json:"year"`
}

// ShowFile describes one file within a recording (a track, artwork,
// a checksum file, ...).
type ShowFile struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Title  string `json:"title"`
	Track  string `json:"track"`
	Length string `json:"length"`
	Size   string `json:"size"`
}
