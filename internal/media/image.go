package media

// ImageSize selects a rendition on the TMDB image CDN.
type ImageSize string

const (
	SizeThumbnail ImageSize = "w92"
	SizeDetail    ImageSize = "w300"
	SizeOriginal  ImageSize = "original"
)

const (
	imageBaseURL = "https://image.tmdb.org/t/p/"
	// PlaceholderPoster is shown when an item has no poster.
	PlaceholderPoster = "placeholder-poster.jpg"
)

// ImageURL builds the CDN URL for a poster path. Empty paths yield the
// placeholder asset.
func ImageURL(path string, size ImageSize) string {
	if path == "" {
		return PlaceholderPoster
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return imageBaseURL + string(size) + path
}

// PosterURL is ImageURL for the item's poster.
func (i Item) PosterURL(size ImageSize) string {
	return ImageURL(i.PosterPath, size)
}
