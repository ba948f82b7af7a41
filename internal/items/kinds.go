package items

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// ImageExtensions maps file extensions to whether they are supported image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
}

// PlaylistExtensions maps file extensions to whether they are supported playlist formats.
var PlaylistExtensions = map[string]bool{
	".wpl":  true,
	".m3u":  true,
	".m3u8": true,
}

// KindForExtension returns the media kind for a file extension.
// The extension should be lowercase and include the leading dot (e.g. ".mkv").
// Returns "" if the extension is not a recognized media format.
func KindForExtension(ext string) Kind {
	switch {
	case VideoExtensions[ext]:
		return KindVideo
	case ImageExtensions[ext]:
		return KindImage
	case PlaylistExtensions[ext]:
		return KindPlaylist
	}
	return ""
}

// IsMediaExtension reports whether the extension is a supported media format.
func IsMediaExtension(ext string) bool {
	return KindForExtension(ext) != ""
}
