package rules

// Pre-seeded rules for popular asset sites. Users can edit or delete any of
// these; MergeDefaults only fills in sites that are absent.
func DefaultSiteRules() SiteRules {
	return SiteRules{
		"dafont.com": {"zip": "Fonts", "ttf": "Fonts", "otf": "Fonts"},
		"fonts.google.com": {
			"zip":   "Fonts",
			"ttf":   "Fonts",
			"otf":   "Fonts",
			"woff":  "Fonts",
			"woff2": "Fonts",
		},
		"fontsquirrel.com": {"zip": "Fonts", "ttf": "Fonts", "otf": "Fonts"},
		"1001fonts.com":    {"zip": "Fonts", "ttf": "Fonts", "otf": "Fonts"},

		"pinterest.com": {"jpg": "Photos", "png": "Photos", "webp": "Photos"},
		"i.pinimg.com":  {"jpg": "Photos", "png": "Photos"},

		"elements.envato.com": {
			"zip": "Graphics",
			"png": "Photos",
			"jpg": "Photos",
			"psd": "Graphics",
			"ai":  "Vectors",
		},
		"graphicriver.net": {"zip": "Graphics", "psd": "Graphics"},
		"freepik.com": {
			"zip": "Graphics",
			"png": "Photos",
			"jpg": "Photos",
			"svg": "Vectors",
			"psd": "Graphics",
		},

		"unsplash.com": {"jpg": "Photos", "png": "Photos"},
		"pexels.com":   {"jpg": "Photos", "png": "Photos"},
		"pixabay.com":  {"jpg": "Photos", "png": "Photos"},

		"flaticon.com":   {"png": "Icons", "svg": "Icons"},
		"iconfinder.com": {"png": "Icons", "svg": "Icons"},

		"vectorstock.com": {"svg": "Vectors", "ai": "Vectors", "eps": "Vectors"},
		"vecteezy.com":    {"svg": "Vectors", "ai": "Vectors"},
	}
}

// Default file type categories, in fallback priority order.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Photos", Extensions: []string{"jpg", "jpeg", "png", "webp", "bmp", "tiff"}},
		{Name: "Vectors", Extensions: []string{"svg", "ai", "eps", "ico", "icns"}},
		{Name: "Graphics", Extensions: []string{"psd", "sketch", "xd", "fig"}},
		{Name: "Fonts", Extensions: []string{"ttf", "otf", "woff", "woff2", "eot"}},
		{Name: "Videos", Extensions: []string{"mp4", "mov", "avi", "webm", "mkv", "flv"}},
		{Name: "GIFs", Extensions: []string{"gif"}},
		{Name: "Documents", Extensions: []string{"pdf", "doc", "docx", "txt", "rtf", "odt"}},
		{Name: "Archives", Extensions: []string{"zip", "rar", "7z", "tar", "gz"}},
		{Name: "Audio", Extensions: []string{"mp3", "wav", "aac", "flac", "ogg", "m4a"}},
		{Name: "Code", Extensions: []string{"html", "css", "js", "json", "xml", "py", "java", "cpp"}},
		{Name: "Apps", Extensions: []string{"exe", "msi", "dmg", "pkg", "deb", "rpm"}},
	}
}
