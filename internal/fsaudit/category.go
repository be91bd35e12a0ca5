package fsaudit

import (
	"path/filepath"
	"strings"
)

// Category classifies a file by its extension.
type Category int

// Known categories, in report display order. CategoryOther is the fallback
// for unrecognized extensions.
const (
	CategoryText Category = iota
	CategoryImage
	CategoryScript
	CategoryArchive
	CategoryAudio
	CategoryVideo
	CategoryDocument
	CategoryOther

	categoryCount = int(CategoryOther) + 1
)

// String returns the display label for the category.
func (c Category) String() string {
	switch c {
	case CategoryText:
		return "Text"
	case CategoryImage:
		return "Image"
	case CategoryScript:
		return "Script"
	case CategoryArchive:
		return "Archive"
	case CategoryAudio:
		return "Audio"
	case CategoryVideo:
		return "Video"
	case CategoryDocument:
		return "Document"
	default:
		return "Other"
	}
}

// MarshalText implements encoding.TextMarshaler so categories render as
// their labels in JSON output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// extensionCategories maps lowercase file extensions to categories.
//
//nolint:gochecknoglobals // Static lookup table
var extensionCategories = map[string]Category{
	".txt":  CategoryText,
	".md":   CategoryText,
	".csv":  CategoryText,
	".log":  CategoryText,
	".jpg":  CategoryImage,
	".jpeg": CategoryImage,
	".png":  CategoryImage,
	".gif":  CategoryImage,
	".exe":  CategoryScript,
	".bin":  CategoryScript,
	".sh":   CategoryScript,
	".zip":  CategoryArchive,
	".tar":  CategoryArchive,
	".gz":   CategoryArchive,
	".bz2":  CategoryArchive,
	".mp3":  CategoryAudio,
	".wav":  CategoryAudio,
	".mp4":  CategoryVideo,
	".avi":  CategoryVideo,
	".pdf":  CategoryDocument,
	".doc":  CategoryDocument,
	".docx": CategoryDocument,
}

// Classify returns the category for a file path based on its extension.
// Unrecognized and missing extensions map to CategoryOther. Classify is a
// pure function and safe for concurrent use.
func Classify(path string) Category {
	ext := strings.ToLower(filepath.Ext(path))
	if category, ok := extensionCategories[ext]; ok {
		return category
	}

	return CategoryOther
}
