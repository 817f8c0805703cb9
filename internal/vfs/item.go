// Package vfs implements the virtual filesystem behind the storage dashboard:
// a flat item store with a maintained folder tree index, the view
// filter/sort/paginate pipeline, multi-select state, and the drag-transfer
// protocol between the file list and the sidebar tree.
package vfs

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Kind classifies an item. Folder is structural; the rest are leaf content
// types inferred from the file extension.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindDocument Kind = "document"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindCode     Kind = "code"
	KindArchive  Kind = "archive"
)

// Kinds lists every leaf kind plus folder.
func Kinds() []Kind {
	return []Kind{KindFolder, KindDocument, KindImage, KindVideo, KindAudio, KindCode, KindArchive}
}

var extensionKinds = map[string]Kind{
	".pdf": KindDocument, ".doc": KindDocument, ".docx": KindDocument,
	".xls": KindDocument, ".xlsx": KindDocument, ".ppt": KindDocument,
	".pptx": KindDocument, ".txt": KindDocument, ".md": KindDocument,

	".jpg": KindImage, ".jpeg": KindImage, ".png": KindImage,
	".gif": KindImage, ".svg": KindImage, ".webp": KindImage,

	".mp4": KindVideo, ".mov": KindVideo, ".avi": KindVideo, ".webm": KindVideo,

	".mp3": KindAudio, ".wav": KindAudio, ".ogg": KindAudio, ".m4a": KindAudio,

	".js": KindCode, ".ts": KindCode, ".jsx": KindCode, ".tsx": KindCode,
	".html": KindCode, ".css": KindCode, ".py": KindCode, ".java": KindCode,
	".go": KindCode, ".sh": KindCode,

	".zip": KindArchive, ".tar": KindArchive, ".gz": KindArchive,
	".rar": KindArchive, ".7z": KindArchive,
}

// KindFromName infers a leaf kind from a file name's extension.
// Unknown extensions default to document.
func KindFromName(name string) Kind {
	ext := strings.ToLower(filepath.Ext(name))
	if k, ok := extensionKinds[ext]; ok {
		return k
	}
	return KindDocument
}

// ParseKind normalizes a kind string; the empty string and unknown values
// return false.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds() {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Item is a file or folder record. ByteSize is meaningful for leaves only;
// folder child counts are derived from the tree index, never stored.
type Item struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Kind       Kind      `json:"kind"`
	ByteSize   int64     `json:"byte_size,omitempty"`
	ModifiedAt time.Time `json:"modified_at"`
	Starred    bool      `json:"starred"`
	CategoryID *string   `json:"category_id,omitempty"`
	ParentID   *string   `json:"parent_id,omitempty"`
}

// IsFolder reports whether the item is structural.
func (i *Item) IsFolder() bool {
	return i.Kind == KindFolder
}

// Clone returns a deep copy safe to hand across goroutines.
func (i *Item) Clone() *Item {
	out := *i
	if i.CategoryID != nil {
		v := *i.CategoryID
		out.CategoryID = &v
	}
	if i.ParentID != nil {
		v := *i.ParentID
		out.ParentID = &v
	}
	return &out
}

// DisplaySize renders the size the way the dashboard shows it: a child count
// for folders, a human byte string for leaves.
func (i *Item) DisplaySize(childCount int) string {
	if i.IsFolder() {
		if childCount == 1 {
			return "1 file"
		}
		return fmt.Sprintf("%d files", childCount)
	}
	// Decimal units ("2.4 MB"), matching the dashboard's rendering.
	return humanize.Bytes(uint64(i.ByteSize))
}

// ParseSize converts a human size string back into bytes for size-sorted
// views and transfer payloads from older clients. Unparsable strings count
// as zero.
func ParseSize(s string) int64 {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return int64(n)
}
