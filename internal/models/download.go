package models

// DownloadEntry is one offered file. Index is its position in the catalog at the
// time the entry was copied out, and the number used in the download URL.
type DownloadEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Path  string `json:"-"`
}

// Snapshot is a copy of the shared session taken under its lock.
type Snapshot struct {
	UploadFileName  string
	UploadSizeLimit int64
	OfferedNote     string
	ReceivedNote    string
	Downloads       []DownloadEntry
	LastUpload      *UploadOutcome
}
