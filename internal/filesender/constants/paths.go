package constants

const (
	IndexPath        = "/"
	StaticPath       = "/static"
	TextPath         = "/data/text"
	UploadPath       = "/data/upload"
	DownloadPath     = "/data/download"
	DownloadPathPart = DownloadPath + "/:index"
)

const (
	DefaultAddress        = "0.0.0.0"
	DefaultPort           = 44333
	DefaultUploadFileName = "Upload.file"
	DefaultUploadSize     = 50_000_000

	// UploadFileField is the form field the bundled page uses for the file input.
	UploadFileField = "File"
	TextField       = "text"
)
