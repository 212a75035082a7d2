package constants

import (
	"path/filepath"
	"strings"
)

// Upload folders
const (
	FolderHomeworks         = "homeworks"
	FolderSolvedHomeworks   = "solved_homeworks"
	FolderSolvedDuties      = "solved_duties"
	FolderAchievementProofs = "achievement_proofs"
	FolderLeaveRequests     = "leave_requests"
)

const (
	FileTypeAudio   = 2
	FileTypeDoc     = 3
	FileTypePDF     = 4
	FileTypeSlides  = 5
	FileTypeImage   = 6
	FileTypeText    = 7
	FileTypeUnknown = 99
)

func DetectFileTypeFromExt(filename string) int {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3", ".wav":
		return FileTypeAudio
	case ".doc", ".docx", ".odt":
		return FileTypeDoc
	case ".pdf":
		return FileTypePDF
	case ".ppt", ".pptx":
		return FileTypeSlides
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileTypeImage
	case ".txt", ".csv":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// IsAllowedUpload rejects anything we cannot classify.
func IsAllowedUpload(filename string) bool {
	return DetectFileTypeFromExt(filename) != FileTypeUnknown
}
