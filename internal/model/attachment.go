package model

import "time"

// AttachmentKind is the media kind of a case attachment.
type AttachmentKind string

const (
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment is a media record scoped to a vehicle or battery case. The blob
// itself lives in external storage; StoragePath is the scoped key.
type Attachment struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	CaseType    CaseType       `gorm:"size:16;not null;index:idx_attachment_case" json:"caseType"`
	CaseID      string         `gorm:"size:36;not null;index:idx_attachment_case" json:"caseId"`
	Kind        AttachmentKind `gorm:"size:16;not null" json:"kind"`
	FileName    string         `gorm:"size:256;not null" json:"fileName"`
	StoragePath string         `gorm:"size:512;not null" json:"storagePath"`
	SizeBytes   int64          `json:"sizeBytes"`
	UploadedBy  string         `gorm:"size:64" json:"uploadedBy,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"createdAt"`
}
