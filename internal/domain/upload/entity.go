package upload

import "time"

// Upload is a payment-proof file stored on the local filesystem.
type Upload struct {
	ID           string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID       int64     `gorm:"column:user_id;index" json:"user_id"`
	BookingID    int64     `gorm:"column:booking_id;index" json:"booking_id"`
	OriginalName string    `gorm:"column:original_name;size:255" json:"original_name"`
	FilePath     string    `gorm:"column:file_path;size:255" json:"path"` // relative to the storage root
	MimeType     string    `gorm:"column:mime_type;size:100" json:"mime_type"`
	Size         int64     `gorm:"column:size" json:"size"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Upload) TableName() string { return "payment_proofs" }
