package dto

// RestoreBackupRequest names a file previously returned by the backups list.
type RestoreBackupRequest struct {
	File string `json:"file" validate:"required"`
}
