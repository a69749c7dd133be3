package model

// UserSettings is the single persisted settings record. It is always saved
// and loaded as a whole.
type UserSettings struct {
	SelectedPdfFolderPath string `json:"selectedPdfFolderPath"`
	SMTPHost              string `json:"smtpHost"`
	SMTPLogin             string `json:"smtpLogin"`
	SMTPPassword          string `json:"smtpPassword"`
}

// DefaultUserSettings returns the record used when nothing has been saved.
func DefaultUserSettings() *UserSettings {
	return &UserSettings{}
}

// FileListItem is one PDF in the selected folder. Email is Name without the
// .pdf suffix.
type FileListItem struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
