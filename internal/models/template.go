package models

// Template bundles everything an invoice needs except its items and date.
type Template struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Company Company  `json:"company"`
	Client  Client   `json:"client"`
	Terms   Terms    `json:"terms"`
	Methods []Method `json:"methods"`
}

// ShortList is the id/label projection used by selection lists.
type ShortList struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// EmailConfig holds the SMTP settings. There is exactly one per database.
type EmailConfig struct {
	SMTPServer string `json:"smtp_server"`
	Port       int    `json:"port"`
	TLS        bool   `json:"tls"`
	Username   string `json:"username"`
	Password   string `json:"password,omitempty"`
	FromName   string `json:"fromname"`
}

// DefaultEmailConfig returns the settings offered before anything is saved.
func DefaultEmailConfig() EmailConfig {
	return EmailConfig{
		SMTPServer: "smtp.example.com",
		Port:       587,
		Username:   "username",
	}
}
