package admin

import "time"

// SMTPSettings is the singleton mail server configuration. The password is
// stored but never serialized back to clients.
type SMTPSettings struct {
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Username    string    `json:"username"`
	Password    string    `json:"-"`
	FromAddress string    `json:"from_address"`
	UseTLS      bool      `json:"use_tls"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SMTPSettingsRequest accepts the password on writes. An empty password
// keeps the stored one.
type SMTPSettingsRequest struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FromAddress string `json:"from_address"`
	UseTLS      bool   `json:"use_tls"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users        map[string]int `json:"users"`
	Appointments map[string]int `json:"appointments"`
}
