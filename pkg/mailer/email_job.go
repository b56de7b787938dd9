package mailer

// EmailJob is the JSON payload on the email queue. Producers either fill
// Subject/Text/HTML directly or name a Template with its Data; the storefront
// uses the "universal" template with Data["Type"] set to forgot_password,
// password_changed, order_placed or order_status_changed.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}
