package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-storefront/pkg/mailer"
	mailtpl "github.com/oksasatya/go-storefront/pkg/mailer/templates"
)

func SubjectForUniversal(data map[string]any) string {
	typeStr := fmt.Sprintf("%v", data["Type"])
	switch strings.ToLower(typeStr) {
	case mailtpl.ForgotPassword:
		return "Reset your password"
	case mailtpl.PasswordChanged:
		return "Your password was changed"
	case mailtpl.OrderPlaced:
		return fmt.Sprintf("Order %v confirmed", data["OrderID"])
	case mailtpl.OrderStatusChanged:
		return fmt.Sprintf("Order %v is %v", data["OrderID"], data["OrderStatus"])
	default:
		return "Notification"
	}
}

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

func MapLegacyToUniversal(job *mailer.EmailJob) {
	switch strings.ToLower(job.Template) {
	case mailtpl.ForgotPassword, mailtpl.PasswordChanged, mailtpl.OrderPlaced, mailtpl.OrderStatusChanged:
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if _, ok := job.Data["Type"]; !ok || fmt.Sprintf("%v", job.Data["Type"]) == "" {
			job.Data["Type"] = job.Template
		}
		job.Template = "universal"
	}
}
