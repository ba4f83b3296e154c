package notification

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/magabrotheeeer/tutoring-platform/internal/models"
)

const layout = `<div style="font-family: 'Roboto', sans-serif; width: 100%;">
    <div style="background: #5AB2FF; padding: 10px 20px; border-radius: 3px;">
        <span style="font-size: 1.6em; color: white; font-weight: 600">Sai Classes</span>
    </div>
    <p>Hello <span style="color: #5AB2FF; font-size: 1.2em; text-transform: capitalize;">{{.FirstName}}</span>!</p>
    {{template "content" .}}
    <p>Regards,</p>
    <p>Sai Classes</p>
</div>`

const codeBlock = `<div style="display: flex; justify-content: center; width: 100%;">
        <div style="background: #5AB2FF; color: white; border-radius: 3px; padding: 5px 10px; font-size: 1.4em;">{{.Code}}</div>
    </div>`

type mailTemplate struct {
	subject string
	tmpl    *template.Template
}

func mustTemplate(subject, content string) mailTemplate {
	t := template.Must(template.New("layout").Parse(layout))
	template.Must(t.New("content").Parse(content))
	return mailTemplate{subject: subject, tmpl: t}
}

var templates = map[models.MailKind]mailTemplate{
	models.MailSignupCode: mustTemplate("Verify your account",
		`<p>Thank you for choosing Sai Classes. Use the following OTP to complete your Sign Up procedure. This OTP is valid for {{.ValidMinutes}} minutes.</p>
    `+codeBlock),
	models.MailResetCode: mustTemplate("Reset your password",
		`<p>Use the following OTP to reset your password. This OTP is valid for {{.ValidMinutes}} minutes.</p>
    `+codeBlock),
	models.MailSubscriptionExpired: mustTemplate("Your subscription has expired",
		`<p>Your Sai Classes subscription has expired. Renew it to keep access to the video lessons.</p>`),
}

// render возвращает тему и HTML-тело письма для задания.
func render(job models.MailJob) (string, string, error) {
	mt, ok := templates[job.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown mail kind %q", job.Kind)
	}
	var buf bytes.Buffer
	if err := mt.tmpl.Execute(&buf, job); err != nil {
		return "", "", err
	}
	return mt.subject, buf.String(), nil
}
