package mailer

import (
	"bytes"
	"html/template"
)

// PasswordResetSubject is the subject line of the reset email.
const PasswordResetSubject = "Password Reset Request"

var passwordResetTmpl = template.Must(
	template.New("passwordReset").Parse(passwordResetText))

const passwordResetText = `<p>Your reset password link is here, Please click the link below to set a new password:</p>
<a href="{{.Link}}">Reset Password</a>
<p>The link expires in {{.Minutes}} minutes. If you did not request a password reset, ignore this email.</p>
`

// PasswordResetBody renders the reset email for link.
func PasswordResetBody(link string, minutes int) (string, error) {
	var b bytes.Buffer
	data := struct {
		Link    string
		Minutes int
	}{link, minutes}
	if err := passwordResetTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
