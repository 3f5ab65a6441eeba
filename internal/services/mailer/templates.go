// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package mailer

import (
	"bytes"
	"html/template"
)

type templateData struct {
	Name string
	Link string
	Code string
}

var (
	verificationTemplate = template.Must(template.New("verification").Parse(baseLayout + `
{{define "content"}}
<p>Hi {{.Name}},</p>
<p>Welcome! Please confirm your email address to activate your account.</p>
<p><a class="button" href="{{.Link}}">Verify my account</a></p>
<p>If the button does not work, open this link:<br><a href="{{.Link}}">{{.Link}}</a></p>
{{end}}`))

	resetTemplate = template.Must(template.New("reset").Parse(baseLayout + `
{{define "content"}}
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for 60 minutes.</p>
<p><a class="button" href="{{.Link}}">Reset my password</a></p>
<p>If you did not request this, you can safely ignore this email.</p>
{{end}}`))

	twoFactorTemplate = template.Must(template.New("twofactor").Parse(baseLayout + `
{{define "content"}}
<p>Hi {{.Name}},</p>
<p>Your login code is:</p>
<p class="code">{{.Code}}</p>
<p>It expires in 5 minutes. If you did not try to log in, change your password now.</p>
{{end}}`))
)

const baseLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #f3f4f6; margin: 0; }
.container { max-width: 560px; margin: 24px auto; background: #fff; border-radius: 8px; padding: 24px; color: #374151; line-height: 1.6; }
.button { display: inline-block; padding: 10px 18px; background: #1d4ed8; color: #fff; border-radius: 6px; text-decoration: none; }
.code { font-size: 28px; font-weight: 700; letter-spacing: 6px; }
.footer { text-align: center; font-size: 11px; color: #9ca3af; margin-top: 16px; }
</style>
</head>
<body>
<div class="container">
{{template "content" .}}
</div>
<div class="footer">campuskit</div>
</body>
</html>`

func renderTemplate(t *template.Template, data templateData) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		// Templates are static and parsed at init, execution cannot fail
		// on this data shape.
		return ""
	}
	return buf.String()
}
