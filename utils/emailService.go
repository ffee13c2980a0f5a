package utils

import (
	"academy/config"
	"fmt"
	"net/smtp"
	"strings"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Academy <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// HTML Wrapper for academy emails
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
			.content h2 { color: #00004D; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #d7b56d; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>ACADEMY</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Academy. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// 1. Welcome / Signup
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to Academy"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>Academy</strong>! Your account has been created successfully.</p>
		<p>You can now browse published programs and enroll in courses.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// 2. Credential issued
func SendCredentialIssuedEmail(email, name, courseTitle string, grade float64) {
	subject := "Your certificate for " + courseTitle + " is ready"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have successfully completed <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Final grade:</strong> %.2f / 10
		</div>
		<p>Your completion certificate has been issued and is available from your student portal.</p>
	`, name, courseTitle, grade)

	go SendEmail([]string{email}, subject, getEmailTemplate("Certificate Issued", body))
}

// 3. Course rejected (to course staff)
func SendCourseRejectedEmail(email, name, courseTitle, reason string) {
	subject := "Course returned for remediation: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your course <strong>%s</strong> was reviewed and sent back for remediation.</p>
		<div class="info-box">
			<strong>Reason:</strong> %s
		</div>
		<p>Please address the issue and resubmit the course for review.</p>
	`, name, courseTitle, reason)

	go SendEmail([]string{email}, subject, getEmailTemplate("Review Outcome", body))
}

// 4. Course published (to course staff)
func SendCoursePublishedEmail(email, name, courseTitle string) {
	subject := "Course published: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p><strong>%s</strong> is now published and visible to students.</p>
	`, name, courseTitle)

	go SendEmail([]string{email}, subject, getEmailTemplate("Course Published", body))
}
