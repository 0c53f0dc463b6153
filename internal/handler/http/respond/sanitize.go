package respond

import (
	"regexp"
)

var (
	// Webhook URL パターン
	// 注意: トークン部分のみマスクし、どのチャンネル宛かは判別できるよう残す
	discordWebhookPattern = regexp.MustCompile(`(discord\.com/api/webhooks/\d+)/[a-zA-Z0-9-_]+`)
	slackWebhookPattern   = regexp.MustCompile(`(hooks\.slack\.com/services)/[a-zA-Z0-9/]+`)

	// データベースパスワードパターン（DSN内）
	dbPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	// Webhookトークンのマスク
	msg = discordWebhookPattern.ReplaceAllString(msg, "$1/****")
	msg = slackWebhookPattern.ReplaceAllString(msg, "$1/****")

	// DBパスワードのマスク
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
