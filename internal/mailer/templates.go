package mailer

import "fmt"

// 注文確認メールの本文。
// dashboardLink は初回購入者ならトークン付きリンク、既存ユーザーなら素のダッシュボードURL。
func BuildOrderConfirmation(customerName string, orderID int64, total int64, dashboardLink string) (string, string) {
	subject := fmt.Sprintf("ご注文ありがとうございます（注文番号: %d）", orderID)

	body := fmt.Sprintf(
		"%s 様\n\nご注文を確認しました。\n注文番号: %d\n合計金額: %d円\n\nマイページはこちらからご確認いただけます:\n%s\n",
		customerName, orderID, total, dashboardLink,
	)

	return subject, body
}

// チャット問い合わせのお礼メール本文。
func BuildChatThanks(name string) (string, string) {
	subject := "お問い合わせありがとうございます"

	display := name
	if display == "" {
		display = "お客"
	}

	body := fmt.Sprintf(
		"%s 様\n\nお問い合わせを受け付けました。\n担当者より順次ご連絡いたします。\n",
		display,
	)

	return subject, body
}
