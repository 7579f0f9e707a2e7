package catalog

import "tg-support-bot/internal/domain"

// Defaults возвращает встроенный каталог тем поддержки.
func Defaults() []domain.SolutionRecord {
	return []domain.SolutionRecord{
		{
			Category: "login",
			Title:    "🔐 Login Issues",
			Keywords: []string{"login", "signin", "password", "forgot", "can't login", "access", "log in"},
			Solution: "🔐 *Login Issue Solution*\n\n" +
				"1. Check your internet connection\n" +
				"2. Clear browser cache and cookies\n" +
				"3. Reset your password using 'Forgot Password' option\n" +
				"4. Use latest version of Telegram\n\n" +
				"Still having issues? Contact support group.",
		},
		{
			Category: "payment",
			Title:    "💰 Payment Issues",
			Keywords: []string{"payment", "pay", "money", "transaction", "failed", "refund", "bkash", "nagad", "card"},
			Solution: "💰 *Payment Issue Solution*\n\n" +
				"1. Check your balance before transaction\n" +
				"2. Verify payment method details\n" +
				"3. Wait 10-15 minutes for transaction confirmation\n" +
				"4. Contact your bank/payment provider\n\n" +
				"For refund issues, please contact support group.",
		},
		{
			Category: "technical",
			Title:    "⚙️ Technical Issues",
			Keywords: []string{"technical", "error", "bug", "crash", "slow", "problem", "issue", "not working", "glitch"},
			Solution: "⚙️ *Technical Issue Solution*\n\n" +
				"1. Restart the application\n" +
				"2. Clear app cache and data\n" +
				"3. Update to latest version\n" +
				"4. Restart your device\n" +
				"5. Reinstall the application\n\n" +
				"If problem persists, contact support group.",
		},
	}
}
