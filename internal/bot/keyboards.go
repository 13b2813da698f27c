package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandStats = "stats"
)

// CreateMainMenuKeyboard is attached to every reply so /help and /stats are
// one tap away.
func CreateMainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/"+CommandHelp),
			tgbotapi.NewKeyboardButton("/"+CommandStats),
		),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// BotCommands is the command menu registered with Telegram at startup.
func BotCommands() tgbotapi.SetMyCommandsConfig {
	return tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: CommandStart, Description: "Start the bot"},
		tgbotapi.BotCommand{Command: CommandHelp, Description: "How to use the bot"},
		tgbotapi.BotCommand{Command: CommandStats, Description: "Statistics"},
	)
}
