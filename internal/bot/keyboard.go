package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// optionsButtonsPerRow keeps category keyboards compact without making
// individual buttons unreadably narrow.
const optionsButtonsPerRow = 2

// optionsKeyboard renders step options as an inline keyboard. The callback
// data is the option text itself, which the engine validates; category set
// validation caps names at Telegram's 64-byte callback data limit.
func optionsKeyboard(options []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	var row []tgbotapi.InlineKeyboardButton
	for _, option := range options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(option, option))
		if len(row) == optionsButtonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
