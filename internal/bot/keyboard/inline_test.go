package keyboard_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nutritrack/nutrition-bot/internal/bot/keyboard"
)

func TestInlineKeyboardBuilder(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		builder := keyboard.NewInlineKeyboard()
		builder.AddRow(
			keyboard.InlineButton{Text: "Prev", Unique: "nav", Data: "1"},
			keyboard.InlineButton{Text: "Next", Unique: "nav", Data: "2"},
		).AddRow(
			keyboard.InlineButton{Text: "Confirm", Unique: "confirm", Data: "ok"},
		)

		markup, err := builder.Build()
		assert.NoError(t, err)
		if !assert.NotNil(t, markup) {
			return
		}

		assert.Len(t, markup.InlineKeyboard, 2)
		assert.Len(t, markup.InlineKeyboard[0], 2)
		assert.Len(t, markup.InlineKeyboard[1], 1)
		assert.Equal(t, "nav:2", markup.InlineKeyboard[0][1].Data)
		assert.Equal(t, "confirm:ok", markup.InlineKeyboard[1][0].Data)
	})

	t.Run("button without payload", func(t *testing.T) {
		markup, err := keyboard.NewInlineKeyboard().
			AddRow(keyboard.InlineButton{Text: "Cancel", Unique: "flow_cancel"}).
			Build()
		assert.NoError(t, err)
		assert.Equal(t, "flow_cancel", markup.InlineKeyboard[0][0].Data)
	})

	t.Run("callback data overflow", func(t *testing.T) {
		builder := keyboard.NewInlineKeyboard()
		builder.AddRow(keyboard.InlineButton{
			Text:   "Too big",
			Unique: "overflow",
			Data:   strings.Repeat("x", keyboard.CallbackDataLimitBytes),
		})

		_, err := builder.Build()
		assert.Error(t, err)
	})
}
