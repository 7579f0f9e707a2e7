package support

// Callback data кнопок.
const (
	ActionReport      = "report"
	ActionCommon      = "common"
	ActionBackToMenu  = "back_to_menu"
	ActionHelpful     = "helpful"
	ActionNotHelpful  = "not_helpful"
	ActionSolutionPfx = "solution_"
)

// Button кнопка inline-клавиатуры: либо Data, либо URL.
type Button struct {
	Text string
	Data string
	URL  string
}

// Reply ответ бота, не зависящий от транспорта.
type Reply struct {
	Text     string
	Markdown bool
	Keyboard [][]Button
	// Edit означает правку сообщения, к которому привязана нажатая кнопка.
	Edit bool
}

func row(buttons ...Button) []Button { return buttons }

func dataButton(text, data string) Button { return Button{Text: text, Data: data} }

func urlButton(text, url string) Button { return Button{Text: text, URL: url} }
