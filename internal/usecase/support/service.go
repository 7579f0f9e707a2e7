package support

import (
	"context"
	"fmt"
	"strings"

	"tg-support-bot/internal/domain"
	"tg-support-bot/internal/infra/metrics"
)

// Sender описывает автора апдейта.
type Sender struct {
	ChatID    int64
	UserID    int64
	FirstName string
}

// Service сопоставляет команды, кнопки и свободный текст с ответами.
// Состояния между сообщениями нет.
type Service struct {
	catalog    domain.Catalog
	matcher    domain.Matcher
	events     domain.EventPublisher
	supportURL string
}

// NewService создаёт сервис поддержки.
func NewService(catalog domain.Catalog, matcher domain.Matcher, events domain.EventPublisher, supportURL string) *Service {
	return &Service{catalog: catalog, matcher: matcher, events: events, supportURL: supportURL}
}

// SupportURL ссылка на группу поддержки.
func (s *Service) SupportURL() string { return s.supportURL }

// HandleMessage обрабатывает текст сообщения. Текст, начинающийся с "/", в поиск
// не попадает: известные команды получают меню, остальные игнорируются.
// Пробелы перед "/" делают текст обычным сообщением.
func (s *Service) HandleMessage(ctx context.Context, text string, from Sender) (Reply, bool) {
	if name, ok := ParseCommand(text); ok {
		return s.command(name, from)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, false
	}
	return s.lookup(ctx, text, from), true
}

// HandleCallback обрабатывает нажатие кнопки.
func (s *Service) HandleCallback(ctx context.Context, data string, from Sender) (Reply, bool) {
	switch {
	case strings.HasPrefix(data, ActionSolutionPfx):
		return s.solution(strings.TrimPrefix(data, ActionSolutionPfx)), true
	case data == ActionReport:
		return s.reportPrompt(), true
	case data == ActionCommon:
		return s.commonIssues(), true
	case data == ActionBackToMenu:
		return Reply{Text: "🆘 *Support Menu*\n\nHow can I help you?", Markdown: true, Keyboard: s.mainKeyboard(), Edit: true}, true
	case data == ActionHelpful:
		s.feedback(ctx, domain.EventHelpful, from)
		return Reply{Text: "🙏 Thanks for your feedback! Use /support if you need more help.", Edit: true}, true
	case data == ActionNotHelpful:
		s.feedback(ctx, domain.EventNotHelpful, from)
		return Reply{Text: "😔 Sorry it wasn't helpful. Please join our support group:", Keyboard: s.joinKeyboard(), Edit: true}, true
	}
	return Reply{}, false
}

// ParseCommand возвращает имя команды из "/name@bot args".
func ParseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.TrimPrefix(text, "/")
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		name = name[:i]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), true
}

func (s *Service) command(name string, from Sender) (Reply, bool) {
	switch name {
	case "start":
		first := strings.TrimSpace(from.FirstName)
		if first == "" {
			first = "there"
		}
		return Reply{
			Text:     fmt.Sprintf("👋 Welcome %s!\n\nI'm your support assistant. How can I help you?", first),
			Keyboard: s.mainKeyboard(),
		}, true
	case "support":
		return Reply{
			Text:     "🆘 *Support Menu*\n\nPlease select your issue type:",
			Markdown: true,
			Keyboard: s.categoryKeyboard(),
		}, true
	}
	return Reply{}, false
}

func (s *Service) lookup(ctx context.Context, text string, from Sender) Reply {
	m, ok := s.matcher.Best(text)
	if !ok {
		metrics.ObserveMatch("", 0)
		s.publish(ctx, domain.NewSupportEvent(domain.EventUnmatched, "", from.ChatID, from.UserID))
		return Reply{
			Text:     "🤔 I couldn't find an automatic solution.\n\nPlease join our support group for help:\n" + s.supportURL,
			Keyboard: s.joinKeyboard(),
		}
	}
	metrics.ObserveMatch(m.Record.Category, m.Score)
	s.publish(ctx, domain.NewSupportEvent(domain.EventMatched, m.Record.Category, from.ChatID, from.UserID))
	return Reply{
		Text:     m.Record.Solution,
		Markdown: true,
		Keyboard: [][]Button{
			row(dataButton("✅ Helpful", ActionHelpful)),
			row(dataButton("❌ Not Helpful", ActionNotHelpful)),
		},
	}
}

func (s *Service) solution(category string) Reply {
	text := "Solution not found."
	if rec, ok := s.catalog.Lookup(category); ok {
		text = rec.Solution
	}
	return Reply{
		Text:     text,
		Markdown: true,
		Keyboard: [][]Button{
			row(urlButton("👥 Join Support Group", s.supportURL)),
			row(dataButton("🔙 Back to Menu", ActionBackToMenu)),
		},
		Edit: true,
	}
}

func (s *Service) reportPrompt() Reply {
	return Reply{
		Text: "📝 *Please describe your problem in detail*\n\n" +
			"Include:\n" +
			"• What happened?\n" +
			"• When did it happen?\n" +
			"• Any error messages?\n\n" +
			"I will try to find a solution for you.",
		Markdown: true,
	}
}

func (s *Service) commonIssues() Reply {
	var b strings.Builder
	b.WriteString("*Common Issues:*\n\n")
	for _, rec := range s.catalog.Records() {
		kws := rec.Keywords
		if len(kws) > 3 {
			kws = kws[:3]
		}
		fmt.Fprintf(&b, "• %s: %s...\n", rec.Category, strings.Join(kws, ", "))
	}
	return Reply{
		Text:     b.String(),
		Markdown: true,
		Keyboard: [][]Button{row(dataButton("🔙 Back to Menu", ActionBackToMenu))},
		Edit:     true,
	}
}

func (s *Service) feedback(ctx context.Context, kind domain.SupportEventKind, from Sender) {
	metrics.FeedbackTotal.WithLabelValues(string(kind)).Inc()
	s.publish(ctx, domain.NewSupportEvent(kind, "", from.ChatID, from.UserID))
}

func (s *Service) publish(ctx context.Context, event domain.SupportEvent) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, event)
}

func (s *Service) mainKeyboard() [][]Button {
	return [][]Button{
		row(dataButton("📝 Report Problem", ActionReport)),
		row(dataButton("❓ Common Issues", ActionCommon)),
		row(urlButton("👥 Support Group", s.supportURL)),
	}
}

func (s *Service) categoryKeyboard() [][]Button {
	recs := s.catalog.Records()
	rows := make([][]Button, 0, len(recs)+2)
	for _, rec := range recs {
		rows = append(rows, row(dataButton(rec.Title, ActionSolutionPfx+rec.Category)))
	}
	rows = append(rows,
		row(dataButton("📝 Describe Problem", ActionReport)),
		row(urlButton("👥 Support Group", s.supportURL)),
	)
	return rows
}

func (s *Service) joinKeyboard() [][]Button {
	return [][]Button{row(urlButton("👥 Join Support Group", s.supportURL))}
}
