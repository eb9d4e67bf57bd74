package mail

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"actuator-quiz/internal/app"
	"actuator-quiz/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ResultNotifier renders a finished game and hands it to a Sender.
type ResultNotifier struct {
	sender Sender
	html   *htmltemplate.Template
	text   *texttemplate.Template
}

func NewResultNotifier(sender Sender) (*ResultNotifier, error) {
	html, err := htmltemplate.ParseFS(templateFS, "templates/result.html.tmpl")
	if err != nil {
		return nil, err
	}
	text, err := texttemplate.ParseFS(templateFS, "templates/result.txt.tmpl")
	if err != nil {
		return nil, err
	}
	return &ResultNotifier{sender: sender, html: html, text: text}, nil
}

type answerLine struct {
	Position    int
	Application string
	Selected    string
	Correct     bool
	TimedOut    bool
	Points      int
}

type resultData struct {
	Name       string
	FinalScore int
	MaxScore   int
	Correct    int
	Total      int
	Duration   string
	Rank       int
	Grade      domain.RankInfo
	Answers    []answerLine
}

func (n *ResultNotifier) NotifyResult(ctx context.Context, identity domain.UserIdentity, session domain.GameSession, result app.GameResult) error {
	data := buildResultData(identity, session, result)

	var html, text bytes.Buffer
	if err := n.html.Execute(&html, data); err != nil {
		return err
	}
	if err := n.text.Execute(&text, data); err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		To:      identity.Email,
		Subject: "Your actuator quiz result: grade " + result.Grade.Rank,
		Text:    strings.TrimSpace(text.String()) + "\n",
		HTML:    html.String(),
	})
}

func buildResultData(identity domain.UserIdentity, session domain.GameSession, result app.GameResult) resultData {
	data := resultData{
		Name:       identity.Name,
		FinalScore: session.PointsTotal(),
		Correct:    session.CorrectCount(),
		Total:      len(session.Questions),
		Rank:       result.Entry.Rank,
		Grade:      result.Grade,
	}
	for _, q := range session.Questions {
		data.MaxScore += q.MaxPoints
	}
	if session.CompletionTimeMs != nil {
		data.Duration = (time.Duration(*session.CompletionTimeMs) * time.Millisecond).Round(100 * time.Millisecond).String()
	}
	for i, a := range session.Answers {
		line := answerLine{
			Position: i + 1,
			Selected: a.SelectedAnswer,
			Correct:  a.IsCorrect,
			TimedOut: a.TimedOut,
			Points:   a.PointsEarned,
		}
		if i < len(session.Questions) {
			line.Application = session.Questions[i].ApplicationName
		}
		data.Answers = append(data.Answers, line)
	}
	return data
}
