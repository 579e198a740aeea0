package service

import (
	"strings"
	"text/template"
)

var consentRequestTmpl = template.Must(template.New("consent-request").Parse(
	`Hi {{.User}}! :wave:

This repository takes part in a research study on how developers adopt and
evolve type annotations. A commit of yours touched type-annotation syntax,
which is why we are reaching out.

Participation is voluntary. If you are willing to take part, reply to this
comment with ` + "`@{{.BotName}} consent`" + `. You can stop receiving messages at any
time with ` + "`@{{.BotName}} optout`" + `, and you can have every piece of data we
collected about you deleted with ` + "`@{{.BotName}} remove`" + `.`))

var surveyTmpl = template.Must(template.New("survey").Parse(
	`{{.Users}}: this commit {{.Change}} a type annotation. Could you tell us, in a
sentence or two, what motivated this change?

Reply to this comment to answer. Commands: ` + "`@{{.BotName}} optout`" + ` to stop
receiving messages, ` + "`@{{.BotName}} remove`" + ` to delete your data.`))

var initialSurveyTmpl = template.Must(template.New("initial-survey").Parse(
	`Thank you for consenting, {{.User}}! :tada:

To get started we have a few one-time questions:

1. How long have you been programming in this language?
2. Do you use a type checker in your projects? Which one?
3. What do you see as the main benefit of type annotations?

Reply to this comment with your answers.`))

var ackOptOutTmpl = template.Must(template.New("ack-optout").Parse(
	`{{.User}}: understood, you will not be contacted again. Your previously
recorded answers are retained; use ` + "`@{{.BotName}} remove`" + ` to delete them.`))

var ackRemovalTmpl = template.Must(template.New("ack-removal").Parse(
	`{{.User}}: every answer and membership record we stored about you has been
deleted and you will not be contacted again.`))

var ackConflictTmpl = template.Must(template.New("ack-conflict").Parse(
	`{{.User}}: your comment contains more than one command ({{.Commands}}), so
nothing was changed. Please send a single command per comment.`))

func renderTemplate(t *template.Template, payload interface{}) string {
	var sb strings.Builder
	if err := t.Execute(&sb, payload); err != nil {
		return ""
	}
	return sb.String()
}

func renderConsentRequest(botName, username string) string {
	return renderTemplate(consentRequestTmpl, map[string]string{
		"BotName": botName,
		"User":    "@" + username,
	})
}

func renderSurvey(botName string, usernames []string, change string) string {
	mentions := make([]string, len(usernames))
	for i, u := range usernames {
		mentions[i] = "@" + u
	}
	return renderTemplate(surveyTmpl, map[string]string{
		"BotName": botName,
		"Users":   strings.Join(mentions, ", "),
		"Change":  change,
	})
}

func renderInitialSurvey(username string) string {
	return renderTemplate(initialSurveyTmpl, map[string]string{"User": "@" + username})
}

func renderOptOutAck(botName, username string) string {
	return renderTemplate(ackOptOutTmpl, map[string]string{"BotName": botName, "User": "@" + username})
}

func renderRemovalAck(username string) string {
	return renderTemplate(ackRemovalTmpl, map[string]string{"User": "@" + username})
}

func renderConflictAck(username string, commands []Command) string {
	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = string(c)
	}
	return renderTemplate(ackConflictTmpl, map[string]string{
		"User":     "@" + username,
		"Commands": strings.Join(names, ", "),
	})
}
