package leaderboard

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"

	"github.com/pkg/errors"

	"github.com/educlara/educlara/core"
)

var digestTextTmpl = texttmpl.Must(texttmpl.New("digest.txt").Parse(
	`Hi there,

Here is this {{if .Weekly}}week's{{else}}term's{{end}} EduClara leaderboard:

{{range .Entries}}  #{{.Rank}}  {{.DisplayName}} - {{.Points}} pts, {{.CurrentStreak}} day streak, {{.QuizzesCompleted}} quizzes
{{end}}
Keep revising!
The EduClara team
`))

var digestHTMLTmpl = htmltmpl.Must(htmltmpl.New("digest.html").Parse(
	`<p>Hi there,</p>
<p>Here is this {{if .Weekly}}week's{{else}}term's{{end}} EduClara leaderboard:</p>
<ol>
{{range .Entries}}<li><strong>{{.DisplayName}}</strong> - {{.Points}} pts, {{.CurrentStreak}} day streak, {{.QuizzesCompleted}} quizzes</li>
{{end}}</ol>
<p>Keep revising!<br>The EduClara team</p>
`))

type digestData struct {
	Weekly  bool
	Entries []Entry
}

// BuildDigest renders the top entries of a snapshot into an email message.
// It returns false when the snapshot is empty: an empty board sends
// nothing, consistent with the degrade-don't-crash policy.
func BuildDigest(snap Snapshot, top int, to []mail.Address) (*core.EmailMessage, bool, error) {
	if len(snap.Entries) == 0 {
		return nil, false, nil
	}
	entries := DeriveView(snap.Entries, DefaultViewState())
	if top > 0 && len(entries) > top {
		entries = entries[:top]
	}
	data := digestData{Weekly: snap.Scope == ScopeWeek, Entries: entries}

	var text, html bytes.Buffer
	if err := digestTextTmpl.Execute(&text, data); err != nil {
		return nil, false, errors.Wrap(err, "rendering digest text")
	}
	if err := digestHTMLTmpl.Execute(&html, data); err != nil {
		return nil, false, errors.Wrap(err, "rendering digest html")
	}

	return &core.EmailMessage{
		To:          to,
		Subject:     "Leaderboard digest",
		TextContent: text.String(),
		HTMLContent: html.String(),
	}, true, nil
}
