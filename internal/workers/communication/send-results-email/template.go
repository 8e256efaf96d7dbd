// internal/workers/communication/send-results-email/template.go
package sendresultsemail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"math"
	"strings"
	texttemplate "text/template"
	"time"
)

type emailEntry struct {
	Rank        int
	Match       int
	Title       string
	Description string
	Image       string
	PurchaseURL string
}

type emailData struct {
	Heading    string
	Profile    string
	Fragrances []emailEntry
	Year       int
}

const htmlLayout = `<!DOCTYPE html>
<html>
  <head>
    <style>
      body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f5f5f5; margin: 0; padding: 0; }
      .container { max-width: 600px; margin: 0 auto; padding: 20px; background-color: #ffffff; }
      .header { text-align: center; margin-bottom: 30px; padding: 20px 0; border-bottom: 1px solid #eee; }
      .profile-section { background: #f8f8f8; padding: 20px; border-radius: 12px; margin-bottom: 30px; border: 1px solid #eee; }
      .fragrance-card { border: 1px solid #eee; border-radius: 16px; padding: 24px; margin-bottom: 24px; }
      .rank { font-size: 24px; font-weight: bold; color: #666; margin-right: 10px; }
      .match-score { display: inline-block; background: #000; color: #fff; padding: 4px 12px; border-radius: 4px; font-size: 14px; font-weight: 600; }
      .fragrance-image { width: 100%; max-width: 260px; height: 260px; object-fit: contain; margin: 0 auto 20px; display: block; }
      .cta-button { display: inline-block; background: #000; color: #fff; padding: 16px 24px; text-decoration: none; border-radius: 12px; font-weight: 600; }
      .footer { text-align: center; color: #999; font-size: 12px; margin-top: 30px; }
    </style>
  </head>
  <body>
    <div class="container">
      <div class="header">
        <h1 style="margin: 0; font-size: 28px; color: #000;">{{.Heading}}</h1>
        <p style="margin: 12px 0 0 0; color: #666;">Based on your preferences, we've found these scents for you.</p>
      </div>
      <div class="profile-section">
        <h2 style="margin: 0 0 12px 0; font-size: 20px;">Your Fragrance Profile</h2>
        <p style="margin: 0; color: #666;">{{.Profile}}</p>
      </div>
      {{- range .Fragrances}}
      <div class="fragrance-card">
        <div>
          <span class="rank">#{{.Rank}}</span>
          <span class="match-score">{{.Match}}% Match</span>
        </div>
        {{- if .Image}}
        <img src="{{.Image}}" alt="{{.Title}}" class="fragrance-image" />
        {{- end}}
        <h2>{{.Title}}</h2>
        <p>{{.Description}}</p>
        {{- if .PurchaseURL}}
        <a href="{{.PurchaseURL}}" class="cta-button">Find Best Prices</a>
        {{- end}}
      </div>
      {{- end}}
      <div class="footer">
        <p style="margin: 0;">&copy; {{.Year}} Fragrance Finder. All rights reserved.</p>
      </div>
    </div>
  </body>
</html>
`

const textLayout = `{{.Heading}}

Your fragrance profile: {{.Profile}}
{{range .Fragrances}}
#{{.Rank}} {{.Title}} ({{.Match}}% match)
{{- if .Description}}
{{.Description}}
{{- end}}
{{- if .PurchaseURL}}
Find best prices: {{.PurchaseURL}}
{{- end}}
{{end}}
(c) {{.Year}} Fragrance Finder
`

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("results.html").Parse(htmlLayout))
	textTemplate = texttemplate.Must(texttemplate.New("results.txt").Parse(textLayout))
)

func subject(top int) string {
	return fmt.Sprintf("Your Top %d Fragrance Matches", top)
}

// fragranceProfile turns tags into readable words: "fresh-citrus" -> "fresh citrus".
func fragranceProfile(tags []string) string {
	words := make([]string, len(tags))
	for i, t := range tags {
		words[i] = strings.ReplaceAll(t, "-", " ")
	}
	return strings.Join(words, ", ")
}

func buildEmailData(heading string, fragrances []Fragrance, tags []string, now time.Time) emailData {
	entries := make([]emailEntry, len(fragrances))
	for i, f := range fragrances {
		entries[i] = emailEntry{
			Rank:        i + 1,
			Match:       int(math.Round(f.MatchScore)),
			Title:       strings.TrimSpace(f.Title),
			Description: strings.TrimSpace(f.Description),
			Image:       strings.TrimSpace(f.Image),
			PurchaseURL: strings.TrimSpace(f.PurchaseURL),
		}
	}
	return emailData{
		Heading:    heading,
		Profile:    fragranceProfile(tags),
		Fragrances: entries,
		Year:       now.Year(),
	}
}

// render produces the HTML and plain text bodies.
func render(data emailData) (string, string, error) {
	var html, text bytes.Buffer
	if err := htmlTemplate.Execute(&html, data); err != nil {
		return "", "", fmt.Errorf("render html body: %w", err)
	}
	if err := textTemplate.Execute(&text, data); err != nil {
		return "", "", fmt.Errorf("render text body: %w", err)
	}
	return html.String(), text.String(), nil
}
