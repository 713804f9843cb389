// Package views renders the HTML UI as templ components.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	appI18n "github.com/classkit/assessgen/internal/i18n"
	"github.com/classkit/assessgen/internal/model"
)

// FormData carries the form state (and any error) back into the generate page.
type FormData struct {
	Request  model.AssessmentRequest
	ErrorMsg string
	LoggedIn bool
}

func esc(s string) string { return templ.EscapeString(s) }

// page wraps body content in the shared HTML shell.
func page(body func(ctx context.Context, w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := appI18n.T(ctx, "AppTitle")
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; color: #1a202c; }
h1 { font-size: 1.5rem; } h2 { font-size: 1.2rem; margin-top: 2rem; }
label { display: block; margin-top: 1rem; font-weight: 600; }
input, textarea, select { width: 100%%; padding: 0.4rem; margin-top: 0.25rem; box-sizing: border-box; }
button { margin-top: 1.5rem; padding: 0.6rem 1.4rem; background: #2b6cb0; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
nav a { margin-right: 1rem; }
.error { background: #fed7d7; border: 1px solid #c53030; padding: 0.75rem; margin-top: 1rem; border-radius: 4px; }
.question { border: 1px solid #cbd5e0; border-radius: 4px; padding: 1rem; margin-top: 1rem; }
.answer-key { background: #f7fafc; padding: 0.75rem; margin-top: 0.75rem; border-radius: 4px; }
table { border-collapse: collapse; width: 100%%; margin-top: 1rem; }
td, th { border: 1px solid #cbd5e0; padding: 0.5rem; text-align: left; }
.muted { color: #718096; font-size: 0.9rem; }
</style>
</head>
<body>
<h1>%s</h1>
`, esc(title), esc(title)); err != nil {
			return err
		}
		if err := body(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

func nav(ctx context.Context, w io.Writer, loggedIn bool) error {
	_, err := fmt.Fprintf(w, `<nav><a href="/">%s</a> <a href="/history">%s</a>`,
		esc(appI18n.T(ctx, "GenerateHeading")), esc(appI18n.T(ctx, "HistoryHeading")))
	if err != nil {
		return err
	}
	if loggedIn {
		_, err = fmt.Fprintf(w, ` <form method="post" action="/logout" style="display:inline">%s<button type="submit">%s</button></form>`,
			csrfField(ctx), esc(appI18n.T(ctx, "ButtonLogout")))
		if err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "</nav>\n")
	return err
}

func csrfField(ctx context.Context) string {
	return fmt.Sprintf(`<input type="hidden" name="csrf_token" value="%s">`,
		esc(model.CSRFTokenFromContext(ctx)))
}

func errorBox(ctx context.Context, w io.Writer, msg string) error {
	if msg == "" {
		return nil
	}
	_, err := fmt.Fprintf(w, `<div class="error">%s</div>`+"\n", esc(msg))
	return err
}

// IndexPage renders the generation form.
func IndexPage(data FormData) templ.Component {
	return page(func(ctx context.Context, w io.Writer) error {
		if err := nav(ctx, w, data.LoggedIn); err != nil {
			return err
		}
		if err := errorBox(ctx, w, data.ErrorMsg); err != nil {
			return err
		}
		req := data.Request

		if _, err := fmt.Fprintf(w, `<h2>%s</h2>
<form method="post" action="/generate">
%s
<label>%s<input name="curriculum_standard" value="%s" required></label>
<label>%s<textarea name="learning_objectives" rows="3" required>%s</textarea></label>
<label>%s<select name="blooms_level">`,
			esc(appI18n.T(ctx, "GenerateHeading")),
			csrfField(ctx),
			esc(appI18n.T(ctx, "FieldCurriculum")), esc(req.CurriculumStandard),
			esc(appI18n.T(ctx, "FieldObjectives")), esc(req.LearningObjectives),
			esc(appI18n.T(ctx, "FieldBloomLevel")),
		); err != nil {
			return err
		}
		for _, l := range model.BloomLevels {
			if err := option(w, string(l), string(req.BloomLevel)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `</select></label>
<label>%s<select name="difficulty">`, esc(appI18n.T(ctx, "FieldDifficulty"))); err != nil {
			return err
		}
		for _, d := range model.Difficulties {
			if err := option(w, string(d), string(req.Difficulty)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `</select></label>
<label>%s<input type="number" name="total_marks" min="1" max="1000" value="%d"></label>
<label>%s<input type="number" name="num_questions" min="1" max="50" value="%d"></label>
<h2>%s</h2>
<label>MCQ %%<input type="number" name="mcq_percent" min="0" max="100" value="%d"></label>
<label>Short Answer %%<input type="number" name="short_answer_percent" min="0" max="100" value="%d"></label>
<label>Long Answer %%<input type="number" name="long_answer_percent" min="0" max="100" value="%d"></label>
<label>%s<textarea name="additional_prompts" rows="2">%s</textarea></label>
<button type="submit">%s</button>
</form>
`,
			esc(appI18n.T(ctx, "FieldTotalMarks")), req.TotalMarks,
			esc(appI18n.T(ctx, "FieldNumQuestions")), req.NumQuestions,
			esc(appI18n.T(ctx, "FieldDistribution")),
			percentOf(req, model.MultipleChoice),
			percentOf(req, model.ShortAnswer),
			percentOf(req, model.LongAnswer),
			esc(appI18n.T(ctx, "FieldAdditional")), esc(req.AdditionalPrompts),
			esc(appI18n.T(ctx, "ButtonGenerate")),
		)
		return err
	})
}

func option(w io.Writer, value, selected string) error {
	sel := ""
	if value == selected {
		sel = " selected"
	}
	_, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, esc(value), sel, esc(value))
	return err
}

func percentOf(req model.AssessmentRequest, t model.QuestionType) int {
	return int(req.Distribution[t]*100 + 0.5)
}

// AssessmentPage renders one stored assessment with its answer key.
func AssessmentPage(entry model.HistoryEntry, loggedIn bool) templ.Component {
	return page(func(ctx context.Context, w io.Writer) error {
		if err := nav(ctx, w, loggedIn); err != nil {
			return err
		}
		res := entry.Result
		if _, err := fmt.Fprintf(w, `<h2>%s</h2>
<p class="muted">%s · %s · %d questions · %d marks · %s</p>
<p><a href="/assessment/%d/export.json">%s</a> <a href="/assessment/%d/export.txt">%s</a></p>
<p>%s</p>
`,
			esc(res.Title),
			esc(res.CurriculumStandard), esc(string(res.TargetBloomLevel)),
			res.Metadata.TotalQuestions, res.Metadata.TotalMarks,
			esc(res.GeneratedAt.Format("2006-01-02 15:04")),
			entry.ID, esc(appI18n.T(ctx, "DownloadJSON")),
			entry.ID, esc(appI18n.T(ctx, "DownloadText")),
			esc(res.StudentInstructions),
		); err != nil {
			return err
		}

		for i, q := range res.Questions {
			if _, err := fmt.Fprintf(w, `<div class="question"><strong>Q%d.</strong> %s <span class="muted">[%d marks · %s · %s]</span>`,
				i+1, esc(q.Text), q.Marks, esc(string(q.Type)), esc(string(q.Difficulty))); err != nil {
				return err
			}
			if len(q.Options) > 0 {
				if _, err := io.WriteString(w, "<ul>"); err != nil {
					return err
				}
				for _, opt := range q.Options {
					marker := ""
					if opt.IsCorrect {
						marker = " ✓"
					}
					if _, err := fmt.Fprintf(w, "<li>%s. %s%s</li>", esc(opt.OptionID), esc(opt.Text), marker); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(w, "</ul>"); err != nil {
					return err
				}
			}
			if err := answerKey(w, q.AnswerKey); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "</div>\n"); err != nil {
				return err
			}
		}

		if res.TeacherNotes != "" {
			if _, err := fmt.Fprintf(w, `<h2>Teacher Notes</h2><p>%s</p>`, esc(res.TeacherNotes)); err != nil {
				return err
			}
		}
		return nil
	})
}

func answerKey(w io.Writer, key model.AnswerKey) error {
	if _, err := io.WriteString(w, `<div class="answer-key">`); err != nil {
		return err
	}
	if key.CorrectAnswer != "" {
		if _, err := fmt.Fprintf(w, "<p><strong>Answer:</strong> %s</p>", esc(key.CorrectAnswer)); err != nil {
			return err
		}
	}
	if key.Explanation != "" {
		if _, err := fmt.Fprintf(w, "<p><strong>Explanation:</strong> %s</p>", esc(key.Explanation)); err != nil {
			return err
		}
	}
	if key.MarkingCriteria != "" {
		if _, err := fmt.Fprintf(w, "<p><strong>Marking Criteria:</strong> %s</p>", esc(key.MarkingCriteria)); err != nil {
			return err
		}
	}
	if len(key.KeyPoints) > 0 {
		if _, err := io.WriteString(w, "<ul>"); err != nil {
			return err
		}
		for _, p := range key.KeyPoints {
			if _, err := fmt.Fprintf(w, "<li>%s</li>", esc(p)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</ul>"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</div>")
	return err
}

// HistoryPage renders the append-only history list, newest first.
func HistoryPage(entries []model.HistoryEntry, loggedIn bool) templ.Component {
	return page(func(ctx context.Context, w io.Writer) error {
		if err := nav(ctx, w, loggedIn); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<h2>%s</h2>\n", esc(appI18n.T(ctx, "HistoryHeading"))); err != nil {
			return err
		}
		if len(entries) == 0 {
			_, err := fmt.Fprintf(w, "<p>%s</p>\n", esc(appI18n.T(ctx, "HistoryEmpty")))
			return err
		}
		if _, err := io.WriteString(w, "<table><tr><th>Title</th><th>Curriculum</th><th>Questions</th><th>Marks</th><th>Created</th></tr>\n"); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, `<tr><td><a href="/assessment/%d">%s</a></td><td>%s</td><td>%d</td><td>%d</td><td>%s</td></tr>`+"\n",
				e.ID, esc(e.Title), esc(e.Standard), e.Questions, e.Marks,
				esc(e.CreatedAt.Format("2006-01-02 15:04"))); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</table>\n")
		return err
	})
}

// LoginPage renders the password prompt.
func LoginPage(errMsg string) templ.Component {
	return page(func(ctx context.Context, w io.Writer) error {
		if err := errorBox(ctx, w, errMsg); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `<h2>%s</h2>
<form method="post" action="/login">
%s
<label>Password<input type="password" name="password" required></label>
<button type="submit">%s</button>
</form>
`,
			esc(appI18n.T(ctx, "LoginHeading")),
			csrfField(ctx),
			esc(appI18n.T(ctx, "ButtonLogin")))
		return err
	})
}
