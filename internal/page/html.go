package page

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/junkd0g/vgcharts/internal/contact"
	"github.com/junkd0g/vgcharts/internal/render"
	"github.com/junkd0g/vgcharts/internal/theme"
)

type embeddedSpec struct {
	ID   string          `json:"id"`
	Spec json.RawMessage `json:"spec"`
}

// pageData is handed to the browser script as one JSON object.
type pageData struct {
	Specs    []embeddedSpec      `json:"specs"`
	Configs  map[string]any      `json:"configs"`
	Options  render.EmbedOptions `json:"options"`
	ErrorMsg string              `json:"errorMessage"`
	Form     formData            `json:"form"`
}

type formData struct {
	EmailPattern string `json:"emailPattern"`
	MinName      int    `json:"minName"`
	MinMessage   int    `json:"minMessage"`
	NameError    string `json:"nameError"`
	EmailError   string `json:"emailError"`
	MessageError string `json:"messageError"`
	SuccessNote  string `json:"successNote"`
}

// HTML renders the full page.
func (d *Document) HTML() (string, error) {
	data := pageData{
		Configs: map[string]any{
			theme.Dark.String():  theme.ConfigFor(theme.Dark),
			theme.Light.String(): theme.ConfigFor(theme.Light),
		},
		Options:  d.opts,
		ErrorMsg: render.ErrorMessage(d.cfg.DataURL),
		Form: formData{
			EmailPattern: contact.EmailPattern,
			MinName:      contact.MinNameLength,
			MinMessage:   contact.MinMessageLength,
			NameError:    contact.ErrName,
			EmailError:   contact.ErrEmail,
			MessageError: contact.ErrMessage,
			SuccessNote:  contact.SuccessNote,
		},
	}
	for _, s := range d.sections {
		if s.spec != nil {
			data.Specs = append(data.Specs, embeddedSpec{ID: s.id, Spec: s.spec})
		}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode page data: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(d.renderHead())
	sb.WriteString(`<body><div class="container">`)
	sb.WriteString(d.renderHeader())
	sb.WriteString(`<main class="charts">`)
	for _, s := range d.sections {
		sb.WriteString(renderSection(s))
	}
	sb.WriteString(`</main>`)
	sb.WriteString(renderContactForm())
	sb.WriteString(d.renderFooter())
	sb.WriteString(`</div>`)
	sb.WriteString(fmt.Sprintf("\n<script>\nconst page = %s;\n%s</script>\n", dataJSON, pageScript))
	sb.WriteString(`</body></html>`)
	return sb.String(), nil
}

func (d *Document) renderHead() string {
	attr := ""
	if d.cfg.Theme == theme.Light {
		attr = ` data-theme="light"`
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en"%s>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <script src="https://cdn.jsdelivr.net/npm/vega@5"></script>
    <script src="https://cdn.jsdelivr.net/npm/vega-lite@5"></script>
    <script src="https://cdn.jsdelivr.net/npm/vega-embed@6"></script>
    <style>%s</style>
</head>`, attr, html.EscapeString(d.cfg.Title), pageCSS)
}

func (d *Document) renderHeader() string {
	return fmt.Sprintf(`
<header>
    <h1>%s</h1>
    <p>%s</p>
    <button id="themeToggle" type="button" aria-pressed="%t" aria-label="Toggle light theme">Light mode</button>
</header>`, html.EscapeString(d.cfg.Title), html.EscapeString(d.cfg.Description), d.cfg.Theme.Pressed())
}

func renderSection(s *Section) string {
	return fmt.Sprintf(`
<section class="chart-box">
    <h3>%s</h3>
    <p class="caption">%s</p>
    <div id="%s" class="chart">%s</div>
</section>`, html.EscapeString(s.title), html.EscapeString(s.description), s.id, s.content)
}

func renderContactForm() string {
	return `
<section class="form-box" id="contact">
    <h3>Contact</h3>
    <form id="contactForm" novalidate>
        <label for="name">Name</label>
        <input id="name" name="name" type="text" autocomplete="name">
        <p class="error" id="nameError" aria-live="polite"></p>
        <label for="email">Email</label>
        <input id="email" name="email" type="email" autocomplete="email">
        <p class="error" id="emailError" aria-live="polite"></p>
        <label for="message">Message</label>
        <textarea id="message" name="message" rows="5"></textarea>
        <p class="error" id="messageError" aria-live="polite"></p>
        <button type="submit">Send</button>
        <p class="note" id="formNote" aria-live="polite"></p>
    </form>
</section>`
}

func (d *Document) renderFooter() string {
	return fmt.Sprintf(`<footer><p>&copy; <span id="year">%d</span> Video game sales dashboard</p></footer>`,
		d.cfg.Now().Year())
}

const pageScript = `
(() => {
    const yearEl = document.getElementById('year');
    if (yearEl) yearEl.textContent = String(new Date().getFullYear());

    const root = document.documentElement;
    const toggle = document.getElementById('themeToggle');
    const current = () => root.getAttribute('data-theme') === 'light' ? 'light' : 'dark';

    if (localStorage.getItem('theme') === 'light') root.setAttribute('data-theme', 'light');
    else if (localStorage.getItem('theme') === 'dark') root.removeAttribute('data-theme');

    let pass = Promise.resolve();
    const renderAll = () => {
        const t = current();
        pass = pass.then(async () => {
            for (const { id, spec } of page.specs) {
                const el = document.getElementById(id);
                if (!el) continue;
                el.innerHTML = '';
                try {
                    await vegaEmbed('#' + id, Object.assign({}, spec, { config: page.configs[t] }), page.options);
                } catch (err) {
                    el.innerHTML = page.errorMessage;
                    console.error(err);
                }
            }
        });
        return pass;
    };

    const sync = () => {
        if (toggle) toggle.setAttribute('aria-pressed', String(current() === 'light'));
    };
    sync();
    renderAll();

    if (toggle) {
        toggle.addEventListener('click', () => {
            if (current() === 'light') {
                root.removeAttribute('data-theme');
                localStorage.setItem('theme', 'dark');
            } else {
                root.setAttribute('data-theme', 'light');
                localStorage.setItem('theme', 'light');
            }
            sync();
            renderAll();
        });
    }

    const form = document.getElementById('contactForm');
    if (!form) return;
    const rules = page.form;
    const emailRe = new RegExp(rules.emailPattern);
    const field = id => (document.getElementById(id)?.value ?? '').trim();
    const say = (id, msg) => { const el = document.getElementById(id); if (el) el.textContent = msg; };

    form.addEventListener('submit', e => {
        e.preventDefault();
        ['nameError', 'emailError', 'messageError', 'formNote'].forEach(id => say(id, ''));

        let ok = true;
        if ([...field('name')].length < rules.minName) { say('nameError', rules.nameError); ok = false; }
        if (!emailRe.test(field('email'))) { say('emailError', rules.emailError); ok = false; }
        if ([...field('message')].length < rules.minMessage) { say('messageError', rules.messageError); ok = false; }
        if (!ok) return;

        say('formNote', rules.successNote);
        form.reset();
    });
})();
`

const pageCSS = `
:root {
    --bg: linear-gradient(135deg, #1a1a2e 0%, #16213e 100%);
    --fg: #e7eaf0;
    --muted: #a7b0c0;
    --card: rgba(255,255,255,0.05);
    --border: rgba(255,255,255,0.1);
    --accent: #4A90D9;
}
[data-theme="light"] {
    --bg: linear-gradient(135deg, #f5f7fa 0%, #e4e8ec 100%);
    --fg: #111522;
    --muted: #566079;
    --card: #fff;
    --border: #e0e0e0;
}
* { margin: 0; padding: 0; box-sizing: border-box; }
body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    background: var(--bg);
    min-height: 100vh;
    color: var(--fg);
}
.container { max-width: 1200px; margin: 0 auto; padding: 20px; }
header { text-align: center; padding: 30px 0; border-bottom: 1px solid var(--border); margin-bottom: 30px; position: relative; }
header h1 { font-size: 2.5rem; background: linear-gradient(90deg, #4A90D9, #50C878); -webkit-background-clip: text; -webkit-text-fill-color: transparent; margin-bottom: 10px; }
header p { color: var(--muted); font-size: 1.1rem; }
#themeToggle { position: absolute; top: 30px; right: 0; padding: 6px 14px; border-radius: 20px; border: 1px solid var(--border); background: var(--card); color: var(--fg); cursor: pointer; }
#themeToggle[aria-pressed="true"] { border-color: var(--accent); }
.chart-box, .form-box { background: var(--card); border-radius: 12px; padding: 20px; border: 1px solid var(--border); margin-bottom: 25px; }
.chart-box h3, .form-box h3 { margin-bottom: 6px; font-size: 1.2rem; }
.caption { color: var(--muted); margin-bottom: 15px; font-size: 0.95rem; }
.chart { width: 100%; min-height: 300px; }
form { display: grid; gap: 8px; max-width: 560px; }
input, textarea { padding: 10px; border-radius: 8px; border: 1px solid var(--border); background: transparent; color: var(--fg); font: inherit; }
form button { justify-self: start; padding: 8px 20px; border-radius: 8px; border: none; background: var(--accent); color: #fff; cursor: pointer; }
.error { color: #ff6b6b; font-size: 0.85rem; min-height: 1em; }
.note { color: var(--muted); }
footer { text-align: center; padding: 30px 0; color: var(--muted); border-top: 1px solid var(--border); margin-top: 30px; }
`
