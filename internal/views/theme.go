package views

import (
	"fmt"
	"strings"
)

// Palette is one color scheme.
type Palette struct {
	Name       string
	Background string
	Foreground string
	Muted      string
	Border     string
	Surface    string
	Accent     string
	Up         string
	Down       string
	Neutral    string
}

// Theme is the single presentation config shared by every page.
type Theme struct {
	Dark bool
}

var (
	lightPalette = Palette{
		Name:       "light",
		Background: "#fff",
		Foreground: "#000",
		Muted:      "#666",
		Border:     "rgba(0,0,0,0.2)",
		Surface:    "rgba(0,0,0,0.03)",
		Accent:     "#4169E1",
		Up:         "#10b981",
		Down:       "#ef4444",
		Neutral:    "#9ca3af",
	}
	darkPalette = Palette{
		Name:       "dark",
		Background: "#000",
		Foreground: "#fff",
		Muted:      "#9ca3af",
		Border:     "rgba(255,255,255,0.2)",
		Surface:    "rgba(255,255,255,0.05)",
		Accent:     "#4169E1",
		Up:         "#10b981",
		Down:       "#ef4444",
		Neutral:    "#4b5563",
	}
)

// ThemeCookie stores the visitor's choice.
const ThemeCookie = "metrix_theme"

// ParseTheme reads a cookie value. Anything other than "dark" is light.
func ParseTheme(value string) Theme {
	return Theme{Dark: value == "dark"}
}

// Palette returns the active colors.
func (t Theme) Palette() Palette {
	if t.Dark {
		return darkPalette
	}
	return lightPalette
}

// Toggled is the opposite theme.
func (t Theme) Toggled() Theme {
	return Theme{Dark: !t.Dark}
}

// CookieValue is what gets written back to ThemeCookie.
func (t Theme) CookieValue() string {
	return t.Palette().Name
}

// CSS renders the stylesheet for the theme.
func (t Theme) CSS() string {
	p := t.Palette()
	var b strings.Builder
	fmt.Fprintf(&b, ":root{--bg:%s;--fg:%s;--muted:%s;--border:%s;--surface:%s;--accent:%s;--up:%s;--down:%s;--neutral:%s}\n",
		p.Background, p.Foreground, p.Muted, p.Border, p.Surface, p.Accent, p.Up, p.Down, p.Neutral)
	b.WriteString(baseCSS)
	return b.String()
}

// StyleTag wraps CSS in a style element. The palette and base sheet are constants.
func (t Theme) StyleTag() string {
	return "<style>" + t.CSS() + "</style>"
}

const baseCSS = `*{box-sizing:border-box;margin:0;padding:0}
body{min-height:100vh;background:var(--bg);color:var(--fg);font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;line-height:1.6}
a{color:inherit}
nav.top{position:sticky;top:0;border-bottom:1px solid var(--border);background:var(--bg);z-index:50}
nav.top .inner{max-width:1280px;margin:0 auto;padding:1rem 1.5rem;display:flex;justify-content:space-between;align-items:center}
.logo{font-size:1.5rem;font-weight:bold;text-decoration:none}
.nav-actions{display:flex;gap:1rem;align-items:center}
.btn{display:inline-flex;align-items:center;gap:.5rem;border:2px solid var(--fg);border-radius:8px;padding:.5rem 1rem;font-weight:600;background:transparent;color:var(--fg);text-decoration:none;cursor:pointer}
main{max-width:1100px;margin:0 auto;padding:2rem 1.5rem 3rem}
footer{border-top:1px solid var(--border);padding:2rem 1.5rem;text-align:center;color:var(--muted)}
.hero{text-align:center;padding:4rem 0}
.hero h1{font-size:clamp(2rem,5vw,3.5rem);line-height:1.2}
.subtitle{color:var(--muted);max-width:700px;margin:0 auto 1.5rem}
.features{display:grid;grid-template-columns:repeat(auto-fit,minmax(250px,1fr));gap:2rem;margin:3rem 0}
.card{padding:2rem;border:2px solid var(--border);border-radius:12px;margin-bottom:2rem}
.signup{display:flex;gap:.5rem;justify-content:center;flex-wrap:wrap}
.signup input{padding:.75rem 1rem;border:2px solid var(--border);border-radius:8px;min-width:260px;background:transparent;color:var(--fg)}
.success{color:var(--up);text-align:center;margin-top:1rem}
.error{color:var(--down);text-align:center;margin-top:1rem}
.section{margin-bottom:4rem}
.section-header{display:flex;align-items:center;gap:.75rem;margin-bottom:2rem;padding-bottom:.75rem;border-bottom:2px solid var(--border)}
.date-pill{display:inline-flex;padding:.5rem 1rem;border:1px solid var(--border);border-radius:20px;color:var(--muted)}
.performers{background:var(--surface);padding:1.25rem;border-radius:8px;border-left:3px solid var(--fg)}
.media{position:relative;padding-bottom:56.25%;height:0;overflow:hidden;border-radius:8px;margin-top:16px;background:#000}
.media iframe{position:absolute;top:0;left:0;width:100%;height:100%;border:none}
.pager{display:flex;justify-content:center;align-items:center;gap:1rem;margin-top:1.5rem}
.standings{display:grid;grid-template-columns:repeat(auto-fit,minmax(300px,1fr));gap:2rem}
table{width:100%;border-collapse:collapse;font-size:.9rem}
th{text-align:left;padding:.5rem;color:var(--muted);font-weight:normal;font-size:.8rem}
td{padding:.75rem .5rem;border-bottom:1px solid var(--border)}
td.rank{font-weight:bold;width:30px;color:var(--muted)}
td.team img{width:24px;height:24px;object-fit:contain;vertical-align:middle;margin-right:8px}
td.trend{text-align:right}
td[data-trend=up]{color:var(--up)}td[data-trend=down]{color:var(--down)}td[data-trend=neutral]{color:var(--neutral)}
.search-bar{width:100%;padding:1rem 1.25rem;font-size:1.1rem;border:2px solid var(--border);border-radius:12px;background:transparent;color:var(--fg)}
.response{display:flex;gap:2rem;align-items:flex-start;flex-wrap:wrap}
.profile-picture{width:160px;height:160px;object-fit:cover;border-radius:50%}
.profile-placeholder{display:flex;align-items:center;justify-content:center;border:2px solid var(--border);color:var(--muted);text-decoration:underline}
.emphasis{color:var(--accent);font-weight:bold}
.chart{width:90%;margin:2rem auto}
.chart svg{width:100%;height:225px}
.player-card{display:flex;gap:2rem;flex-wrap:wrap}
.player-picture{max-width:320px;border-radius:12px}
.stats-grid{display:grid;grid-template-columns:repeat(3,1fr);gap:1rem;margin:1rem 0}
.stats-cell{background:var(--surface);border-radius:8px;padding:1rem;text-align:center}
.empty-state{text-align:center;padding:4rem 1rem;color:var(--muted)}
`
