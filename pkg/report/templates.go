package report

const htmlTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Scan results for {{ .Target }}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Arial, sans-serif; margin: 40px; color: #1f2933; }
h1 { margin-bottom: 4px; }
.meta { color: #6b7280; margin-bottom: 24px; }
.section { margin-bottom: 24px; border-left: 4px solid #7d56f4; padding-left: 12px; }
.section.failed { border-left-color: #ffb800; }
.vulnerable { color: #d0021b; font-weight: bold; }
.none { color: #6b7280; font-style: italic; }
.error { color: #b45309; }
footer { color: #6b7280; font-size: 12px; margin-top: 40px; }
</style>
</head>
<body>
<h1>Scan results</h1>
<p class="meta">
Target: <a href="{{ .Target }}">{{ .Target }}</a><br>
Scan ID: {{ .ID }}<br>
Started: {{ date "2006-01-02 15:04:05 MST" .StartedAt }} ({{ .DurationMS }} ms)
</p>
{{- range .Results }}
<div class="section{{ if .Error }} failed{{ end }}">
<h2>{{ title .Category }}</h2>
{{- if .Error }}
<p class="error">{{ .Error }}</p>
{{- end }}
{{- if .Findings }}
<ul>
{{- range .Findings }}
<li{{ if hasPrefix $.Prefix (toString .) }} class="vulnerable"{{ end }}>{{ . }}</li>
{{- end }}
</ul>
{{- else }}
<p class="none">No findings.</p>
{{- end }}
</div>
{{- end }}
<p><a href="/">New scan</a></p>
<footer>shieldscan v{{ .Version }}</footer>
</body>
</html>
`

const markdownTmpl = `# Scan results for {{ .Target }}

| Field | Value |
|-------|-------|
| Target | {{ .Target }} |
| Host | {{ .Host }} |
| Scan ID | {{ .ID }} |
| Started | {{ date "2006-01-02 15:04:05 MST" .StartedAt }} |
| Duration | {{ .DurationMS }} ms |
{{ range .Results }}
## {{ title .Category }}
{{ if .Error }}
> Check failed: {{ .Error }}
{{ end }}
{{ range .Findings }}- {{ . }}
{{ else }}_No findings._
{{ end }}{{ end }}
---
Generated by shieldscan v{{ .Version }}
`
