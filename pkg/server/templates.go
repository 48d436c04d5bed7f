package server

const indexTmpl = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>shieldscan</title>
<style>
body { font-family: -apple-system, "Segoe UI", Arial, sans-serif; margin: 40px; color: #1f2933; }
form { margin-top: 24px; }
input[type=text] { width: 420px; padding: 8px; }
button { padding: 8px 16px; background: #7d56f4; color: #fff; border: 0; }
.error { color: #d0021b; }
footer { color: #6b7280; font-size: 12px; margin-top: 40px; }
</style>
</head>
<body>
<h1>Web vulnerability scanner</h1>
<p>Checks a page for SQL injection in its forms, open ports, host details, robots.txt, server technology, security headers and cookies.</p>
{{- with .Error }}
<p class="error">{{ . }}</p>
{{- end }}
<form method="post" action="/scan">
<input type="text" name="url" placeholder="https://example.com/" value="{{ .URL }}">
<button type="submit">Scan</button>
</form>
<footer>shieldscan v{{ .Version | default "dev" }}</footer>
</body>
</html>
`
