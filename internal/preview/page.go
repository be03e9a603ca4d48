package preview

import "html/template"

type pageData struct {
	Title string
	CSS   template.CSS
	Body  template.HTML
}

var pageTemplate = template.Must(template.New("preview").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 860px; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.55; }
pre { padding: .75rem; overflow-x: auto; }
{{.CSS}}
</style>
</head>
<body>
<main id="content">{{.Body}}</main>
<script>
(function () {
  var content = document.getElementById("content");
  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
    ws.onmessage = function (ev) { content.innerHTML = ev.data; };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
</script>
</body>
</html>
`))
