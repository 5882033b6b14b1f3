// Package web serves the embedded upload page.
package web

import "net/http"

// ServeUploadPage serves the single-operator upload form with a live event
// feed over WebSocket.
func ServeUploadPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(uploadPageHTML))
}

const uploadPageHTML = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>docveil - anonimización de documentos</title>
<style>
  body { font-family: system-ui, sans-serif; max-width: 640px; margin: 3rem auto; color: #222; }
  h1 { font-size: 1.4rem; }
  form { border: 2px dashed #bbb; border-radius: 8px; padding: 2rem; text-align: center; }
  button { margin-top: 1rem; padding: 0.5rem 1.5rem; font-size: 1rem; cursor: pointer; }
  #feed { margin-top: 2rem; font-size: 0.9rem; }
  .ok { color: #2d7a2d; }
  .fail { color: #b03030; }
</style>
</head>
<body>
<h1>Anonimización de documentos</h1>
<p>Sube un DOCX o PDF; se devuelve una copia con los datos sensibles sustituidos según las reglas configuradas.</p>
<form id="upload" method="post" action="/anonymize" enctype="multipart/form-data">
  <input type="file" name="document" accept=".docx,.pdf" required>
  <br>
  <button type="submit">Anonimizar</button>
</form>
<div id="feed"></div>
<script>
(function() {
  var feed = document.getElementById("feed");
  function line(text, cls) {
    var el = document.createElement("div");
    el.textContent = text;
    if (cls) el.className = cls;
    feed.prepend(el);
  }
  try {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onmessage = function(msg) {
      var ev = JSON.parse(msg.data);
      if (ev.type === "file") {
        var d = ev.data;
        if (d.status === "redacted") {
          line(d.path + " — " + d.matches + " sustituciones", "ok");
        } else {
          line(d.path + " — error: " + d.reason, "fail");
        }
      } else if (ev.type === "system") {
        line(ev.data.message);
      }
    };
  } catch (e) { /* feed is optional */ }
})();
</script>
</body>
</html>
`
