package handlers

import (
	"log"
	"net/http"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>NWS Exporter</title></head>
<body>
<h1>NWS Exporter</h1>
<ul>
<li><a href="/metrics">Metrics</a></li>
<li><a href="/health">Health</a></li>
<li><a href="/info">Info</a></li>
<li><a href="/api/stations">Stations</a></li>
<li><a href="/api/config">Config</a></li>
</ul>
</body>
</html>
`

// IndexHandler serves a landing page at the root path. The root pattern
// matches every otherwise unhandled path, so anything but "/" itself is a
// 404.
func IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(indexPage)); err != nil {
		log.Printf("Error writing index response: %v", err)
	}
}

// RegisterIndexHandler registers the landing page at the root path
func RegisterIndexHandler(mux *http.ServeMux) {
	mux.HandleFunc("/", IndexHandler)
	log.Println("Landing page registered at /")
}
