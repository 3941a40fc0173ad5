package http

import (
	"github.com/gofiber/fiber/v2"
)

// mapPageHTML renders the map from the layer event stream on /ws. The buttons
// only call the session endpoints; all drawing follows the events.
const mapPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Detourmap</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <style>html,body,#map{height:100%;margin:0}#controls{position:absolute;top:10px;left:50px;z-index:1000}</style>
</head>
<body>
  <div id="map"></div>
  <div id="controls">
    <button id="initial">Get Initial Route</button>
    <button id="adjust">Adjust Route</button>
  </div>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <script>
    let map = null, tiles = null;
    const layers = new Map();

    function apply(ev) {
      switch (ev.op) {
      case 'reset':
        reset();
        break;
      case 'map':
        if (!map) map = L.map('map');
        map.setView([ev.center.lat, ev.center.lon], ev.zoom);
        break;
      case 'tiles':
        if (tiles) map.removeLayer(tiles);
        tiles = L.tileLayer(ev.tile_url).addTo(map);
        break;
      case 'add': {
        const prev = layers.get(ev.layer_id);
        if (prev) map.removeLayer(prev);
        const style = ev.style || {};
        const layer = L.geoJSON(ev.feature, { style: () => style });
        if (ev.popup) layer.bindPopup(ev.popup);
        layers.set(ev.layer_id, layer.addTo(map));
        break;
      }
      case 'remove': {
        const layer = layers.get(ev.layer_id);
        if (layer) { map.removeLayer(layer); layers.delete(ev.layer_id); }
        break;
      }
      }
    }

    function reset() {
      layers.forEach(l => map && map.removeLayer(l));
      layers.clear();
    }

    function connect() {
      const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
      ws.onmessage = m => {
        const ev = JSON.parse(m.data);
        if (ev.op) apply(ev);
      };
      ws.onclose = () => setTimeout(connect, 2000);
    }
    connect();

    async function call(method, path, body) {
      const resp = await fetch(path, {
        method,
        headers: { 'Content-Type': 'application/json' },
        body: body === undefined ? undefined : JSON.stringify(body),
      });
      if (resp.ok) return;
      const err = await resp.json().catch(() => ({}));
      if (err.code === 'precondition_violation') {
        alert('Get initial route first');
      } else if (err.code !== 'request_in_flight') {
        console.error('request failed', resp.status, err);
      }
    }

    document.getElementById('initial').onclick = () => call('POST', '/v1/session/route');
    document.getElementById('adjust').onclick = async () => {
      const state = await (await fetch('/v1/session')).json();
      if (state.state !== 'has_route') { alert('Get initial route first'); return; }
      const description = prompt("Describe blockade (e.g. 'Flood on Elm St')");
      await call('POST', '/v1/session/adjust', { description: description || '' });
    };
  </script>
</body>
</html>`

// MapPageHandler serves the browser map client.
func MapPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(mapPageHTML)
	}
}
