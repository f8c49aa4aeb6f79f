package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/tinkerlog/fireflies/internal/hue"
	"github.com/tinkerlog/fireflies/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"hueCSS": func(h uint8) template.CSS {
		r, g, b := hue.ToRGB(h)
		return template.CSS(fmt.Sprintf("rgb(%d,%d,%d)", r, g, b))
	},
	"percent": func(power, trigger uint32) int {
		if trigger == 0 {
			return 0
		}
		p := int(power * 100 / trigger)
		if p > 100 {
			p = 100
		}
		return p
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Firefly {{.Config.Node}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; background: #111; color: #ddd; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #333; }
th { width: 40%; }
a { color: #8cf; }
.bar { background: #333; height: 10px; width: 100%; }
.bar > div { background: #8cf; height: 10px; }
.swatch { display: inline-block; width: 14px; height: 14px; border-radius: 50%; margin-right: 6px; vertical-align: middle; }
.connected { color: #4c4; }
.disconnected { color: #c44; }
.ready { color: #4c4; }
.waiting { color: orange; }
</style>
</head>
<body>
<h1>Firefly {{.Config.Node}}</h1>

<h2>Oscillator</h2>
<table>
<tr><th>Power</th><td>{{.Power}} / {{.Config.FlashPower}}<div class="bar"><div style="width: {{percent .Power .Config.FlashPower}}%"></div></div></td></tr>
<tr><th>Nervous</th><td><span class="swatch" style="background: {{hueCSS .NervousHue}}"></span>{{.Nervous}}</td></tr>
<tr><th>Blind</th><td>{{if .Blind}}{{.Blind}} ticks{{else}}no{{end}}</td></tr>
<tr><th>Light</th><td>{{.Light}}</td></tr>
<tr><th>Threshold</th><td>{{if .Ready}}{{.Threshold}}{{else}}&mdash;{{end}}</td></tr>
<tr><th>Ready</th><td class="{{if .Ready}}ready{{else}}waiting{{end}}">{{if .Ready}}yes{{else}}measuring baseline{{end}}</td></tr>
{{if not .LastFlash.IsZero}}<tr><th>Last flash</th><td><span class="swatch" style="background: {{hueCSS .LastFlashHue}}"></span>{{.LastFlash.UTC.Format "15:04:05"}} (hue {{.LastFlashHue}})</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Flashes</th><td>{{.Counts.Flashes}}</td></tr>
<tr><th>Seen</th><td>{{.Counts.Seen}}</td></tr>
<tr><th>Daylight</th><td>{{.Counts.Daylight}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Control tick</th><td>{{.Config.ControlTickUs}}&micro;s</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime     time.Duration
		NervousHue uint8
	}{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		NervousHue: snap.Config.NervousMax - snap.Nervous,
	}
	indexTmpl.Execute(w, data)
}
