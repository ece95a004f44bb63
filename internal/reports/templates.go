package reports

// pageTemplate is the shared layout for all dashboard pages. Chart
// surfaces are initialized by their snippets and then patched in place
// by the live update client, which applies new data and axis bounds
// with setOption instead of recreating chart instances.
const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/echarts@5.4.3/dist/echarts.min.js"></script>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f4f6f8; color: #1f2933; }
header { background: #134e6f; color: #fff; padding: 16px 24px; }
header h1 { margin: 0; font-size: 20px; }
header .version { float: right; font-size: 12px; opacity: 0.7; }
main { max-width: 960px; margin: 0 auto; padding: 24px; }
.notes { background: #fff; border-radius: 8px; padding: 16px 20px; margin-bottom: 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.chart-container { background: #fff; border-radius: 8px; padding: 16px 20px; margin-bottom: 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
.chart-container h3 { margin: 0 0 8px; font-size: 15px; }
#stale-banner { display: {{if .Stale}}block{{else}}none{{end}}; background: #b45309; color: #fff; padding: 8px 24px; font-size: 14px; }
a.back { color: #134e6f; font-size: 14px; text-decoration: none; }
</style>
</head>
<body>
<header><span class="version">{{.Version}}</span><h1>{{.Title}}</h1></header>
<div id="stale-banner">Live data unavailable &mdash; showing last known readings.</div>
<main>
{{if .BackLink}}<p><a class="back" href="/">&larr; All wards</a></p>{{end}}
{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
{{range .Charts}}
<div class="chart-container">
<h3>{{.Title}}</h3>
{{.Div}}
{{.Script}}
</div>
{{end}}
</main>
<script>
(function(){
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '{{.LivePath}}?dashboard={{.Dashboard}}');
  ws.onmessage = function(ev){
    var msg = JSON.parse(ev.data);
    var updates = msg.charts || [];
    var banner = document.getElementById('stale-banner');
    if (banner && updates.length) {
      banner.style.display = updates[0].stale ? 'block' : 'none';
    }
    updates.forEach(function(u){
      var c = window._wardCharts && window._wardCharts[u.surface];
      if (!c) return;
      var opt = { xAxis: { data: u.labels }, series: [{ data: u.values }] };
      if (u.y_min !== undefined && u.y_min !== null) {
        opt.yAxis = { min: u.y_min, max: u.y_max };
      }
      c.setOption(opt);
    });
  };
})();
</script>
</body>
</html>
`
