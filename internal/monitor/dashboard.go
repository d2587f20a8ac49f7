package monitor

// dashboardHTML polls /api/state and tails the /ws event feed.
const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Tempo Monitor</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: monospace; background: #0d1117; color: #c9d1d9; padding: 20px; }
  h1 { color: #58a6ff; margin-bottom: 16px; font-size: 1.4em; }
  .regs { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: 10px; margin-bottom: 20px; }
  .reg { background: #161b22; border: 1px solid #30363d; border-radius: 6px; padding: 12px; }
  .reg .name { font-size: 0.75em; color: #8b949e; text-transform: uppercase; }
  .reg .val { font-size: 1.2em; font-weight: 600; color: #d2a8ff; }
  #conn.connected { color: #3fb950; }
  #conn.disconnected { color: #f85149; }
  #events { background: #161b22; border: 1px solid #30363d; border-radius: 6px; max-height: 480px; overflow-y: auto; }
  .row { display: grid; grid-template-columns: 120px 60px 110px 1fr; padding: 4px 12px; border-bottom: 1px solid #21262d; font-size: 0.85em; }
</style>
</head>
<body>
<h1>Tempo Monitor <span id="conn" class="disconnected">disconnected</span></h1>
<div class="regs" id="regs"></div>
<div id="events"></div>
<script>
const REGS = ['iccs', 'rxcs', 'rxbuf', 'txcs', 'txbuf', 'todr', 'battery_low', 'toy_epoch', 'poll', 'rx_pos', 'tx_pos', 'tx_stalls'];
const MAX_EVENTS = 300;
const eventsDiv = document.getElementById('events');

function hex(v) { return typeof v === 'number' ? '0x' + v.toString(16) : String(v); }

function refresh() {
  fetch('/api/state').then(r => r.json()).then(s => {
    let html = '<div class="reg"><div class="name">units</div><div class="val">' + s.units + '</div></div>';
    html += '<div class="reg"><div class="name">ticks</div><div class="val">' + s.ticks + '</div></div>';
    for (const k of REGS) {
      html += '<div class="reg"><div class="name">' + k + '</div><div class="val">' + hex(s.board[k]) + '</div></div>';
    }
    document.getElementById('regs').innerHTML = html;
  }).catch(() => {});
}

function connect() {
  const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
  const ws = new WebSocket(proto + '//' + location.host + '/ws');
  const conn = document.getElementById('conn');
  ws.onopen = () => { conn.textContent = 'connected'; conn.className = 'connected'; };
  ws.onclose = () => { conn.textContent = 'disconnected'; conn.className = 'disconnected'; setTimeout(connect, 2000); };
  ws.onmessage = (m) => {
    const e = JSON.parse(m.data);
    const row = document.createElement('div');
    row.className = 'row';
    row.textContent = '';
    for (const v of [e.at, e.device, e.kind, hex(e.value) + (e.note ? ' ' + e.note : '')]) {
      const span = document.createElement('span');
      span.textContent = v;
      row.appendChild(span);
    }
    eventsDiv.insertBefore(row, eventsDiv.firstChild);
    while (eventsDiv.children.length > MAX_EVENTS) eventsDiv.removeChild(eventsDiv.lastChild);
  };
}

setInterval(refresh, 500);
refresh();
connect();
</script>
</body>
</html>`
