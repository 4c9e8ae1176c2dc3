package web

// Single-page trading UI: asset list, trade form, order book, equity chart.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>papertrade</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Press+Start+2P&family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --ink-soft:#9c9c9c;
      --panel:#f6f6f6;
      --up:#1b9aaa;
      --down:#d7263d;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      width:min(1400px, 96vw);
      margin:0 auto;
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:grid;
      grid-template-columns:1fr 360px;
      gap:2rem;
    }
    header { grid-column:1 / -1; display:flex; justify-content:space-between; align-items:center; }
    .eyebrow {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.6rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      margin:0;
    }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#fff;
    }
    .panel {
      border:3px solid var(--ink);
      background:#fff;
      padding:1.2rem;
      box-shadow:6px 6px 0 rgba(0,0,0,.12);
      margin-bottom:1.5rem;
    }
    .panel h2 {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.6rem;
      text-transform:uppercase;
      letter-spacing:.15em;
      margin:0 0 1rem;
      border-bottom:2px solid var(--ink);
      padding-bottom:.6rem;
    }
    table { width:100%; border-collapse:collapse; font-size:.7rem; }
    th, td { text-align:right; padding:.35rem .5rem; border-bottom:1px dashed var(--ink-soft); }
    th:first-child, td:first-child { text-align:left; }
    tr.asset-row { cursor:pointer; }
    tr.asset-row:hover { background:var(--panel); }
    .up { color:var(--up); }
    .down { color:var(--down); }
    .total {
      font-size:1.6rem;
      font-weight:700;
      letter-spacing:.08em;
    }
    form { display:flex; flex-direction:column; gap:.7rem; font-size:.7rem; }
    input, select, button {
      font-family:inherit;
      font-size:.7rem;
      padding:.5rem;
      border:2px solid var(--ink);
      background:#fff;
    }
    button {
      cursor:pointer;
      text-transform:uppercase;
      letter-spacing:.1em;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    button:active { transform:translate(2px,2px); box-shadow:none; }
    #tradeError { color:var(--down); font-size:.65rem; min-height:1em; }
    .book-grid { display:grid; grid-template-columns:1fr 1fr; gap:.5rem; font-size:.62rem; }
    .book-col div { display:flex; justify-content:space-between; padding:.15rem .3rem; }
    canvas { width:100%; border:2px solid var(--ink); background:#fff; }
    @media (max-width:800px) { #app { grid-template-columns:1fr; } }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <p class="eyebrow">papertrade</p>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <div class="main">
      <section class="panel">
        <h2>Portfolio</h2>
        <div class="total" id="totalValue">—</div>
        <table>
          <thead><tr><th>Symbol</th><th>Qty</th><th>Avg cost</th><th>Value</th><th>P&amp;L</th></tr></thead>
          <tbody id="positions"></tbody>
        </table>
      </section>
      <section class="panel">
        <h2>Equity</h2>
        <canvas id="equityChart" height="220"></canvas>
      </section>
      <section class="panel">
        <h2>Market</h2>
        <table>
          <thead><tr><th>Symbol</th><th>Class</th><th>Price</th><th>Change</th></tr></thead>
          <tbody id="assets"></tbody>
        </table>
      </section>
    </div>
    <aside>
      <section class="panel">
        <h2>Trade</h2>
        <form id="tradeForm">
          <select id="tradeSymbol"></select>
          <select id="tradeSide">
            <option value="buy">Buy</option>
            <option value="sell">Sell</option>
          </select>
          <input id="tradeQty" type="text" placeholder="quantity" />
          <button type="submit">Submit</button>
          <div id="tradeError"></div>
        </form>
      </section>
      <section class="panel">
        <h2>Order book <span id="bookSymbol"></span></h2>
        <div class="book-grid">
          <div class="book-col" id="bids"></div>
          <div class="book-col" id="asks"></div>
        </div>
      </section>
      <section class="panel">
        <h2>Trades</h2>
        <table>
          <thead><tr><th>Side</th><th>Symbol</th><th>Qty</th><th>Price</th></tr></thead>
          <tbody id="trades"></tbody>
        </table>
      </section>
    </aside>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const fmt = (v, d=2) => Number.parseFloat(v).toFixed(d);
let selectedSymbol = null;

Chart.defaults.font.family = "'Space Mono', monospace";
Chart.defaults.font.size = 10;
Chart.defaults.color = '#111111';

const chart = new Chart(document.getElementById('equityChart').getContext('2d'), {
  type: 'line',
  data: { labels: [], datasets: [{
    label:'total value', data:[], borderColor:'#111111',
    backgroundColor:'rgba(17,17,17,0.1)', borderWidth:2, pointRadius:0, tension:0.15
  }]},
  options: { animation:false, plugins:{ legend:{ display:false } } }
});

function pushEquityPoint(snapshot){
  const ts = new Date(snapshot.ts);
  chart.data.labels.push(ts.toLocaleTimeString([], { hour12:false }));
  chart.data.datasets[0].data.push(Number.parseFloat(snapshot.total_value));
  if(chart.data.labels.length > 500){
    chart.data.labels.shift();
    chart.data.datasets[0].data.shift();
  }
  chart.update('none');
}

function renderPortfolio(p){
  document.getElementById('totalValue').textContent = '$' + fmt(p.total_value) + ' (cash $' + fmt(p.cash) + ')';
  const rows = (p.positions || []).map(pos => {
    const pl = Number.parseFloat(pos.profit_loss);
    const cls = pl >= 0 ? 'up' : 'down';
    return '<tr><td>' + pos.symbol + '</td><td>' + fmt(pos.quantity, 4) +
      '</td><td>' + fmt(pos.avg_cost) + '</td><td>' + fmt(pos.current_value) +
      '</td><td class="' + cls + '">' + fmt(pos.profit_loss) + ' (' + fmt(pos.profit_loss_percent) + '%)</td></tr>';
  });
  document.getElementById('positions').innerHTML = rows.join('') || '<tr><td colspan="5">no positions</td></tr>';

  const trades = (p.trades || []).slice(0, 15).map(t =>
    '<tr><td class="' + (t.side === 'buy' ? 'up' : 'down') + '">' + t.side + '</td><td>' + t.symbol +
    '</td><td>' + fmt(t.quantity, 4) + '</td><td>' + fmt(t.price) + '</td></tr>');
  document.getElementById('trades').innerHTML = trades.join('') || '<tr><td colspan="4">no trades yet</td></tr>';
}

function renderAssets(assets){
  const rows = assets.map(a => {
    const ch = Number.parseFloat(a.change_percent);
    const cls = ch >= 0 ? 'up' : 'down';
    return '<tr class="asset-row" data-symbol="' + a.symbol + '"><td>' + a.symbol + '</td><td>' + a.class +
      '</td><td>' + fmt(a.price) + '</td><td class="' + cls + '">' + fmt(a.change_percent) + '%</td></tr>';
  });
  document.getElementById('assets').innerHTML = rows.join('');
  document.querySelectorAll('.asset-row').forEach(row => {
    row.addEventListener('click', () => selectSymbol(row.dataset.symbol));
  });

  const select = document.getElementById('tradeSymbol');
  if(select.children.length === 0){
    assets.forEach(a => {
      const opt = document.createElement('option');
      opt.value = a.symbol;
      opt.textContent = a.symbol;
      select.appendChild(opt);
    });
    if(assets.length > 0){ selectSymbol(assets[0].symbol); }
  }
}

function selectSymbol(symbol){
  selectedSymbol = symbol;
  document.getElementById('bookSymbol').textContent = symbol;
  document.getElementById('tradeSymbol').value = symbol;
  refreshBook();
}

async function refreshBook(){
  if(!selectedSymbol){ return; }
  const resp = await fetch('/api/orderbook?symbol=' + encodeURIComponent(selectedSymbol));
  if(!resp.ok){ return; }
  const book = await resp.json();
  const render = (levels, cls) => (levels || []).slice(0, 12).map(l =>
    '<div><span class="' + cls + '">' + fmt(l.price) + '</span><span>' + fmt(l.quantity, 2) + '</span></div>').join('');
  document.getElementById('bids').innerHTML = render(book.bids, 'up');
  document.getElementById('asks').innerHTML = render(book.asks, 'down');
}

async function refreshAll(){
  const [pResp, aResp] = await Promise.all([fetch('/api/portfolio'), fetch('/api/assets')]);
  if(pResp.ok){ renderPortfolio(await pResp.json()); }
  if(aResp.ok){ renderAssets(await aResp.json()); }
  refreshBook();
}

document.getElementById('tradeForm').addEventListener('submit', async (e) => {
  e.preventDefault();
  const errEl = document.getElementById('tradeError');
  errEl.textContent = '';
  const resp = await fetch('/api/trade', {
    method:'POST',
    headers:{ 'Content-Type':'application/json' },
    body: JSON.stringify({
      symbol: document.getElementById('tradeSymbol').value,
      side: document.getElementById('tradeSide').value,
      quantity: document.getElementById('tradeQty').value
    })
  });
  if(resp.ok){
    renderPortfolio(await resp.json());
    document.getElementById('tradeQty').value = '';
  } else {
    const body = await resp.json().catch(() => ({}));
    errEl.textContent = body.error || ('request failed: ' + resp.status);
  }
});

async function loadHistory(){
  const resp = await fetch('/api/history');
  if(!resp.ok){ return; }
  const snapshots = await resp.json();
  (snapshots || []).forEach(pushEquityPoint);
}

function connectSSE(){
  const source = new EventSource('/api/portfolio/stream');
  statusEl.textContent = 'Live';
  source.addEventListener('portfolio', (event) => {
    try{
      pushEquityPoint(JSON.parse(event.data));
    }catch(err){
      console.error('payload parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

loadHistory();
refreshAll();
setInterval(refreshAll, 5000);
connectSSE();
</script>
</body>
</html>`
