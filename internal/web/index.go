package web

// Dashboard page: balance summary, history chart and the comment feed.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>walletboard</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --panel:#f6f6f6;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:center;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      width:min(1100px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:grid;
      grid-template-columns:1fr 340px;
      gap:2rem;
    }
    header { grid-column:1 / -1; display:flex; justify-content:space-between; align-items:center; }
    .eyebrow { font-size:.7rem; text-transform:uppercase; letter-spacing:.2em; margin:0; }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#fff;
    }
    .equity { border:3px solid var(--ink); padding:1.2rem; background:#fff; margin-bottom:1rem; }
    .equity .label { font-size:.62rem; text-transform:uppercase; letter-spacing:.2em; color:var(--ink-mid); }
    .equity .value { margin-top:.8rem; font-size:1.8rem; font-weight:700; }
    .chart { width:100%; border:2px solid var(--ink); background:#fff; }
    .comments { display:flex; flex-direction:column; gap:1rem; max-height:60vh; overflow-y:auto; }
    .comment-card { border:2px solid var(--ink); padding:.8rem; background:#fff; font-size:.7rem; }
    .comment-nick { font-weight:700; margin-bottom:.3rem; }
    .comment-time { color:var(--ink-mid); font-size:.6rem; }
    form { display:flex; gap:.5rem; margin-top:1rem; }
    input[type=text] {
      flex:1;
      border:2px solid var(--ink);
      padding:.5rem;
      font-family:inherit;
      font-size:.7rem;
    }
    button {
      border:2px solid var(--ink);
      background:#fff;
      padding:.5rem 1rem;
      font-family:inherit;
      font-size:.7rem;
      text-transform:uppercase;
      cursor:pointer;
    }
    @media (max-width:640px) { #app { grid-template-columns:1fr; } }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <p class="eyebrow">walletboard</p>
      <div id="status" class="status">Loading…</div>
    </header>
    <div>
      <div class="equity">
        <div class="label">Futures USDT balance</div>
        <div id="balanceValue" class="value">—</div>
      </div>
      <canvas id="historyChart" class="chart" height="280"></canvas>
    </div>
    <aside>
      <div id="comments" class="comments"></div>
      <form id="commentForm">
        <input id="commentInput" type="text" placeholder="leave a comment" maxlength="500" />
        <button type="submit">Post</button>
      </form>
    </aside>
  </div>
<script>
const statusEl = document.getElementById('status');
const balanceEl = document.getElementById('balanceValue');
const commentsEl = document.getElementById('comments');

Chart.defaults.font.family = "'Space Mono', 'JetBrains Mono', monospace";
Chart.defaults.font.size = 11;
Chart.defaults.color = '#111111';

const chart = new Chart(document.getElementById('historyChart').getContext('2d'), {
  type: 'line',
  data: { labels: [], datasets: [{
    label: 'USDT',
    data: [],
    borderColor: '#111111',
    backgroundColor: 'rgba(17,17,17,0.12)',
    borderWidth: 2,
    pointRadius: 0,
    tension: 0.15
  }]},
  options: {
    animation: false,
    responsive: true,
    plugins: { legend: { display:false } }
  }
});

const fmtTime = (ts) => {
  const date = new Date(ts);
  return Number.isNaN(date.getTime()) ? ts : date.toLocaleTimeString([], { hour12:false });
};

async function refreshSummary(){
  try{
    const res = await fetch('/api/summary');
    const body = await res.json();
    if(body.status === 'ok'){
      balanceEl.textContent = body.summary.futures_usdt_balance.toFixed(2) + ' USDT';
      statusEl.textContent = 'Live';
    }else{
      statusEl.textContent = body.message || 'Error';
    }
  }catch(err){
    statusEl.textContent = 'Offline';
  }
}

async function refreshHistory(){
  try{
    const res = await fetch('/api/balance-history');
    const body = await res.json();
    if(body.status !== 'ok'){ return; }
    chart.data.labels = body.history.map((p) => fmtTime(p.timestamp));
    chart.data.datasets[0].data = body.history.map((p) => p.balance);
    chart.update('none');
  }catch(err){
    console.error('history fetch', err);
  }
}

async function refreshComments(){
  try{
    const res = await fetch('/api/comments');
    const list = await res.json();
    commentsEl.innerHTML = '';
    for(const c of list.slice().reverse()){
      const card = document.createElement('div');
      card.className = 'comment-card';
      const nick = document.createElement('div');
      nick.className = 'comment-nick';
      nick.textContent = c.nick;
      const content = document.createElement('div');
      content.textContent = c.content;
      const time = document.createElement('div');
      time.className = 'comment-time';
      time.textContent = fmtTime(c.created_at);
      card.append(nick, content, time);
      commentsEl.appendChild(card);
    }
  }catch(err){
    console.error('comments fetch', err);
  }
}

document.getElementById('commentForm').addEventListener('submit', async (event) => {
  event.preventDefault();
  const input = document.getElementById('commentInput');
  const res = await fetch('/api/comments', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ content: input.value })
  });
  if(res.ok){
    input.value = '';
    refreshComments();
  }
});

function connectSSE(){
  const source = new EventSource('/api/balance/stream');
  source.addEventListener('balance', (event) => {
    try{
      const snapshot = JSON.parse(event.data);
      chart.data.labels.push(fmtTime(snapshot.timestamp));
      chart.data.datasets[0].data.push(snapshot.balance);
      chart.update('none');
      balanceEl.textContent = snapshot.balance.toFixed(2) + ' USDT';
    }catch(err){
      console.error('snapshot parse', err);
    }
  });
  source.addEventListener('error', () => {
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

refreshSummary();
refreshHistory();
refreshComments();
connectSSE();
setInterval(refreshComments, 15000);
</script>
</body>
</html>`
