// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

package camera

// galleryPage is the self-contained gallery served at "/". It talks to the
// JSON API over fetch and refreshes itself every 10 seconds.
const galleryPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Camera Gallery</title>
<style>
  body { font-family: -apple-system, Helvetica, Arial, sans-serif; margin: 0; background: #111; color: #eee; }
  header { padding: 16px 24px; background: #1b1b1b; display: flex; align-items: center; justify-content: space-between; }
  header h1 { font-size: 18px; margin: 0; }
  header .actions button { margin-left: 8px; padding: 8px 14px; border: 0; border-radius: 6px; background: #2d6cdf; color: #fff; cursor: pointer; }
  header .actions button:hover { background: #3d7cef; }
  #summary { padding: 8px 24px; color: #999; font-size: 13px; }
  #grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(180px, 1fr)); gap: 12px; padding: 16px 24px; }
  .card { background: #1b1b1b; border-radius: 8px; overflow: hidden; }
  .card img { width: 100%; height: 140px; object-fit: cover; display: block; }
  .card .video { width: 100%; height: 140px; display: flex; align-items: center; justify-content: center; background: #222; font-size: 32px; }
  .card .meta { padding: 8px 10px; font-size: 12px; color: #bbb; word-break: break-all; }
  .card .meta a { color: #7da9f5; text-decoration: none; }
  #error { padding: 24px; color: #e66; display: none; }
</style>
</head>
<body>
<header>
  <h1>Camera Gallery</h1>
  <div class="actions">
    <button onclick="trigger('/api/take-picture')">Take Picture</button>
    <button onclick="trigger('/api/start-recording')">Start Recording</button>
    <button onclick="trigger('/api/stop-recording')">Stop Recording</button>
  </div>
</header>
<div id="summary"></div>
<div id="error">Error loading gallery</div>
<div id="grid"></div>
<script>
function trigger(path) {
  fetch(path, { method: 'POST' }).catch(function () {});
}

function render(data) {
  document.getElementById('error').style.display = 'none';
  document.getElementById('summary').textContent =
    data.total_count + ' items, ' + (data.total_size / (1024 * 1024)).toFixed(1) + ' MB';

  var grid = document.getElementById('grid');
  grid.innerHTML = '';
  (data.photos || []).forEach(function (p) {
    var card = document.createElement('div');
    card.className = 'card';
    var preview = p.is_video
      ? '<div class="video">&#9654;</div>'
      : '<img src="' + p.url + '" alt="' + p.name + '" loading="lazy">';
    card.innerHTML = preview +
      '<div class="meta">' + p.name + '<br>' + p.modified +
      '<br><a href="' + p.download_url + '">Download</a></div>';
    grid.appendChild(card);
  });
}

function refresh() {
  fetch('/api/gallery?limit=50')
    .then(function (r) { return r.json(); })
    .then(function (body) {
      if (body.status !== 'success') { throw new Error(body.message); }
      render(body.data);
    })
    .catch(function () {
      document.getElementById('error').style.display = 'block';
    });
}

refresh();
setInterval(refresh, 10000);
</script>
</body>
</html>
`
